package upstream

// LoginRequest is the credential payload forwarded to the platform login
// endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the platform's login response.
type LoginResult struct {
	Token        string `json:"token"`
	IDUser       string `json:"id_user"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	StatusUser   string `json:"status_user"`
	CustomerCode string `json:"customer_code"`
	LevelUser    string `json:"level_user"`
	Message      string `json:"message"`
}

// BindingRequest binds or unbinds a device package to a user. The platform
// endpoint takes it form-urlencoded.
type BindingRequest struct {
	PackageName   string `form:"package_name" validate:"required"`
	IDUser        string `form:"id_user" validate:"required"`
	StatusBinding string `form:"status_binding" validate:"required,oneof=0 1"`
}

// Filter narrows collection queries. Zero values are omitted from the query
// string; dates use the platform's yyyy-MM-dd convention.
type Filter struct {
	PackageName string
	StartDate   string
	EndDate     string
}
