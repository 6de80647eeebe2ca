package binding

// BindRequest is the JSON body accepted from the dashboard's QR flow.
type BindRequest struct {
	PackageName string `json:"package_name" validate:"required"`
}
