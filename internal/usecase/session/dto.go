package session

import (
	domainSession "fleetview/internal/domain/session"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	UserID       string `json:"id_user"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
	LevelUser    string `json:"level_user"`
}

type LoginResponse struct {
	User      *UserResponse `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt int64         `json:"expires_at"`
}

func ToUserResponse(s *domainSession.Session) *UserResponse {
	if s == nil {
		return nil
	}
	return &UserResponse{
		UserID:       s.UserID,
		Username:     s.Username,
		Email:        s.Email,
		CustomerCode: s.CustomerCode,
		LevelUser:    s.LevelUser,
	}
}
