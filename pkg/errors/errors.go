package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("unauthorized access")

	ErrNoUpstreamToken     = errors.New("no upstream token available")
	ErrUpstreamUnavailable = errors.New("telemetry platform unavailable")
	ErrPackageNotFound     = errors.New("device package not found")

	ErrInvalidInput     = errors.New("invalid input data")
	ErrInvalidDateRange = errors.New("invalid date range")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// UpstreamError carries the HTTP status returned by the telemetry platform
// so handlers can distinguish auth failures from outages.
type UpstreamError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.StatusCode)
}

func NewUpstreamError(endpoint string, statusCode int, body string) *UpstreamError {
	return &UpstreamError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Body:       body,
	}
}
