package binding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domainSession "fleetview/internal/domain/session"
	"fleetview/internal/logger"
	"fleetview/internal/upstream"
	appErrors "fleetview/pkg/errors"
	"fleetview/pkg/utils"
)

// Binder is the slice of the upstream client used for binding changes.
type Binder interface {
	Bind(ctx context.Context, token string, binding *upstream.BindingRequest) error
}

// Invalidator drops a user's cached collections after their fleet changes.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// Service forwards device bind/unbind requests (the server half of the QR
// binding flow) to the telemetry platform.
type Service struct {
	binder      Binder
	invalidator Invalidator
}

// NewService creates a new binding service
func NewService(binder Binder, invalidator Invalidator) *Service {
	return &Service{
		binder:      binder,
		invalidator: invalidator,
	}
}

// Bind binds a scanned package to the session's user.
func (s *Service) Bind(ctx context.Context, sess *domainSession.Session, req *BindRequest) error {
	return s.apply(ctx, sess, req.PackageName, "1")
}

// Unbind releases a package from the session's user.
func (s *Service) Unbind(ctx context.Context, sess *domainSession.Session, req *BindRequest) error {
	return s.apply(ctx, sess, req.PackageName, "0")
}

func (s *Service) apply(ctx context.Context, sess *domainSession.Session, packageName, status string) error {
	packageName = utils.SanitizePackageName(packageName)
	req := &upstream.BindingRequest{
		PackageName:   packageName,
		IDUser:        sess.UserID,
		StatusBinding: status,
	}
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid binding request", err)
	}

	if err := s.binder.Bind(ctx, sess.UpstreamToken, req); err != nil {
		return fmt.Errorf("binding change for %s failed: %w", packageName, err)
	}

	// The user's fleet just changed shape; cached collections are stale.
	if err := s.invalidator.InvalidateUser(ctx, sess.UserID); err != nil {
		logger.Warn("Failed to invalidate cache after binding change",
			zap.String("user_id", sess.UserID),
			zap.Error(err),
		)
	}

	logger.Info("Device binding updated",
		zap.String("package_name", packageName),
		zap.String("user_id", sess.UserID),
		zap.String("status_binding", status),
		zap.String("event", "binding_updated"),
	)

	return nil
}
