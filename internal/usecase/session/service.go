package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetview/internal/config"
	domainSession "fleetview/internal/domain/session"
	"fleetview/internal/logger"
	"fleetview/internal/metrics"
	"fleetview/internal/upstream"
	appErrors "fleetview/pkg/errors"
	"fleetview/pkg/utils"
)

// Authenticator is the slice of the upstream client the session service
// needs; the full client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*upstream.LoginResult, error)
}

// Service implements login, logout and session resolution. It replaces the
// old cookie-plus-tab-storage split with one server-side session record: the
// cookie carries a signed session id, nothing else.
type Service struct {
	sessions  domainSession.Repository
	auth      Authenticator
	config    *config.Config
	collector metrics.Collector
}

// NewService creates a new session service
func NewService(
	sessions domainSession.Repository,
	auth Authenticator,
	cfg *config.Config,
	collector metrics.Collector,
) *Service {
	if collector == nil {
		collector = metrics.Noop()
	}
	return &Service{
		sessions:  sessions,
		auth:      auth,
		config:    cfg,
		collector: collector,
	}
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	username := utils.SanitizeUsername(req.Username)

	result, err := s.auth.Login(ctx, username, req.Password)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidCredentials) {
			logger.Warn("Login rejected by telemetry platform",
				zap.String("username", username),
				zap.String("event", "login_failed"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("upstream login failed: %w", err)
	}

	expiresAt := time.Now().Add(s.config.Session.TTL)
	sess := &domainSession.Session{
		ID:            uuid.New(),
		UserID:        result.IDUser,
		Username:      result.Username,
		Email:         result.Email,
		CustomerCode:  result.CustomerCode,
		LevelUser:     result.LevelUser,
		UpstreamToken: result.Token,
		ExpiresAt:     expiresAt,
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	token, err := utils.GenerateSessionToken(
		sess.ID,
		sess.UserID,
		sess.Username,
		s.config.Session.JWTSecret,
		s.config.Session.TTL,
	)
	if err != nil {
		return nil, err
	}

	s.collector.IncSessionStarted()
	logger.Info("User logged in",
		zap.String("user_id", sess.UserID),
		zap.String("username", sess.Username),
		zap.String("event", "login"),
	)

	return &LoginResponse{
		User:      ToUserResponse(sess),
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// Resolve maps a cookie token to its live session. Revoked and expired
// sessions resolve to an error, never to a stale identity.
func (s *Service) Resolve(ctx context.Context, token string) (*domainSession.Session, error) {
	claims, err := utils.ValidateSessionToken(token, s.config.Session.JWTSecret)
	if err != nil {
		return nil, err
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Revoked {
		return nil, domainSession.ErrSessionRevoked
	}
	if sess.Expired() {
		return nil, domainSession.ErrSessionExpired
	}

	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	sess, err := s.Resolve(ctx, token)
	if err != nil {
		// Logging out an already-dead session is not an error for the caller.
		return nil
	}

	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.collector.IncSessionEnded()
	logger.Info("User logged out",
		zap.String("user_id", sess.UserID),
		zap.String("event", "logout"),
	)

	return nil
}
