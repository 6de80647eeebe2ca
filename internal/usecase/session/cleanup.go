package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fleetview/internal/logger"
)

// StartCleanupJob starts a background job that removes expired sessions
func (s *Service) StartCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Session cleanup job started",
		zap.Duration("interval", interval),
	)

	s.cleanupExpiredSessions(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session cleanup job stopped")
			return
		case <-ticker.C:
			s.cleanupExpiredSessions(ctx)
		}
	}
}

func (s *Service) cleanupExpiredSessions(ctx context.Context) {
	deleted, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		logger.Error("Failed to delete expired sessions", zap.Error(err))
		return
	}

	if deleted > 0 {
		logger.Debug("Expired sessions cleaned up",
			zap.Int64("deleted", deleted),
		)
	}
}
