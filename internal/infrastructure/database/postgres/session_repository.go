package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainSession "fleetview/internal/domain/session"
	"fleetview/internal/infrastructure/database/postgres/models"
)

// SessionRepository implements domain session.Repository on postgres.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) domainSession.Repository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domainSession.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	dbModel := toSessionModel(s)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainSession.Session, error) {
	var dbModel models.SessionModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainSession.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return toSessionEntity(&dbModel), nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"revoked":    true,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to revoke session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainSession.ErrSessionNotFound
	}

	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.SessionModel{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func toSessionModel(s *domainSession.Session) *models.SessionModel {
	return &models.SessionModel{
		ID:            s.ID,
		UserID:        s.UserID,
		Username:      s.Username,
		Email:         s.Email,
		CustomerCode:  s.CustomerCode,
		LevelUser:     s.LevelUser,
		UpstreamToken: s.UpstreamToken,
		Revoked:       s.Revoked,
		ExpiresAt:     s.ExpiresAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toSessionEntity(m *models.SessionModel) *domainSession.Session {
	return &domainSession.Session{
		ID:            m.ID,
		UserID:        m.UserID,
		Username:      m.Username,
		Email:         m.Email,
		CustomerCode:  m.CustomerCode,
		LevelUser:     m.LevelUser,
		UpstreamToken: m.UpstreamToken,
		Revoked:       m.Revoked,
		ExpiresAt:     m.ExpiresAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
