package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel is the gorm mapping for dashboard sessions.
type SessionModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        string    `gorm:"type:varchar(64);index;not null"`
	Username      string    `gorm:"type:varchar(100);not null"`
	Email         string    `gorm:"type:varchar(255)"`
	CustomerCode  string    `gorm:"type:varchar(64)"`
	LevelUser     string    `gorm:"type:varchar(32)"`
	UpstreamToken string    `gorm:"type:text;not null"`
	Revoked       bool      `gorm:"not null;default:false"`
	ExpiresAt     time.Time `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SessionModel) TableName() string {
	return "sessions"
}
