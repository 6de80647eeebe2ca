package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated dashboard session. It is the single source of
// truth for the user's identity and their upstream bearer token; handlers
// never read tokens from anywhere else.
type Session struct {
	ID            uuid.UUID
	UserID        string
	Username      string
	Email         string
	CustomerCode  string
	LevelUser     string
	UpstreamToken string
	Revoked       bool
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the session is past its lifetime.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
