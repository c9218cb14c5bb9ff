package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated caller as reported by the identity provider
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is a signed-in browser session
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// User returns the identity carried by the session.
func (s *Session) User() *User {
	return &User{ID: s.UserID, Email: s.Email}
}
