package models

import (
	"time"

	"github.com/google/uuid"
)

// League represents a dynasty league and its simulation clock
type League struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CommissionerID uuid.UUID `json:"commissioner_id"`
	CurrentSeason  int       `json:"current_season"`
	CurrentWeek    int       `json:"current_week"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsCommissioner reports whether userID owns the league.
func (l *League) IsCommissioner(userID uuid.UUID) bool {
	return l != nil && userID != uuid.Nil && l.CommissionerID == userID
}
