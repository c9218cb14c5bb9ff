// Bindings for query.sql, kept in the layout sqlc emits for sqlc.yaml.
// Running sqlc generate replaces this file.

package db

import (
	"time"

	"github.com/google/uuid"
)

type League struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CommissionerID uuid.UUID `json:"commissioner_id"`
	CurrentSeason  int32     `json:"current_season"`
	CurrentWeek    int32     `json:"current_week"`
	CreatedAt      time.Time `json:"created_at"`
}

type LeagueMember struct {
	LeagueID uuid.UUID     `json:"league_id"`
	UserID   uuid.UUID     `json:"user_id"`
	TeamID   uuid.NullUUID `json:"team_id"`
	Role     string        `json:"role"`
}
