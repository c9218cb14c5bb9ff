package models

import (
	"github.com/google/uuid"
)

// MemberRole is the job a member holds in a league
type MemberRole string

const (
	MemberRoleCommissioner MemberRole = "commissioner"
	MemberRoleAD           MemberRole = "ad"
	MemberRoleHeadCoach    MemberRole = "head_coach"
	MemberRoleCoordinator  MemberRole = "coordinator"
)

// Label returns the display name of the role.
func (r MemberRole) Label() string {
	switch r {
	case MemberRoleCommissioner:
		return "Commissioner"
	case MemberRoleAD:
		return "Athletic Director"
	case MemberRoleHeadCoach:
		return "Head Coach"
	case MemberRoleCoordinator:
		return "Coordinator"
	default:
		return string(r)
	}
}

// Membership pairs a user with a league. There is at most one per (league, user).
type Membership struct {
	LeagueID   uuid.UUID  `json:"league_id"`
	UserID     uuid.UUID  `json:"user_id"`
	TeamID     *uuid.UUID `json:"team_id,omitempty"`
	TeamName   string     `json:"team_name,omitempty"`
	Role       MemberRole `json:"role"`
	LeagueName string     `json:"league_name,omitempty"`
}

// HasTeam reports whether the member has been assigned a team.
func (m *Membership) HasTeam() bool {
	return m != nil && m.TeamID != nil
}
