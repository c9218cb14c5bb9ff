package views

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// View is a page whose contents derive from league state.
type View string

const (
	Dashboard       View = "dashboard"
	Standings       View = "standings"
	Schedule        View = "schedule"
	RecruitingBoard View = "recruiting_board"
)

var order = []View{Dashboard, Standings, Schedule, RecruitingBoard}

// Set is a duplicate-free set of views kept in a fixed canonical order, so two
// sets with the same members compare equal.
type Set []View

// NewSet builds a canonical set. Unknown views are dropped.
func NewSet(vs ...View) Set {
	var s Set
	for _, candidate := range order {
		for _, v := range vs {
			if v == candidate {
				s = append(s, candidate)
				break
			}
		}
	}
	return s
}

// Union returns the views in either set.
func (s Set) Union(other Set) Set {
	all := make([]View, 0, len(s)+len(other))
	all = append(all, s...)
	all = append(all, other...)
	return NewSet(all...)
}

// Contains reports whether v is in the set.
func (s Set) Contains(v View) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Empty reports whether nothing is stale.
func (s Set) Empty() bool {
	return len(s) == 0
}

// StaleEvent tells clients which views of a league must be refetched.
type StaleEvent struct {
	Type     string    `json:"type"`
	LeagueID uuid.UUID `json:"league_id"`
	Views    []View    `json:"views"`
	At       time.Time `json:"at"`
}

const staleEventType = "views_stale"

// NewStaleEvent builds the event for a stale set.
func NewStaleEvent(leagueID uuid.UUID, stale Set, at time.Time) StaleEvent {
	return StaleEvent{
		Type:     staleEventType,
		LeagueID: leagueID,
		Views:    []View(stale),
		At:       at.UTC(),
	}
}

// Invalidator receives stale sets after a successful advancement.
type Invalidator interface {
	Invalidate(ctx context.Context, leagueID uuid.UUID, stale Set) error
}
