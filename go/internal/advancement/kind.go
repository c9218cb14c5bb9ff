package advancement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
	"github.com/mcdev12/dynasty-sim/go/internal/views"
)

// ErrUnknownKind is returned by ParseKind for anything but "week" and
// "recruiting_week".
var ErrUnknownKind = errors.New("unknown advancement kind")

// WeekProcedure runs advance_week. The caller's own credential is enough.
type WeekProcedure interface {
	AdvanceWeek(ctx context.Context, caller credential.Caller, leagueID uuid.UUID) (json.RawMessage, error)
}

// RecruitingProcedure runs process_recruiting_week. It only accepts the
// elevated credential.
type RecruitingProcedure interface {
	ProcessRecruitingWeek(ctx context.Context, svc *credential.Service, leagueID uuid.UUID) (json.RawMessage, error)
}

// Elevator scopes the elevated credential to a single call.
type Elevator interface {
	WithService(ctx context.Context, fn func(svc *credential.Service) error) error
}

// Procedures are the remote procedures a Kind can be dispatched to.
type Procedures struct {
	Week       WeekProcedure
	Recruiting RecruitingProcedure
	Elevator   Elevator
}

// Kind selects the remote procedure and the credential it runs with. The only
// implementations are Week and RecruitingWeek.
type Kind interface {
	Name() string
	// StaleViews lists what a successful advancement of this kind invalidates.
	StaleViews() views.Set

	successMessage() string
	invoke(ctx context.Context, procs Procedures, caller credential.Caller, leagueID uuid.UUID) (json.RawMessage, error)
}

// Week advances the league's simulation week.
type Week struct{}

func (Week) Name() string { return "week" }

func (Week) StaleViews() views.Set {
	return views.NewSet(views.Dashboard, views.Standings, views.Schedule)
}

func (Week) successMessage() string { return "Week advanced." }

func (Week) invoke(ctx context.Context, procs Procedures, caller credential.Caller, leagueID uuid.UUID) (json.RawMessage, error) {
	return procs.Week.AdvanceWeek(ctx, caller, leagueID)
}

// RecruitingWeek processes the league's recruiting week with the elevated
// credential.
type RecruitingWeek struct{}

func (RecruitingWeek) Name() string { return "recruiting_week" }

func (RecruitingWeek) StaleViews() views.Set {
	return Week{}.StaleViews().Union(views.NewSet(views.RecruitingBoard))
}

func (RecruitingWeek) successMessage() string { return "Recruiting week processed." }

func (RecruitingWeek) invoke(ctx context.Context, procs Procedures, _ credential.Caller, leagueID uuid.UUID) (json.RawMessage, error) {
	var summary json.RawMessage
	err := procs.Elevator.WithService(ctx, func(svc *credential.Service) error {
		var err error
		summary, err = procs.Recruiting.ProcessRecruitingWeek(ctx, svc, leagueID)
		return err
	})
	return summary, err
}

// ParseKind maps a form or API value to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case Week{}.Name():
		return Week{}, nil
	case RecruitingWeek{}.Name():
		return RecruitingWeek{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
