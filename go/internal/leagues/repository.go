package leagues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
	"github.com/mcdev12/dynasty-sim/go/internal/leagues/db"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/mcdev12/dynasty-sim/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// ErrLeagueNotFound is returned when the league does not exist or is not visible
// to the caller.
var ErrLeagueNotFound = errors.New("league not found")

const processRecruitingWeek = `SELECT process_recruiting_week($1::uuid)`

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetLeague(ctx context.Context, id uuid.UUID) (db.League, error)
	GetMembership(ctx context.Context, arg db.GetMembershipParams) (db.GetMembershipRow, error)
	ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]db.ListMembershipsForUserRow, error)
	AdvanceWeek(ctx context.Context, leagueID uuid.UUID) (pqtype.NullRawMessage, error)
}

// Runner binds a Querier to a transaction scoped to the caller's claims.
type Runner interface {
	RunAs(ctx context.Context, claims sqlutil.Claims, fn func(q Querier) error) error
}

type txRunner struct {
	db *sql.DB
}

func (r txRunner) RunAs(ctx context.Context, claims sqlutil.Claims, fn func(q Querier) error) error {
	return sqlutil.RunAs(ctx, r.db, claims,
		func(tx *sql.Tx) *db.Queries { return db.New(tx) },
		func(q *db.Queries) error { return fn(q) },
	)
}

// Repository is the league store as seen by one caller at a time.
type Repository struct {
	runner Runner
}

// NewRepository creates a new leagues repository over the caller-scoped pool
func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		runner: txRunner{db: database},
	}
}

// NewRepositoryWithRunner creates a repository over a custom Runner
func NewRepositoryWithRunner(runner Runner) *Repository {
	return &Repository{
		runner: runner,
	}
}

// GetLeague retrieves a league by ID
func (r *Repository) GetLeague(ctx context.Context, caller credential.Caller, id uuid.UUID) (*models.League, error) {
	var league *models.League
	err := r.runner.RunAs(ctx, caller.Claims(), func(q Querier) error {
		row, err := q.GetLeague(ctx, id)
		if err != nil {
			return err
		}
		league = dbLeagueToModel(row)
		return nil
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return league, nil
}

// GetMembership retrieves the caller's membership in a league, nil if none
func (r *Repository) GetMembership(ctx context.Context, caller credential.Caller, leagueID, userID uuid.UUID) (*models.Membership, error) {
	var membership *models.Membership
	err := r.runner.RunAs(ctx, caller.Claims(), func(q Querier) error {
		row, err := q.GetMembership(ctx, db.GetMembershipParams{LeagueID: leagueID, UserID: userID})
		if err != nil {
			return err
		}
		membership = &models.Membership{
			LeagueID: row.LeagueID,
			UserID:   row.UserID,
			TeamID:   sqlutil.FromNullUUID(row.TeamID),
			TeamName: sqlutil.FromSqlString(row.TeamName, ""),
			Role:     models.MemberRole(row.Role),
		}
		return nil
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return membership, nil
}

// GetDashboard reads the league and the caller's membership in one transaction
func (r *Repository) GetDashboard(ctx context.Context, caller credential.Caller, leagueID uuid.UUID) (*models.League, *models.Membership, error) {
	var (
		league     *models.League
		membership *models.Membership
	)
	err := r.runner.RunAs(ctx, caller.Claims(), func(q Querier) error {
		row, err := q.GetLeague(ctx, leagueID)
		if err != nil {
			if sqlutil.IsNoRows(err) {
				return ErrLeagueNotFound
			}
			return err
		}
		league = dbLeagueToModel(row)

		member, err := q.GetMembership(ctx, db.GetMembershipParams{LeagueID: leagueID, UserID: caller.UserID})
		switch {
		case err == nil:
			membership = &models.Membership{
				LeagueID:   member.LeagueID,
				UserID:     member.UserID,
				TeamID:     sqlutil.FromNullUUID(member.TeamID),
				TeamName:   sqlutil.FromSqlString(member.TeamName, ""),
				Role:       models.MemberRole(member.Role),
				LeagueName: row.Name,
			}
		case sqlutil.IsNoRows(err):
		default:
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLeagueNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to get dashboard: %w", err)
	}
	return league, membership, nil
}

// ListMemberships lists every league the caller belongs to
func (r *Repository) ListMemberships(ctx context.Context, caller credential.Caller) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.runner.RunAs(ctx, caller.Claims(), func(q Querier) error {
		rows, err := q.ListMembershipsForUser(ctx, caller.UserID)
		if err != nil {
			return err
		}
		memberships = make([]models.Membership, len(rows))
		for i, row := range rows {
			memberships[i] = models.Membership{
				LeagueID:   row.LeagueID,
				UserID:     row.UserID,
				TeamID:     sqlutil.FromNullUUID(row.TeamID),
				TeamName:   sqlutil.FromSqlString(row.TeamName, ""),
				Role:       models.MemberRole(row.Role),
				LeagueName: row.LeagueName,
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// AdvanceWeek calls advance_week with the caller's own credential and returns
// the procedure's summary untouched.
func (r *Repository) AdvanceWeek(ctx context.Context, caller credential.Caller, leagueID uuid.UUID) (json.RawMessage, error) {
	var summary json.RawMessage
	err := r.runner.RunAs(ctx, caller.Claims(), func(q Querier) error {
		raw, err := q.AdvanceWeek(ctx, leagueID)
		if err != nil {
			return err
		}
		summary = sqlutil.FromNullRawMessage(raw)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to advance week: %w", err)
	}
	return summary, nil
}

// ProcessRecruitingWeek calls process_recruiting_week with the elevated
// credential and returns the procedure's summary untouched.
func (r *Repository) ProcessRecruitingWeek(ctx context.Context, svc *credential.Service, leagueID uuid.UUID) (json.RawMessage, error) {
	var raw []byte
	if err := svc.QueryRow(ctx, processRecruitingWeek, leagueID.String()).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to process recruiting week: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// dbLeagueToModel converts a database league to domain model
func dbLeagueToModel(dbLeague db.League) *models.League {
	return &models.League{
		ID:             dbLeague.ID,
		Name:           dbLeague.Name,
		CommissionerID: dbLeague.CommissionerID,
		CurrentSeason:  int(dbLeague.CurrentSeason),
		CurrentWeek:    int(dbLeague.CurrentWeek),
		CreatedAt:      dbLeague.CreatedAt,
	}
}
