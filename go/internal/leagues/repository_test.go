package leagues

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
	"github.com/mcdev12/dynasty-sim/go/internal/leagues/db"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/mcdev12/dynasty-sim/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) GetLeague(ctx context.Context, id uuid.UUID) (db.League, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.League), args.Error(1)
}

func (m *mockQuerier) GetMembership(ctx context.Context, arg db.GetMembershipParams) (db.GetMembershipRow, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.GetMembershipRow), args.Error(1)
}

func (m *mockQuerier) ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]db.ListMembershipsForUserRow, error) {
	args := m.Called(ctx, userID)
	var rows []db.ListMembershipsForUserRow
	if args.Get(0) != nil {
		rows = args.Get(0).([]db.ListMembershipsForUserRow)
	}
	return rows, args.Error(1)
}

func (m *mockQuerier) AdvanceWeek(ctx context.Context, leagueID uuid.UUID) (pqtype.NullRawMessage, error) {
	args := m.Called(ctx, leagueID)
	return args.Get(0).(pqtype.NullRawMessage), args.Error(1)
}

// fakeRunner records the claims of every transaction and runs fn directly.
type fakeRunner struct {
	q      Querier
	claims []sqlutil.Claims
}

func (f *fakeRunner) RunAs(ctx context.Context, claims sqlutil.Claims, fn func(q Querier) error) error {
	f.claims = append(f.claims, claims)
	return fn(f.q)
}

var (
	leagueID       = uuid.MustParse("0b9c7f3e-6a0e-4a7c-9a55-3d5b8a0d1e01")
	commissionerID = uuid.MustParse("5e0f2a51-1c3d-4c8e-8f61-2f0e7b1b4a42")
	coachID        = uuid.MustParse("a3a9d7c2-9f0b-4a8c-b2a4-1e2f3d4c5b07")
	teamID         = uuid.MustParse("c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f")
)

func TestRepository_GetLeague(t *testing.T) {
	ctx := context.Background()
	caller := credential.Caller{UserID: commissionerID, Email: "commish@example.com"}
	created := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	q := new(mockQuerier)
	q.On("GetLeague", ctx, leagueID).Return(db.League{
		ID:             leagueID,
		Name:           "Big Ten Dynasty",
		CommissionerID: commissionerID,
		CurrentSeason:  2,
		CurrentWeek:    3,
		CreatedAt:      created,
	}, nil)
	runner := &fakeRunner{q: q}
	repo := NewRepositoryWithRunner(runner)

	league, err := repo.GetLeague(ctx, caller, leagueID)
	require.NoError(t, err)
	assert.Equal(t, &models.League{
		ID:             leagueID,
		Name:           "Big Ten Dynasty",
		CommissionerID: commissionerID,
		CurrentSeason:  2,
		CurrentWeek:    3,
		CreatedAt:      created,
	}, league)

	require.Len(t, runner.claims, 1)
	assert.Equal(t, commissionerID.String(), runner.claims[0].Subject)
	assert.Equal(t, credential.AuthenticatedRole, runner.claims[0].Role)
}

func TestRepository_GetLeagueNotFound(t *testing.T) {
	ctx := context.Background()
	q := new(mockQuerier)
	q.On("GetLeague", ctx, leagueID).Return(db.League{}, sql.ErrNoRows)
	repo := NewRepositoryWithRunner(&fakeRunner{q: q})

	_, err := repo.GetLeague(ctx, credential.Caller{UserID: coachID}, leagueID)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

func TestRepository_GetMembership(t *testing.T) {
	ctx := context.Background()
	caller := credential.Caller{UserID: coachID}

	t.Run("member with team", func(t *testing.T) {
		q := new(mockQuerier)
		q.On("GetMembership", ctx, db.GetMembershipParams{LeagueID: leagueID, UserID: coachID}).Return(db.GetMembershipRow{
			LeagueID: leagueID,
			UserID:   coachID,
			TeamID:   uuid.NullUUID{UUID: teamID, Valid: true},
			TeamName: sql.NullString{String: "Wolverines", Valid: true},
			Role:     "head_coach",
		}, nil)
		repo := NewRepositoryWithRunner(&fakeRunner{q: q})

		m, err := repo.GetMembership(ctx, caller, leagueID, coachID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.True(t, m.HasTeam())
		assert.Equal(t, teamID, *m.TeamID)
		assert.Equal(t, "Wolverines", m.TeamName)
		assert.Equal(t, models.MemberRoleHeadCoach, m.Role)
	})

	t.Run("not a member", func(t *testing.T) {
		q := new(mockQuerier)
		q.On("GetMembership", ctx, mock.Anything).Return(db.GetMembershipRow{}, sql.ErrNoRows)
		repo := NewRepositoryWithRunner(&fakeRunner{q: q})

		m, err := repo.GetMembership(ctx, caller, leagueID, coachID)
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestRepository_GetDashboard(t *testing.T) {
	ctx := context.Background()
	caller := credential.Caller{UserID: coachID}

	q := new(mockQuerier)
	q.On("GetLeague", ctx, leagueID).Return(db.League{ID: leagueID, Name: "SEC Dynasty", CommissionerID: commissionerID, CurrentSeason: 1, CurrentWeek: 7}, nil)
	q.On("GetMembership", ctx, db.GetMembershipParams{LeagueID: leagueID, UserID: coachID}).Return(db.GetMembershipRow{
		LeagueID: leagueID,
		UserID:   coachID,
		Role:     "coordinator",
	}, nil)
	runner := &fakeRunner{q: q}
	repo := NewRepositoryWithRunner(runner)

	league, membership, err := repo.GetDashboard(ctx, caller, leagueID)
	require.NoError(t, err)
	assert.Equal(t, 7, league.CurrentWeek)
	require.NotNil(t, membership)
	assert.False(t, membership.HasTeam())
	assert.Equal(t, "SEC Dynasty", membership.LeagueName)
	assert.Len(t, runner.claims, 1, "league and membership are read in one transaction")
}

func TestRepository_ListMemberships(t *testing.T) {
	ctx := context.Background()
	q := new(mockQuerier)
	q.On("ListMembershipsForUser", ctx, coachID).Return([]db.ListMembershipsForUserRow{
		{LeagueID: leagueID, UserID: coachID, Role: "ad", LeagueName: "ACC Dynasty"},
	}, nil)
	repo := NewRepositoryWithRunner(&fakeRunner{q: q})

	got, err := repo.ListMemberships(ctx, credential.Caller{UserID: coachID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ACC Dynasty", got[0].LeagueName)
	assert.Equal(t, models.MemberRoleAD, got[0].Role)
}

func TestRepository_AdvanceWeek(t *testing.T) {
	ctx := context.Background()
	caller := credential.Caller{UserID: commissionerID}

	t.Run("passes the summary through", func(t *testing.T) {
		q := new(mockQuerier)
		q.On("AdvanceWeek", ctx, leagueID).Return(pqtype.NullRawMessage{RawMessage: []byte(`{"games_simulated":32}`), Valid: true}, nil).Once()
		repo := NewRepositoryWithRunner(&fakeRunner{q: q})

		summary, err := repo.AdvanceWeek(ctx, caller, leagueID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"games_simulated":32}`, string(summary))
		q.AssertExpectations(t)
	})

	t.Run("keeps the server error reachable", func(t *testing.T) {
		q := new(mockQuerier)
		q.On("AdvanceWeek", ctx, leagueID).Return(pqtype.NullRawMessage{}, &pq.Error{Code: "P0001", Message: "week already finalized"})
		repo := NewRepositoryWithRunner(&fakeRunner{q: q})

		_, err := repo.AdvanceWeek(ctx, caller, leagueID)
		require.Error(t, err)
		se, ok := sqlutil.AsServerError(err)
		require.True(t, ok)
		assert.Equal(t, "week already finalized", se.Message)
	})

	t.Run("transport failure", func(t *testing.T) {
		q := new(mockQuerier)
		q.On("AdvanceWeek", ctx, leagueID).Return(pqtype.NullRawMessage{}, errors.New("driver: bad connection"))
		repo := NewRepositoryWithRunner(&fakeRunner{q: q})

		_, err := repo.AdvanceWeek(ctx, caller, leagueID)
		require.Error(t, err)
		_, ok := sqlutil.AsServerError(err)
		assert.False(t, ok)
	})
}
