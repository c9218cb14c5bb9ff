package advancement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	league := &models.League{ID: leagueL1, CommissionerID: commissioner42.ID, CurrentWeek: 3}

	tests := []struct {
		name   string
		user   *models.User
		league *models.League
		want   DenialReason
	}{
		{"commissioner", commissioner42, league, 0},
		{"member but not commissioner", user7, league, NotCommissioner},
		{"signed out", nil, league, NotSignedIn},
		{"signed out and no league", nil, nil, NotSignedIn},
		{"league not found", commissioner42, nil, LeagueNotFound},
		{"nil user id never matches", &models.User{ID: uuid.Nil}, &models.League{ID: leagueL1}, NotCommissioner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.user, tt.league)
			assert.Equal(t, tt.want, d.Reason)
			assert.Equal(t, tt.want == 0, d.Authorized())
			if d.Authorized() {
				assert.Nil(t, d.Failure())
			} else {
				require.NotNil(t, d.Failure())
			}
		})
	}
}

func TestDecision_FailureMessages(t *testing.T) {
	assert.Equal(t, Unauthenticated, Decision{Reason: NotSignedIn}.Failure().Kind)
	assert.Equal(t, "Only the commissioner can advance the week.", Decision{Reason: NotCommissioner}.Failure().Reason)
	assert.Equal(t, "League not found.", Decision{Reason: LeagueNotFound}.Failure().Reason)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("week")
	require.NoError(t, err)
	assert.Equal(t, Week{}, k)

	k, err = ParseKind("recruiting_week")
	require.NoError(t, err)
	assert.Equal(t, RecruitingWeek{}, k)

	_, err = ParseKind("season")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestPresent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		out := Present(RecruitingWeek{}, Success(nil))
		assert.True(t, out.Succeeded)
		assert.Equal(t, "Recruiting week processed.", out.Message)
		assert.Len(t, out.Stale, 4)
	})

	t.Run("failure", func(t *testing.T) {
		out := Present(Week{}, Fail(&Failure{Kind: Remote, Reason: "season is over"}))
		assert.False(t, out.Succeeded)
		assert.Equal(t, "season is over", out.Message)
		assert.True(t, out.Stale.Empty())
	})
}

func TestAttempt_Transitions(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 6, 18, 0, 0, 0, time.UTC))
	a := newAttempt(clock)

	assert.Error(t, a.to(PhaseInvoking), "cannot invoke before authorizing")
	require.NoError(t, a.to(PhaseAuthorizing))
	require.NoError(t, a.to(PhaseInvoking))
	clock.Advance(250 * time.Millisecond)
	require.NoError(t, a.finish(Success(nil)))

	assert.Equal(t, PhaseIdle, a.Phase())
	assert.Equal(t, 250*time.Millisecond, a.Duration())
	assert.Error(t, a.to(PhaseInvoking), "an idle attempt is finished and cannot be retried")
}
