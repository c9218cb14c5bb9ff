package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-sim/go/internal/advancement"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
	"github.com/mcdev12/dynasty-sim/go/internal/identity"
	"github.com/mcdev12/dynasty-sim/go/internal/leagues"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
)

const loginPath = "/login"

type errorPage struct {
	Title   string
	Message string
}

type leaguesPage struct {
	User        *models.User
	Memberships []models.Membership
}

type dashboardPage struct {
	User       *models.User
	League     *models.League
	Membership *models.Membership
	CanAdvance bool
	Flash      *flash
}

type flash struct {
	Message   string
	Succeeded bool
	Summary   string
}

func loginHandler(render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.HTML(w, http.StatusOK, "login", identity.UserFromContext(r.Context()))
	}
}

func leaguesHandler(deps Deps, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := identity.UserFromContext(r.Context())
		if user == nil {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		memberships, err := deps.Leagues.ListMemberships(r.Context(), credential.ForUser(user))
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("failed to list leagues")
			renderError(w, render, http.StatusServiceUnavailable, "Could not load your leagues. Please try again.")
			return
		}
		render.HTML(w, http.StatusOK, "leagues", leaguesPage{User: user, Memberships: memberships})
	}
}

func dashboardHandler(deps Deps, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := identity.UserFromContext(r.Context())
		if user == nil {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		leagueID, ok := parseLeagueID(w, r, render)
		if !ok {
			return
		}

		page, status, err := loadDashboard(r.Context(), deps, user, leagueID)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("league_id", leagueID.String()).Msg("failed to load dashboard")
			renderError(w, render, status, errorMessage(err))
			return
		}
		render.HTML(w, http.StatusOK, "dashboard", page)
	}
}

// advanceHandler is the single entry point into the advancement workflow. The
// redirect to sign in is decided from the returned failure, never thrown.
func advanceHandler(deps Deps, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID, ok := parseLeagueID(w, r, render)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			renderError(w, render, http.StatusBadRequest, "Malformed form submission.")
			return
		}
		kindName := r.PostForm.Get("kind")
		if kindName == "" {
			kindName = advancement.Week{}.Name()
		}
		kind, err := advancement.ParseKind(kindName)
		if err != nil {
			renderError(w, render, http.StatusBadRequest, "Unknown advancement.")
			return
		}

		user := identity.UserFromContext(r.Context())
		report := deps.Advancer.Advance(r.Context(), user, advancement.Request{LeagueID: leagueID, Kind: kind})

		status := http.StatusOK
		if !report.Result.Succeeded() {
			switch report.Result.Failure.Kind {
			case advancement.Unauthenticated:
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			case advancement.NotFound:
				renderError(w, render, http.StatusNotFound, report.Outcome.Message)
				return
			}
			status = failureStatus(report.Result.Failure.Kind)
		}

		// Stale views are recomputed from the store before they are shown.
		page, loadStatus, err := loadDashboard(r.Context(), deps, user, leagueID)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("league_id", leagueID.String()).Msg("failed to reload dashboard after advancement")
			renderError(w, render, loadStatus, report.Outcome.Message)
			return
		}
		page.Flash = &flash{
			Message:   report.Outcome.Message,
			Succeeded: report.Outcome.Succeeded,
			Summary:   string(report.Result.Summary),
		}
		render.HTML(w, status, "dashboard", page)
	}
}

func eventsHandler(deps Deps, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := identity.UserFromContext(r.Context())
		if user == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		leagueID, ok := parseLeagueID(w, r, render)
		if !ok {
			return
		}

		// Only callers who can see the league may subscribe to it.
		if _, _, err := deps.Leagues.GetDashboard(r.Context(), credential.ForUser(user), leagueID); err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, leagues.ErrLeagueNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, http.StatusText(status), status)
			return
		}

		if err := deps.Events.Upgrade(w, r, user.ID, leagueID); err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("failed to subscribe to stale views")
		}
	}
}

func healthHandler(deps Deps, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		body := map[string]string{"status": "ok", "store": "ok", "realtime": "disabled"}
		status := http.StatusOK
		if err := deps.Store.PingContext(ctx); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("store health check failed")
			body["status"] = "degraded"
			body["store"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
		if deps.RealtimeStatus != nil {
			body["realtime"] = deps.RealtimeStatus()
		}
		render.JSON(w, status, body)
	}
}

func loadDashboard(ctx context.Context, deps Deps, user *models.User, leagueID uuid.UUID) (dashboardPage, int, error) {
	league, membership, err := deps.Leagues.GetDashboard(ctx, credential.ForUser(user), leagueID)
	if err != nil {
		if errors.Is(err, leagues.ErrLeagueNotFound) {
			return dashboardPage{}, http.StatusNotFound, err
		}
		return dashboardPage{}, http.StatusServiceUnavailable, err
	}
	return dashboardPage{
		User:       user,
		League:     league,
		Membership: membership,
		CanAdvance: advancement.Authorize(user, league).Authorized(),
	}, http.StatusOK, nil
}

func parseLeagueID(w http.ResponseWriter, r *http.Request, render *render.Render) (uuid.UUID, bool) {
	leagueID, err := uuid.Parse(chi.URLParam(r, "leagueID"))
	if err != nil {
		renderError(w, render, http.StatusNotFound, "League not found.")
		return uuid.Nil, false
	}
	return leagueID, true
}

func failureStatus(kind advancement.FailureKind) int {
	switch kind {
	case advancement.Unauthorized:
		return http.StatusForbidden
	case advancement.Configuration:
		return http.StatusInternalServerError
	case advancement.Remote:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func errorMessage(err error) string {
	if errors.Is(err, leagues.ErrLeagueNotFound) {
		return "League not found."
	}
	return "Could not reach the league store. Please try again."
}

func renderError(w http.ResponseWriter, render *render.Render, status int, message string) {
	render.HTML(w, status, "error", errorPage{Title: http.StatusText(status), Message: message})
}
