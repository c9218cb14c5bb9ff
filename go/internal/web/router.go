package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// NewRouter builds the HTTP routes for the pages, the stale-view socket and the
// advancement RPC.
func NewRouter(deps Deps) *chi.Mux {
	render := newRender()
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(deps, render))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		if deps.Session != nil {
			r.Use(deps.Session)
		}

		r.Get("/login", loginHandler(render))

		r.Group(func(r chi.Router) {
			// Page and form requests; the socket below must not be cut off by this.
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/", leaguesHandler(deps, render))
			r.Get("/leagues/{leagueID}", dashboardHandler(deps, render))
			r.Post("/leagues/{leagueID}/advance", advanceHandler(deps, render))
		})

		r.Get("/leagues/{leagueID}/events", eventsHandler(deps, render))

		if deps.RPCHandler != nil {
			r.Handle(deps.RPCPath+"*", deps.RPCHandler)
		}
	})

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	event := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).WithLevel(zerolog.ErrorLevel)
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
