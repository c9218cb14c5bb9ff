package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-sim/go/internal/advancement"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
	"github.com/mcdev12/dynasty-sim/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-sim/go/internal/identity"
	identitydb "github.com/mcdev12/dynasty-sim/go/internal/identity/db"
	"github.com/mcdev12/dynasty-sim/go/internal/leagues"
	"github.com/mcdev12/dynasty-sim/go/internal/views"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Identity     *identity.Provider
	Leagues      *leagues.Repository
	Orchestrator *advancement.Orchestrator
	Advancement  *advancement.Service
	Registry     *prometheus.Registry
	Hub          *views.Hub
	NATS         *nats.Conn
}

func setupServices(database *sql.DB, dbCfg dbconfig.Config, cfg *Config) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → Orchestrator → Service layer
	clock := clockwork.NewRealClock()

	// Identity
	identityQueries := identitydb.New(database)
	identityProvider := identity.NewProvider(identityQueries, clock, cfg.Session.CookieName)

	// Leagues
	leagueRepo := leagues.NewRepository(database)

	// Stale views: the local hub always, NATS when enabled so other instances hear too
	hub := views.NewHub(views.DefaultHubConfig(), clock)
	var invalidator views.Invalidator = hub
	var nc *nats.Conn
	if cfg.Realtime.Enabled {
		natsCfg := cfg.natsConfig()
		conn, err := views.Connect(natsCfg)
		if err != nil {
			log.Warn().Err(err).Msg("realtime relay unavailable, stale views stay local")
		} else if _, err := views.Relay(conn, natsCfg.SubjectPrefix, hub); err != nil {
			log.Warn().Err(err).Msg("realtime relay unavailable, stale views stay local")
			conn.Close()
		} else {
			nc = conn
			invalidator = views.NewNATSNotifier(conn, natsCfg.SubjectPrefix, clock)
		}
	}

	// Advancement
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := advancement.NewPrometheusMetrics(registry)
	invoker := advancement.NewInvoker(advancement.Procedures{
		Week:       leagueRepo,
		Recruiting: leagueRepo,
		Elevator:   credential.NewElevator(dbCfg),
	}, metrics, clock)
	orchestrator := advancement.NewOrchestrator(leagueRepo, invoker, invalidator, metrics, clock)
	advancementService := advancement.NewService(orchestrator)

	return &Services{
		Identity:     identityProvider,
		Leagues:      leagueRepo,
		Orchestrator: orchestrator,
		Advancement:  advancementService,
		Registry:     registry,
		Hub:          hub,
		NATS:         nc,
	}
}

func (s *Services) realtimeStatus() string {
	if s.NATS == nil {
		return "local"
	}
	return s.NATS.Status().String()
}
