package main

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/mcdev12/dynasty-sim/go/internal/advancement"
	"github.com/mcdev12/dynasty-sim/go/internal/identity"
	"github.com/mcdev12/dynasty-sim/go/internal/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg *Config, services *Services, database *sql.DB) *http.Server {
	rpcPath, rpcHandler := advancement.NewHandler(services.Advancement)

	deps := web.Deps{
		Leagues:        services.Leagues,
		Advancer:       services.Orchestrator,
		Events:         services.Hub,
		Store:          database,
		Metrics:        promhttp.HandlerFor(services.Registry, promhttp.HandlerOpts{}),
		Session:        identity.Middleware(services.Identity, cfg.Session),
		RealtimeStatus: services.realtimeStatus,
		RPCPath:        rpcPath,
		RPCHandler:     rpcHandler,
	}

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: !allowsAnyOrigin(cfg.Server.AllowedOrigins),
	})

	// Wrap with CORS
	handler := c.Handler(web.NewRouter(deps))

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
