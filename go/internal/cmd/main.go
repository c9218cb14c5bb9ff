package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mcdev12/dynasty-sim/go/internal/dbconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// The store location is required for every request path
	dbCfg, err := dbconfig.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("league store is not configured")
	}
	if !dbCfg.HasServiceRole() {
		log.Warn().Str("key", dbconfig.EnvServiceRoleKey).Msg("service role not configured, recruiting weeks will fail")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := setupDatabase(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to league store")
	}
	defer database.Close()

	services := setupServices(database, dbCfg, cfg)
	if services.NATS != nil {
		defer services.NATS.Close()
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubDone := make(chan struct{})
	go func() {
		services.Hub.Start(ctx)
		close(hubDone)
	}()

	server := setupServer(cfg, services, database)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("dynasty server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	<-hubDone

	log.Info().Msg("dynasty server shutdown complete")
}
