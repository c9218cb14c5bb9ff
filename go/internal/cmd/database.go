package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mcdev12/dynasty-sim/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

// setupDatabase opens the pool used for every caller-scoped query. It logs in
// as the low-privilege role; the service role is never pooled.
func setupDatabase(cfg dbconfig.Config) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("store", cfg.Redacted()).
		Bool("service_role", cfg.HasServiceRole()).
		Msg("connected to league store")
	return database, nil
}
