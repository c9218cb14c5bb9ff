package credential

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/dynasty-sim/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

// Service is the elevated credential. It bypasses row-level policies and only
// exists inside Elevator.WithService.
type Service struct {
	conn *pgx.Conn
}

// QueryRow runs a single-row query with the elevated role.
func (s *Service) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.conn.QueryRow(ctx, sql, args...)
}

// Connector opens a connection for a DSN. pgx.Connect in production.
type Connector func(ctx context.Context, dsn string) (*pgx.Conn, error)

// Elevator hands out the elevated credential for the duration of one call.
type Elevator struct {
	cfg     dbconfig.Config
	connect Connector
}

// NewElevator creates an Elevator for the configured service role.
func NewElevator(cfg dbconfig.Config) *Elevator {
	return &Elevator{
		cfg:     cfg,
		connect: pgx.Connect,
	}
}

// WithService opens a dedicated service-role connection, runs fn with it and
// closes it before returning. Nothing is pooled or cached between calls.
// A missing service key is reported as *dbconfig.MissingError before any
// connection attempt.
func (e *Elevator) WithService(ctx context.Context, fn func(svc *Service) error) error {
	dsn, err := e.cfg.ServiceDSN()
	if err != nil {
		return err
	}

	conn, err := e.connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to acquire service credential: %w", err)
	}
	defer func() {
		if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to release service credential")
		}
	}()

	return fn(&Service{conn: conn})
}
