package sqlutil

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// UniqueViolation is the SQLSTATE for unique_violation.
const UniqueViolation = "23505"

// ServerError is an error reported by the store itself: a raised exception,
// constraint violation or permission failure. Anything else (dial, TLS, reset
// connections, timeouts) is a transport problem.
type ServerError struct {
	Code    string
	Message string
}

// AsServerError extracts the server-side error from either driver.
func AsServerError(err error) (*ServerError, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &ServerError{Code: string(pqErr.Code), Message: pqErr.Message}, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &ServerError{Code: pgErr.Code, Message: pgErr.Message}, true
	}
	return nil, false
}

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
