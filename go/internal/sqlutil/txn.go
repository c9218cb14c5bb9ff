package sqlutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Claims identify the caller to row-level policies inside the store.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role"`
}

// RunAs executes fn inside a *sql.Tx scoped to the caller: the session role is
// switched to claims.Role and the claims are exposed to policies through
// request.jwt.claims, both for the lifetime of the tx only.
func RunAs[T any](
	ctx context.Context,
	db *sql.DB,
	claims Claims,
	newQueries func(*sql.Tx) *T,
	fn func(q *T) error,
) error {
	raw, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to marshal claims: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "SELECT set_config('role', $1, true), set_config('request.jwt.claims', $2, true)", claims.Role, string(raw)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := fn(newQueries(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
