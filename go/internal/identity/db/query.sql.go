// Bindings for query.sql, kept in the layout sqlc emits for sqlc.yaml.
// Running sqlc generate replaces this file.

package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const extendSession = `-- name: ExtendSession :exec
UPDATE auth.sessions
SET expires_at = $2
WHERE token_hash = $1
`

type ExtendSessionParams struct {
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (q *Queries) ExtendSession(ctx context.Context, arg ExtendSessionParams) error {
	_, err := q.db.ExecContext(ctx, extendSession, arg.TokenHash, arg.ExpiresAt)
	return err
}

const getSession = `-- name: GetSession :one
SELECT s.user_id, u.email, s.expires_at
FROM auth.sessions s
JOIN auth.users u ON u.id = s.user_id
WHERE s.token_hash = $1
`

type GetSessionRow struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (q *Queries) GetSession(ctx context.Context, tokenHash string) (GetSessionRow, error) {
	row := q.db.QueryRowContext(ctx, getSession, tokenHash)
	var i GetSessionRow
	err := row.Scan(&i.UserID, &i.Email, &i.ExpiresAt)
	return i, err
}
