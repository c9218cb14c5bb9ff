// Bindings for query.sql, kept in the layout sqlc emits for sqlc.yaml.
// Running sqlc generate replaces this file.

package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const advanceWeek = `-- name: AdvanceWeek :one
SELECT advance_week($1::uuid)
`

func (q *Queries) AdvanceWeek(ctx context.Context, leagueID uuid.UUID) (pqtype.NullRawMessage, error) {
	row := q.db.QueryRowContext(ctx, advanceWeek, leagueID)
	var advance_week pqtype.NullRawMessage
	err := row.Scan(&advance_week)
	return advance_week, err
}

const getLeague = `-- name: GetLeague :one
SELECT id, name, commissioner_id, current_season, current_week, created_at
FROM leagues
WHERE id = $1
`

func (q *Queries) GetLeague(ctx context.Context, id uuid.UUID) (League, error) {
	row := q.db.QueryRowContext(ctx, getLeague, id)
	var i League
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CommissionerID,
		&i.CurrentSeason,
		&i.CurrentWeek,
		&i.CreatedAt,
	)
	return i, err
}

const getMembership = `-- name: GetMembership :one
SELECT m.league_id, m.user_id, m.team_id, t.name AS team_name, m.role
FROM league_members m
LEFT JOIN teams t ON t.id = m.team_id
WHERE m.league_id = $1 AND m.user_id = $2
`

type GetMembershipParams struct {
	LeagueID uuid.UUID `json:"league_id"`
	UserID   uuid.UUID `json:"user_id"`
}

type GetMembershipRow struct {
	LeagueID uuid.UUID      `json:"league_id"`
	UserID   uuid.UUID      `json:"user_id"`
	TeamID   uuid.NullUUID  `json:"team_id"`
	TeamName sql.NullString `json:"team_name"`
	Role     string         `json:"role"`
}

func (q *Queries) GetMembership(ctx context.Context, arg GetMembershipParams) (GetMembershipRow, error) {
	row := q.db.QueryRowContext(ctx, getMembership, arg.LeagueID, arg.UserID)
	var i GetMembershipRow
	err := row.Scan(
		&i.LeagueID,
		&i.UserID,
		&i.TeamID,
		&i.TeamName,
		&i.Role,
	)
	return i, err
}

const listMembershipsForUser = `-- name: ListMembershipsForUser :many
SELECT m.league_id, m.user_id, m.team_id, t.name AS team_name, m.role, l.name AS league_name
FROM league_members m
JOIN leagues l ON l.id = m.league_id
LEFT JOIN teams t ON t.id = m.team_id
WHERE m.user_id = $1
ORDER BY l.name
`

type ListMembershipsForUserRow struct {
	LeagueID   uuid.UUID      `json:"league_id"`
	UserID     uuid.UUID      `json:"user_id"`
	TeamID     uuid.NullUUID  `json:"team_id"`
	TeamName   sql.NullString `json:"team_name"`
	Role       string         `json:"role"`
	LeagueName string         `json:"league_name"`
}

func (q *Queries) ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]ListMembershipsForUserRow, error) {
	rows, err := q.db.QueryContext(ctx, listMembershipsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMembershipsForUserRow
	for rows.Next() {
		var i ListMembershipsForUserRow
		if err := rows.Scan(
			&i.LeagueID,
			&i.UserID,
			&i.TeamID,
			&i.TeamName,
			&i.Role,
			&i.LeagueName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
