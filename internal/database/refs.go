package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/willfong/dbbench/internal/models"
)

// PostRef identifies an existing post and its author
type PostRef struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`
}

// SeedRefs are ids of seed rows that lookup and update groups cycle over.
// They are loaded once per run and shared by every backend.
type SeedRefs struct {
	UserIDs []uuid.UUID
	Posts   []PostRef
}

// Querier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LoadSeedRefs returns up to n seed user ids and n seed posts in a stable order
func LoadSeedRefs(ctx context.Context, q Querier, n int) (SeedRefs, error) {
	rows, err := q.Query(ctx, `
		SELECT id FROM users
		WHERE username LIKE $1
		ORDER BY username
		LIMIT $2`, models.SeedPattern, n)
	if err != nil {
		return SeedRefs{}, fmt.Errorf("load seed users: %w", err)
	}
	userIDs, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return SeedRefs{}, fmt.Errorf("load seed users: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT p.id, p.user_id FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE u.username LIKE $1
		ORDER BY u.username, p.title
		LIMIT $2`, models.SeedPattern, n)
	if err != nil {
		return SeedRefs{}, fmt.Errorf("load seed posts: %w", err)
	}
	posts, err := pgx.CollectRows(rows, pgx.RowToStructByName[PostRef])
	if err != nil {
		return SeedRefs{}, fmt.Errorf("load seed posts: %w", err)
	}

	return SeedRefs{UserIDs: userIDs, Posts: posts}, nil
}
