package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/willfong/dbbench/internal/models"
)

// RowCounts are the table sizes shown by the info command
type RowCounts struct {
	Users     int64
	Posts     int64
	Comments  int64
	Synthetic int64
	Seed      int64
}

// rowQuerier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Counts returns row counts for the benchmark tables
func Counts(ctx context.Context, q rowQuerier) (RowCounts, error) {
	var c RowCounts
	err := q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM comments),
			(SELECT COUNT(*) FROM users WHERE username LIKE $1),
			(SELECT COUNT(*) FROM users WHERE username LIKE $2)`,
		models.SyntheticPattern, models.SeedPattern,
	).Scan(&c.Users, &c.Posts, &c.Comments, &c.Synthetic, &c.Seed)
	if err != nil {
		return RowCounts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}
