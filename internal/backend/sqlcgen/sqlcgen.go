// Package sqlcgen benchmarks type-safe code generated by sqlc from
// queries.sql. The generated package lives in ./db and runs on pgx.
package sqlcgen

//go:generate sqlc generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/backend/sqlcgen/db"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// Name is the registry name of this backend
const Name = "sqlc"

type Backend struct {
	db config.DatabaseConfig
}

func New(db config.DatabaseConfig) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Info() backend.Info {
	return backend.Info{
		Name:        Name,
		Description: "generated type-safe queries",
		Library:     "sqlc + github.com/jackc/pgx/v5",
		Kind:        backend.KindAsync,
		Atomic:      true,
	}
}

func (b *Backend) Connect(ctx context.Context, opts backend.ConnectOptions) (backend.Conn, error) {
	cfg := b.db
	cfg.DSN = opts.DSN
	if opts.ConnectTimeout > 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}
	pool, err := database.NewPgxPool(ctx, cfg, max(opts.PoolSize, 1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return NewConn(pool), nil
}

// txBeginner is satisfied by *pgxpool.Pool and lets tests substitute a mock
type txBeginner interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Conn adapts the generated Queries to backend.Conn
type Conn struct {
	pool  txBeginner
	q     *db.Queries
	close func()
}

func NewConn(pool *pgxpool.Pool) *Conn {
	return &Conn{pool: pool, q: db.New(pool), close: pool.Close}
}

func (c *Conn) Close() error {
	if c.close != nil {
		c.close()
	}
	return nil
}

func (c *Conn) InsertUser(ctx context.Context, u models.NewUser) (uuid.UUID, error) {
	return insertUser(ctx, c.q, u)
}

func insertUser(ctx context.Context, q *db.Queries, u models.NewUser) (uuid.UUID, error) {
	id, err := q.InsertUser(ctx, db.InsertUserParams{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (c *Conn) InsertUsersBatch(ctx context.Context, users []models.NewUser) ([]uuid.UUID, error) {
	return backend.BatchWithSingleInserts(ctx, users, c.InsertUser)
}

func (c *Conn) SelectUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, err := c.q.SelectUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	u := toUser(row)
	return &u, nil
}

func (c *Conn) SelectUsersLimit(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := c.q.SelectUsersLimit(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return mapRows(rows, toUser), nil
}

func (c *Conn) SelectUsersFiltered(ctx context.Context, minAge, maxAge int32, limit int) ([]models.User, error) {
	rows, err := c.q.SelectUsersFiltered(ctx, db.SelectUsersFilteredParams{
		MinAge:   minAge,
		MaxAge:   maxAge,
		RowLimit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("select users filtered: %w", err)
	}
	return mapRows(rows, toUser), nil
}

func (c *Conn) SearchUsersByName(ctx context.Context, pattern string, limit int) ([]models.User, error) {
	rows, err := c.q.SearchUsersByName(ctx, db.SearchUsersByNameParams{
		Pattern:  "%" + pattern + "%",
		RowLimit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return mapRows(rows, toUser), nil
}

func (c *Conn) UpdateUser(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error) {
	n, err := c.q.UpdateUser(ctx, db.UpdateUserParams{ID: id, FirstName: firstName, LastName: lastName})
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return n > 0, nil
}

func (c *Conn) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := c.q.DeleteUser(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return n > 0, nil
}

func (c *Conn) InsertPost(ctx context.Context, p models.NewPost) (uuid.UUID, error) {
	return insertPost(ctx, c.q, p)
}

func insertPost(ctx context.Context, q *db.Queries, p models.NewPost) (uuid.UUID, error) {
	id, err := q.InsertPost(ctx, db.InsertPostParams{
		UserID:  p.UserID,
		Title:   p.Title,
		Content: p.Content,
		Status:  p.Status,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (c *Conn) SelectPostsWithUser(ctx context.Context, limit int) ([]models.PostWithUser, error) {
	rows, err := c.q.SelectPostsWithUser(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("select posts with user: %w", err)
	}
	return mapRows(rows, func(r db.SelectPostsWithUserRow) models.PostWithUser {
		return models.PostWithUser{Post: toPost(r.Post), User: toUser(r.User)}
	}), nil
}

func (c *Conn) SelectUsersPostsComments(ctx context.Context, limit int) ([]models.UserPostComment, error) {
	rows, err := c.q.SelectUsersPostsComments(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("select users posts comments: %w", err)
	}
	return mapRows(rows, func(r db.SelectUsersPostsCommentsRow) models.UserPostComment {
		return models.UserPostComment{User: toUser(r.User), Post: toPost(r.Post), Comment: toComment(r.Comment)}
	}), nil
}

func (c *Conn) CountPostsPerUser(ctx context.Context) ([]models.PostCount, error) {
	rows, err := c.q.CountPostsPerUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts per user: %w", err)
	}
	return mapRows(rows, func(r db.CountPostsPerUserRow) models.PostCount {
		return models.PostCount{UserID: r.UserID, Count: r.PostCount}
	}), nil
}

// InsertUserWithPosts runs the user and post inserts in one transaction
func (c *Conn) InsertUserWithPosts(ctx context.Context, u models.NewUser, posts []models.NewPost) (uuid.UUID, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	// no-op after a successful commit
	defer tx.Rollback(context.Background())

	qtx := c.q.WithTx(tx)
	id, err := insertUser(ctx, qtx, u)
	if err != nil {
		return uuid.Nil, err
	}
	for _, p := range backend.AssignAuthor(posts, id) {
		if _, err := insertPost(ctx, qtx, p); err != nil {
			return uuid.Nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (c *Conn) Cleanup(ctx context.Context) (int64, error) {
	n, err := c.q.CleanupUsers(ctx, models.SyntheticPattern)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	return n, nil
}

func (c *Conn) InsertComment(ctx context.Context, cm models.NewComment) (uuid.UUID, error) {
	id, err := c.q.InsertComment(ctx, db.InsertCommentParams{PostID: cm.PostID, UserID: cm.UserID, Content: cm.Content})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert comment: %w", err)
	}
	return id, nil
}

func (c *Conn) SelectPostsByStatus(ctx context.Context, status string, limit int) ([]models.Post, error) {
	rows, err := c.q.SelectPostsByStatus(ctx, db.SelectPostsByStatusParams{Status: status, RowLimit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("select posts by status: %w", err)
	}
	return mapRows(rows, toPost), nil
}

func (c *Conn) IncrementViewCount(ctx context.Context, postID uuid.UUID) (bool, error) {
	n, err := c.q.IncrementViewCount(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("increment view count: %w", err)
	}
	return n > 0, nil
}
