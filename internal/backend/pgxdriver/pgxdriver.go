// Package pgxdriver is the raw-driver baseline: hand-written SQL executed
// directly on pgx, with no query layer in between.
package pgxdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// Name is the registry name of this backend
const Name = "pgx"

// querier is the subset of the pgx API shared by *pgx.Conn and *pgxpool.Pool
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Backend connects with pgx
type Backend struct {
	db config.DatabaseConfig
}

// New returns the pgx backend. db supplies pool tuning; the DSN and size come
// from ConnectOptions.
func New(db config.DatabaseConfig) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Info() backend.Info {
	return backend.Info{
		Name:        Name,
		Description: "raw driver, hand-written SQL",
		Library:     "github.com/jackc/pgx/v5",
		Kind:        backend.KindAsync,
		Atomic:      false,
	}
}

// Connect opens a single connection for serial cases and a pool otherwise
func (b *Backend) Connect(ctx context.Context, opts backend.ConnectOptions) (backend.Conn, error) {
	cfg := b.db
	cfg.DSN = opts.DSN
	if opts.ConnectTimeout > 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}

	if opts.PoolSize <= 1 {
		conn, err := database.ConnectPgx(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Name, err)
		}
		return &Conn{q: conn, close: func() error { return conn.Close(context.Background()) }}, nil
	}

	pool, err := database.NewPgxPool(ctx, cfg, opts.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return NewConn(pool), nil
}

// Conn executes the benchmark operations on a pgx connection or pool
type Conn struct {
	q     querier
	close func() error
}

// NewConn wraps an existing pool. Close closes the pool.
func NewConn(pool *pgxpool.Pool) *Conn {
	return &Conn{q: pool, close: func() error { pool.Close(); return nil }}
}

func (c *Conn) Close() error {
	return c.close()
}

func (c *Conn) InsertUser(ctx context.Context, u models.NewUser) (uuid.UUID, error) {
	var id uuid.UUID
	if err := c.q.QueryRow(ctx, insertUserSQL, u.Username, u.Email, u.FirstName, u.LastName, u.Age).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (c *Conn) InsertUsersBatch(ctx context.Context, users []models.NewUser) ([]uuid.UUID, error) {
	return backend.BatchWithSingleInserts(ctx, users, c.InsertUser)
}

func (c *Conn) SelectUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	rows, err := c.q.Query(ctx, selectUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (c *Conn) SelectUsersLimit(ctx context.Context, limit int) ([]models.User, error) {
	return c.selectUsers(ctx, selectUsersLimitSQL, limit)
}

func (c *Conn) SelectUsersFiltered(ctx context.Context, minAge, maxAge int32, limit int) ([]models.User, error) {
	return c.selectUsers(ctx, selectUsersFilteredSQL, minAge, maxAge, limit)
}

func (c *Conn) SearchUsersByName(ctx context.Context, pattern string, limit int) ([]models.User, error) {
	return c.selectUsers(ctx, searchUsersByNameSQL, "%"+pattern+"%", limit)
}

func (c *Conn) selectUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

func (c *Conn) UpdateUser(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error) {
	tag, err := c.q.Exec(ctx, updateUserSQL, id, firstName, lastName)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Conn) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := c.q.Exec(ctx, deleteUserSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Conn) InsertPost(ctx context.Context, p models.NewPost) (uuid.UUID, error) {
	var id uuid.UUID
	if err := c.q.QueryRow(ctx, insertPostSQL, p.UserID, p.Title, p.Content, p.Status).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (c *Conn) SelectPostsWithUser(ctx context.Context, limit int) ([]models.PostWithUser, error) {
	rows, err := c.q.Query(ctx, selectPostsWithUserSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select posts with user: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PostWithUser, error) {
		var r models.PostWithUser
		err := row.Scan(
			&r.Post.ID, &r.Post.UserID, &r.Post.Title, &r.Post.Content, &r.Post.Status,
			&r.Post.ViewCount, &r.Post.CreatedAt, &r.Post.UpdatedAt,
			&r.User.ID, &r.User.Username, &r.User.Email, &r.User.FirstName, &r.User.LastName,
			&r.User.Age, &r.User.CreatedAt, &r.User.UpdatedAt,
		)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("select posts with user: %w", err)
	}
	return result, nil
}

func (c *Conn) SelectUsersPostsComments(ctx context.Context, limit int) ([]models.UserPostComment, error) {
	rows, err := c.q.Query(ctx, selectUsersPostsCommentsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select users posts comments: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserPostComment, error) {
		var r models.UserPostComment
		err := row.Scan(
			&r.User.ID, &r.User.Username, &r.User.Email, &r.User.FirstName, &r.User.LastName,
			&r.User.Age, &r.User.CreatedAt, &r.User.UpdatedAt,
			&r.Post.ID, &r.Post.UserID, &r.Post.Title, &r.Post.Content, &r.Post.Status,
			&r.Post.ViewCount, &r.Post.CreatedAt, &r.Post.UpdatedAt,
			&r.Comment.ID, &r.Comment.PostID, &r.Comment.UserID, &r.Comment.Content, &r.Comment.CreatedAt,
		)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("select users posts comments: %w", err)
	}
	return result, nil
}

func (c *Conn) CountPostsPerUser(ctx context.Context) ([]models.PostCount, error) {
	rows, err := c.q.Query(ctx, countPostsPerUserSQL)
	if err != nil {
		return nil, fmt.Errorf("count posts per user: %w", err)
	}
	counts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PostCount])
	if err != nil {
		return nil, fmt.Errorf("count posts per user: %w", err)
	}
	return counts, nil
}

// InsertUserWithPosts issues the statements one after another without a
// transaction. A failure after the user insert leaves a partial write behind
// until the next Cleanup.
func (c *Conn) InsertUserWithPosts(ctx context.Context, u models.NewUser, posts []models.NewPost) (uuid.UUID, error) {
	id, err := c.InsertUser(ctx, u)
	if err != nil {
		return uuid.Nil, err
	}
	for _, p := range backend.AssignAuthor(posts, id) {
		if _, err := c.q.Exec(ctx, insertPostSQL, p.UserID, p.Title, p.Content, p.Status); err != nil {
			return uuid.Nil, fmt.Errorf("insert post: %w", err)
		}
	}
	return id, nil
}

func (c *Conn) Cleanup(ctx context.Context) (int64, error) {
	tag, err := c.q.Exec(ctx, cleanupSQL, models.SyntheticPattern)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Conn) InsertComment(ctx context.Context, cm models.NewComment) (uuid.UUID, error) {
	var id uuid.UUID
	if err := c.q.QueryRow(ctx, insertCommentSQL, cm.PostID, cm.UserID, cm.Content).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert comment: %w", err)
	}
	return id, nil
}

func (c *Conn) SelectPostsByStatus(ctx context.Context, status string, limit int) ([]models.Post, error) {
	rows, err := c.q.Query(ctx, selectPostsByStatusSQL, status, limit)
	if err != nil {
		return nil, fmt.Errorf("select posts by status: %w", err)
	}
	posts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Post])
	if err != nil {
		return nil, fmt.Errorf("select posts by status: %w", err)
	}
	return posts, nil
}

func (c *Conn) IncrementViewCount(ctx context.Context, postID uuid.UUID) (bool, error) {
	tag, err := c.q.Exec(ctx, incrementViewCountSQL, postID)
	if err != nil {
		return false, fmt.Errorf("increment view count: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
