// Package entsql benchmarks a typed query DSL: every statement is built with
// ent's dialect/sql builder and executed through ent's database/sql driver.
package entsql

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// Name is the registry name of this backend
const Name = "entsql"

// Backend connects through ent's SQL driver
type Backend struct {
	db config.DatabaseConfig
}

// New returns the ent query-builder backend
func New(db config.DatabaseConfig) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Info() backend.Info {
	return backend.Info{
		Name:        Name,
		Description: "typed query builder on a blocking pool",
		Library:     "entgo.io/ent/dialect/sql",
		Kind:        backend.KindSync,
		Atomic:      true,
	}
}

func (b *Backend) Connect(ctx context.Context, opts backend.ConnectOptions) (backend.Conn, error) {
	cfg := b.db
	cfg.DSN = opts.DSN
	if opts.ConnectTimeout > 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := database.OpenPool(ctx, cfg, max(opts.PoolSize, 1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return NewConn(sql.OpenDB(dialect.Postgres, pool.DB())), nil
}

// execQuerier is implemented by *sql.Driver and its transactions
type execQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Conn runs the benchmark operations through ent's driver
type Conn struct {
	drv *sql.Driver
}

// NewConn wraps an ent driver. Close closes the driver's database.
func NewConn(drv *sql.Driver) *Conn {
	return &Conn{drv: drv}
}

func (c *Conn) Close() error {
	return c.drv.Close()
}

func (c *Conn) InsertUser(ctx context.Context, u models.NewUser) (uuid.UUID, error) {
	query, args := insertUserQuery(u)
	id, err := insertReturningID(ctx, c.drv, query, args)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (c *Conn) InsertUsersBatch(ctx context.Context, users []models.NewUser) ([]uuid.UUID, error) {
	return backend.BatchWithSingleInserts(ctx, users, c.InsertUser)
}

func (c *Conn) SelectUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query, args := selectUserByIDQuery(id)
	users, err := queryAll(ctx, c.drv, query, args, scanUser)
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (c *Conn) SelectUsersLimit(ctx context.Context, limit int) ([]models.User, error) {
	query, args := selectUsersLimitQuery(limit)
	users, err := queryAll(ctx, c.drv, query, args, scanUser)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

func (c *Conn) SelectUsersFiltered(ctx context.Context, minAge, maxAge int32, limit int) ([]models.User, error) {
	query, args := selectUsersFilteredQuery(minAge, maxAge, limit)
	users, err := queryAll(ctx, c.drv, query, args, scanUser)
	if err != nil {
		return nil, fmt.Errorf("select users filtered: %w", err)
	}
	return users, nil
}

func (c *Conn) SearchUsersByName(ctx context.Context, pattern string, limit int) ([]models.User, error) {
	query, args := searchUsersByNameQuery(pattern, limit)
	users, err := queryAll(ctx, c.drv, query, args, scanUser)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func (c *Conn) UpdateUser(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error) {
	query, args := updateUserQuery(id, firstName, lastName)
	n, err := execAffected(ctx, c.drv, query, args)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return n > 0, nil
}

func (c *Conn) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args := deleteUserQuery(id)
	n, err := execAffected(ctx, c.drv, query, args)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return n > 0, nil
}

func (c *Conn) InsertPost(ctx context.Context, p models.NewPost) (uuid.UUID, error) {
	query, args := insertPostQuery(p)
	id, err := insertReturningID(ctx, c.drv, query, args)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (c *Conn) SelectPostsWithUser(ctx context.Context, limit int) ([]models.PostWithUser, error) {
	query, args := selectPostsWithUserQuery(limit)
	rows, err := queryAll(ctx, c.drv, query, args, scanPostWithUser)
	if err != nil {
		return nil, fmt.Errorf("select posts with user: %w", err)
	}
	return rows, nil
}

func (c *Conn) SelectUsersPostsComments(ctx context.Context, limit int) ([]models.UserPostComment, error) {
	query, args := selectUsersPostsCommentsQuery(limit)
	rows, err := queryAll(ctx, c.drv, query, args, scanUserPostComment)
	if err != nil {
		return nil, fmt.Errorf("select users posts comments: %w", err)
	}
	return rows, nil
}

func (c *Conn) CountPostsPerUser(ctx context.Context) ([]models.PostCount, error) {
	query, args := countPostsPerUserQuery()
	counts, err := queryAll(ctx, c.drv, query, args, scanPostCount)
	if err != nil {
		return nil, fmt.Errorf("count posts per user: %w", err)
	}
	return counts, nil
}

func (c *Conn) InsertUserWithPosts(ctx context.Context, u models.NewUser, posts []models.NewPost) (id uuid.UUID, err error) {
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args := insertUserQuery(u)
	if id, err = insertReturningID(ctx, tx, query, args); err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	for _, p := range backend.AssignAuthor(posts, id) {
		query, args := insertPostQuery(p)
		if _, err = insertReturningID(ctx, tx, query, args); err != nil {
			return uuid.Nil, fmt.Errorf("insert post: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (c *Conn) Cleanup(ctx context.Context) (int64, error) {
	query, args := cleanupQuery()
	n, err := execAffected(ctx, c.drv, query, args)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	return n, nil
}

func (c *Conn) InsertComment(ctx context.Context, cm models.NewComment) (uuid.UUID, error) {
	query, args := insertCommentQuery(cm)
	id, err := insertReturningID(ctx, c.drv, query, args)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert comment: %w", err)
	}
	return id, nil
}

func (c *Conn) SelectPostsByStatus(ctx context.Context, status string, limit int) ([]models.Post, error) {
	query, args := selectPostsByStatusQuery(status, limit)
	posts, err := queryAll(ctx, c.drv, query, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("select posts by status: %w", err)
	}
	return posts, nil
}

func (c *Conn) IncrementViewCount(ctx context.Context, postID uuid.UUID) (bool, error) {
	query, args := incrementViewCountQuery(postID)
	n, err := execAffected(ctx, c.drv, query, args)
	if err != nil {
		return false, fmt.Errorf("increment view count: %w", err)
	}
	return n > 0, nil
}

func queryAll[T any](ctx context.Context, q execQuerier, query string, args []any, scan func(rowScanner) (T, error)) ([]T, error) {
	rows := &sql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func insertReturningID(ctx context.Context, q execQuerier, query string, args []any) (uuid.UUID, error) {
	ids, err := queryAll(ctx, q, query, args, func(rows rowScanner) (uuid.UUID, error) {
		var id uuid.UUID
		err := rows.Scan(&id)
		return id, err
	})
	if err != nil {
		return uuid.Nil, err
	}
	if len(ids) != 1 {
		return uuid.Nil, fmt.Errorf("insert returned %d rows", len(ids))
	}
	return ids[0], nil
}

func execAffected(ctx context.Context, q execQuerier, query string, args []any) (int64, error) {
	var res sql.Result
	if err := q.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
