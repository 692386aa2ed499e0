// Package sqlxdb benchmarks sqlx on lib/pq: hand-written SQL with struct
// scanning and named statements prepared (and so checked against the schema)
// when the connection is opened.
package sqlxdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// Name is the registry name of this backend
const Name = "sqlx"

// Backend connects through sqlx
type Backend struct {
	db config.DatabaseConfig
}

// New returns the sqlx backend
func New(db config.DatabaseConfig) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Info() backend.Info {
	return backend.Info{
		Name:        Name,
		Description: "query library with struct scanning, statements prepared at connect",
		Library:     "github.com/jmoiron/sqlx",
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

	pool, err := database.OpenPool(ctx, cfg, max(opts.PoolSize, 1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	conn, err := NewConn(ctx, sqlx.NewDb(pool.DB(), database.DriverName))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return conn, nil
}

// Conn runs the benchmark operations through sqlx
type Conn struct {
	db *sqlx.DB

	insertUser    *sqlx.NamedStmt
	insertPost    *sqlx.NamedStmt
	insertComment *sqlx.NamedStmt
}

// NewConn prepares the named insert statements on db
func NewConn(ctx context.Context, db *sqlx.DB) (*Conn, error) {
	c := &Conn{db: db}

	var err error
	if c.insertUser, err = db.PrepareNamedContext(ctx, insertUserSQL); err != nil {
		return nil, fmt.Errorf("prepare insert user: %w", err)
	}
	if c.insertPost, err = db.PrepareNamedContext(ctx, insertPostSQL); err != nil {
		c.insertUser.Close()
		return nil, fmt.Errorf("prepare insert post: %w", err)
	}
	if c.insertComment, err = db.PrepareNamedContext(ctx, insertCommentSQL); err != nil {
		c.insertUser.Close()
		c.insertPost.Close()
		return nil, fmt.Errorf("prepare insert comment: %w", err)
	}
	return c, nil
}

func (c *Conn) Close() error {
	return errors.Join(
		c.insertUser.Close(),
		c.insertPost.Close(),
		c.insertComment.Close(),
		c.db.Close(),
	)
}

func (c *Conn) InsertUser(ctx context.Context, u models.NewUser) (uuid.UUID, error) {
	var id uuid.UUID
	if err := c.insertUser.GetContext(ctx, &id, u); err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (c *Conn) InsertUsersBatch(ctx context.Context, users []models.NewUser) ([]uuid.UUID, error) {
	return backend.BatchWithSingleInserts(ctx, users, c.InsertUser)
}

func (c *Conn) SelectUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := c.db.GetContext(ctx, &u, selectUserByIDSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (c *Conn) SelectUsersLimit(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	if err := c.db.SelectContext(ctx, &users, selectUsersLimitSQL, limit); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

func (c *Conn) SelectUsersFiltered(ctx context.Context, minAge, maxAge int32, limit int) ([]models.User, error) {
	var users []models.User
	if err := c.db.SelectContext(ctx, &users, selectUsersFilteredSQL, minAge, maxAge, limit); err != nil {
		return nil, fmt.Errorf("select users filtered: %w", err)
	}
	return users, nil
}

func (c *Conn) SearchUsersByName(ctx context.Context, pattern string, limit int) ([]models.User, error) {
	var users []models.User
	if err := c.db.SelectContext(ctx, &users, searchUsersByNameSQL, "%"+pattern+"%", limit); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func (c *Conn) UpdateUser(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error) {
	return c.execAffected(ctx, "update user", updateUserSQL, id, firstName, lastName)
}

func (c *Conn) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.execAffected(ctx, "delete user", deleteUserSQL, id)
}

func (c *Conn) IncrementViewCount(ctx context.Context, postID uuid.UUID) (bool, error) {
	return c.execAffected(ctx, "increment view count", incrementViewCountSQL, postID)
}

func (c *Conn) execAffected(ctx context.Context, op, query string, args ...any) (bool, error) {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

func (c *Conn) InsertPost(ctx context.Context, p models.NewPost) (uuid.UUID, error) {
	var id uuid.UUID
	if err := c.insertPost.GetContext(ctx, &id, p); err != nil {
		return uuid.Nil, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

// postWithUserRow maps the "post.*" and "author.*" column aliases
type postWithUserRow struct {
	Post models.Post `db:"post"`
	User models.User `db:"author"`
}

func (c *Conn) SelectPostsWithUser(ctx context.Context, limit int) ([]models.PostWithUser, error) {
	var rows []postWithUserRow
	if err := c.db.SelectContext(ctx, &rows, selectPostsWithUserSQL, limit); err != nil {
		return nil, fmt.Errorf("select posts with user: %w", err)
	}
	result := make([]models.PostWithUser, len(rows))
	for i, r := range rows {
		result[i] = models.PostWithUser{Post: r.Post, User: r.User}
	}
	return result, nil
}

type userPostCommentRow struct {
	User    models.User    `db:"author"`
	Post    models.Post    `db:"post"`
	Comment models.Comment `db:"comment"`
}

func (c *Conn) SelectUsersPostsComments(ctx context.Context, limit int) ([]models.UserPostComment, error) {
	var rows []userPostCommentRow
	if err := c.db.SelectContext(ctx, &rows, selectUsersPostsCommentsSQL, limit); err != nil {
		return nil, fmt.Errorf("select users posts comments: %w", err)
	}
	result := make([]models.UserPostComment, len(rows))
	for i, r := range rows {
		result[i] = models.UserPostComment{User: r.User, Post: r.Post, Comment: r.Comment}
	}
	return result, nil
}

func (c *Conn) CountPostsPerUser(ctx context.Context) ([]models.PostCount, error) {
	var counts []models.PostCount
	if err := c.db.SelectContext(ctx, &counts, countPostsPerUserSQL); err != nil {
		return nil, fmt.Errorf("count posts per user: %w", err)
	}
	return counts, nil
}

func (c *Conn) InsertUserWithPosts(ctx context.Context, u models.NewUser, posts []models.NewPost) (id uuid.UUID, err error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.NamedStmtContext(ctx, c.insertUser).GetContext(ctx, &id, u); err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}

	postStmt := tx.NamedStmtContext(ctx, c.insertPost)
	for _, p := range backend.AssignAuthor(posts, id) {
		var postID uuid.UUID
		if err = postStmt.GetContext(ctx, &postID, p); err != nil {
			return uuid.Nil, fmt.Errorf("insert post: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (c *Conn) Cleanup(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, cleanupSQL, models.SyntheticPattern)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	return n, nil
}

func (c *Conn) InsertComment(ctx context.Context, cm models.NewComment) (uuid.UUID, error) {
	var id uuid.UUID
	if err := c.insertComment.GetContext(ctx, &id, cm); err != nil {
		return uuid.Nil, fmt.Errorf("insert comment: %w", err)
	}
	return id, nil
}

func (c *Conn) SelectPostsByStatus(ctx context.Context, status string, limit int) ([]models.Post, error) {
	var posts []models.Post
	if err := c.db.SelectContext(ctx, &posts, selectPostsByStatusSQL, status, limit); err != nil {
		return nil, fmt.Errorf("select posts by status: %w", err)
	}
	return posts, nil
}
