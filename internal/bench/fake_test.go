package bench

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/models"
)

var errDuplicate = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

// fakeBackend records calls and can inject errors per operation name
type fakeBackend struct {
	name       string
	kind       backend.Kind
	atomic     bool
	connectErr error

	mu       sync.Mutex
	conns    []*fakeConn
	poolSize []int
	failOn   map[string]error
}

func newFake(name string) *fakeBackend {
	return &fakeBackend{name: name, kind: backend.KindAsync, atomic: true, failOn: map[string]error{}}
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Info() backend.Info {
	return backend.Info{Name: b.name, Kind: b.kind, Atomic: b.atomic}
}

func (b *fakeBackend) Connect(_ context.Context, opts backend.ConnectOptions) (backend.Conn, error) {
	if b.connectErr != nil {
		return nil, b.connectErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c := &fakeConn{backend: b, usernames: map[string]bool{}}
	b.conns = append(b.conns, c)
	b.poolSize = append(b.poolSize, opts.PoolSize)
	return c, nil
}

type fakeConn struct {
	backend *fakeBackend

	mu        sync.Mutex
	calls     []string
	usernames map[string]bool
	inserted  []string
	cleanups  int
	closed    bool
}

func (c *fakeConn) record(op string) error {
	c.mu.Lock()
	c.calls = append(c.calls, op)
	c.mu.Unlock()
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()
	return c.backend.failOn[op]
}

func (c *fakeConn) count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call == op {
			n++
		}
	}
	return n
}

func (c *fakeConn) InsertUser(_ context.Context, u models.NewUser) (uuid.UUID, error) {
	if err := c.record("insert_user"); err != nil {
		return uuid.Nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.usernames[u.Username] {
		return uuid.Nil, errDuplicate
	}
	c.usernames[u.Username] = true
	c.inserted = append(c.inserted, u.Username)
	return uuid.New(), nil
}

func (c *fakeConn) InsertUsersBatch(ctx context.Context, users []models.NewUser) ([]uuid.UUID, error) {
	return backend.BatchWithSingleInserts(ctx, users, c.InsertUser)
}

func (c *fakeConn) SelectUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if err := c.record("select_user_by_id"); err != nil {
		return nil, err
	}
	return &models.User{ID: id}, nil
}

func (c *fakeConn) SelectUsersLimit(_ context.Context, limit int) ([]models.User, error) {
	return make([]models.User, 0, limit), c.record("select_users_limit")
}

func (c *fakeConn) SelectUsersFiltered(_ context.Context, _, _ int32, _ int) ([]models.User, error) {
	return nil, c.record("select_users_filtered")
}

func (c *fakeConn) UpdateUser(_ context.Context, _ uuid.UUID, _, _ string) (bool, error) {
	return true, c.record("update_user")
}

func (c *fakeConn) DeleteUser(_ context.Context, _ uuid.UUID) (bool, error) {
	return true, c.record("delete_user")
}

func (c *fakeConn) InsertPost(_ context.Context, _ models.NewPost) (uuid.UUID, error) {
	return uuid.New(), c.record("insert_post")
}

func (c *fakeConn) SelectPostsWithUser(_ context.Context, _ int) ([]models.PostWithUser, error) {
	return nil, c.record("select_posts_with_user")
}

func (c *fakeConn) SelectUsersPostsComments(_ context.Context, _ int) ([]models.UserPostComment, error) {
	return nil, c.record("select_users_posts_comments")
}

func (c *fakeConn) CountPostsPerUser(_ context.Context) ([]models.PostCount, error) {
	return nil, c.record("count_posts_per_user")
}

func (c *fakeConn) InsertUserWithPosts(ctx context.Context, u models.NewUser, _ []models.NewPost) (uuid.UUID, error) {
	return c.InsertUser(ctx, u)
}

func (c *fakeConn) Cleanup(_ context.Context) (int64, error) {
	if err := c.record("cleanup"); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanups++
	n := int64(len(c.usernames))
	c.usernames = map[string]bool{}
	return n, nil
}

func (c *fakeConn) InsertComment(_ context.Context, _ models.NewComment) (uuid.UUID, error) {
	return uuid.New(), c.record("insert_comment")
}

func (c *fakeConn) SelectPostsByStatus(_ context.Context, _ string, _ int) ([]models.Post, error) {
	return nil, c.record("select_posts_by_status")
}

func (c *fakeConn) IncrementViewCount(_ context.Context, _ uuid.UUID) (bool, error) {
	return true, c.record("increment_view_count")
}

func (c *fakeConn) SearchUsersByName(_ context.Context, _ string, _ int) ([]models.User, error) {
	return nil, c.record("search_users_by_name")
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func backendOpts(poolSize int) backend.ConnectOptions {
	return backend.ConnectOptions{DSN: "postgres://fake", PoolSize: poolSize}
}
