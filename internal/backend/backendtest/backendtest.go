// Package backendtest is the shared contract suite every backend runs against
// a live PostgreSQL. It is skipped unless DBBENCH_TEST_DSN is set.
package backendtest

import (
	"context"
	"hash/fnv"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// EnvDSN names the environment variable holding the test database URL
const EnvDSN = "DBBENCH_TEST_DSN"

// suiteLock serializes database tests across test binaries; every backend
// package shares the synthetic naming pattern.
const suiteLock = 0x646262656e6368

// DatabaseConfig returns the test database configuration, skipping t when no
// DSN is configured.
func DatabaseConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}
	cfg := config.DefaultConfig().Database
	cfg.DSN = dsn
	return cfg
}

// Lock opens an admin connection, makes sure the schema exists and holds
// the suite lock until t finishes.
func Lock(t *testing.T, cfg config.DatabaseConfig) *pgx.Conn {
	t.Helper()
	ctx := context.Background()

	admin, err := database.ConnectPgx(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { admin.Close(context.Background()) })

	_, err = admin.Exec(ctx, "SELECT pg_advisory_lock($1)", suiteLock)
	require.NoError(t, err)
	t.Cleanup(func() { admin.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", suiteLock) })
	require.NoError(t, database.EnsureSchema(ctx, admin))
	return admin
}

// Run connects b to the test database and checks every contract property
func Run(t *testing.T, newBackend func(config.DatabaseConfig) backend.Backend) {
	RunPoolSize(t, newBackend, 4)
}

// RunPoolSize is Run with an explicit pool size
func RunPoolSize(t *testing.T, newBackend func(config.DatabaseConfig) backend.Backend, poolSize int) {
	cfg := DatabaseConfig(t)
	ctx := context.Background()
	admin := Lock(t, cfg)

	b := newBackend(cfg)
	conn, err := b.Connect(ctx, backend.ConnectOptions{DSN: cfg.DSN, PoolSize: poolSize, ConnectTimeout: cfg.ConnectTimeout})
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Cleanup(context.Background())
		conn.Close()
	})

	_, err = conn.Cleanup(ctx)
	require.NoError(t, err)

	// distinct index range per backend keeps failures attributable
	h := fnv.New32a()
	h.Write([]byte(b.Name()))
	s := &suite{admin: admin, conn: conn, info: b.Info(), next: int64(h.Sum32()%1000) * 1_000_000}

	t.Run("RoundTrip", s.roundTrip)
	t.Run("NotFound", s.notFound)
	t.Run("Update", s.update)
	t.Run("Delete", s.delete)
	t.Run("Filtered", s.filtered)
	t.Run("SearchByName", s.searchByName)
	t.Run("DuplicateIsConstraintError", s.duplicate)
	t.Run("PostsAndComments", s.postsAndComments)
	t.Run("CountPostsPerUser", s.countPostsPerUser)
	t.Run("UserWithPosts", s.userWithPosts)
	t.Run("CleanupIdempotent", s.cleanupIdempotent)
	t.Run("BatchEndToEnd", s.batchEndToEnd)
}

type suite struct {
	admin *pgx.Conn
	conn  backend.Conn
	info  backend.Info
	next  int64
}

func (s *suite) index() int64 {
	s.next++
	return s.next
}

func (s *suite) insertUser(t *testing.T) (uuid.UUID, models.NewUser) {
	t.Helper()
	u := models.GenerateUser(s.index())
	id, err := s.conn.InsertUser(context.Background(), u)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	return id, u
}

func (s *suite) roundTrip(t *testing.T) {
	ctx := context.Background()
	id, u := s.insertUser(t)

	got, err := s.conn.SelectUserByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.FirstName, got.FirstName)
	assert.Equal(t, u.LastName, got.LastName)
	assert.Equal(t, u.Age, got.Age)
	assert.NotNil(t, got.CreatedAt)
	assert.NotNil(t, got.UpdatedAt)
}

func (s *suite) notFound(t *testing.T) {
	ctx := context.Background()
	got, err := s.conn.SelectUserByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := s.conn.UpdateUser(ctx, uuid.New(), "x", "y")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.conn.IncrementViewCount(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func (s *suite) update(t *testing.T) {
	ctx := context.Background()
	id, _ := s.insertUser(t)
	before, err := s.conn.SelectUserByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, before)

	time.Sleep(5 * time.Millisecond)
	ok, err := s.conn.UpdateUser(ctx, id, models.UpdatedFirstName, models.UpdatedLastName)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := s.conn.SelectUserByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, models.UpdatedFirstName, after.FirstName)
	assert.Equal(t, models.UpdatedLastName, after.LastName)
	require.NotNil(t, after.UpdatedAt)
	assert.True(t, after.UpdatedAt.After(*before.UpdatedAt), "updated_at did not advance")
}

func (s *suite) delete(t *testing.T) {
	ctx := context.Background()
	id, _ := s.insertUser(t)

	ok, err := s.conn.DeleteUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.conn.SelectUserByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = s.conn.DeleteUser(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func (s *suite) filtered(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		s.insertUser(t)
	}

	users, err := s.conn.SelectUsersFiltered(ctx, 25, 55, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, users)
	assert.LessOrEqual(t, len(users), 50)
	for _, u := range users {
		require.NotNil(t, u.Age)
		assert.GreaterOrEqual(t, *u.Age, int32(25))
		assert.LessOrEqual(t, *u.Age, int32(55))
	}
	assert.True(t, sort.SliceIsSorted(users, func(i, j int) bool {
		if *users[i].Age != *users[j].Age {
			return *users[i].Age < *users[j].Age
		}
		return users[i].Username < users[j].Username
	}), "not ordered by (age, username)")

	limited, err := s.conn.SelectUsersLimit(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, limited, 10)
	for i := 1; i < len(limited); i++ {
		assert.False(t, limited[i].CreatedAt.After(*limited[i-1].CreatedAt), "not newest first")
	}
}

func (s *suite) searchByName(t *testing.T) {
	ctx := context.Background()
	n := s.index()
	u := models.GenerateUser(n)
	_, err := s.conn.InsertUser(ctx, u)
	require.NoError(t, err)

	users, err := s.conn.SearchUsersByName(ctx, strings.ToLower(u.FirstName), 10)
	require.NoError(t, err)
	require.NotEmpty(t, users)
	found := false
	for _, got := range users {
		found = found || got.Username == u.Username
	}
	assert.True(t, found, "case-insensitive search missed %s", u.FirstName)
}

func (s *suite) duplicate(t *testing.T) {
	_, u := s.insertUser(t)
	_, err := s.conn.InsertUser(context.Background(), u)
	require.Error(t, err)
	assert.Equal(t, backend.ErrorConstraint, backend.Classify(err))
}

func (s *suite) postsAndComments(t *testing.T) {
	ctx := context.Background()
	userID, _ := s.insertUser(t)
	n := s.index()

	postID, err := s.conn.InsertPost(ctx, models.GeneratePost(userID, n))
	require.NoError(t, err)
	_, err = s.conn.InsertComment(ctx, models.GenerateComment(postID, userID, n))
	require.NoError(t, err)

	ok, err := s.conn.IncrementViewCount(ctx, postID)
	require.NoError(t, err)
	assert.True(t, ok)

	joined, err := s.conn.SelectPostsWithUser(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, joined)
	for _, r := range joined {
		assert.Equal(t, r.Post.UserID, r.User.ID)
	}

	triples, err := s.conn.SelectUsersPostsComments(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, triples)
	for _, r := range triples {
		assert.Equal(t, r.User.ID, r.Post.UserID)
		assert.Equal(t, r.Post.ID, r.Comment.PostID)
	}

	status := models.GeneratePost(userID, n).Status
	posts, err := s.conn.SelectPostsByStatus(ctx, status, 20)
	require.NoError(t, err)
	for _, p := range posts {
		assert.Equal(t, status, p.Status)
		if p.ID == postID {
			assert.Equal(t, int32(1), p.ViewCount)
		}
	}
}

func (s *suite) countPostsPerUser(t *testing.T) {
	ctx := context.Background()
	lonely, _ := s.insertUser(t)

	counts, err := s.conn.CountPostsPerUser(ctx)
	require.NoError(t, err)

	var total int64
	found := false
	for i, c := range counts {
		total += c.Count
		if c.UserID == lonely {
			found = true
			assert.Zero(t, c.Count)
		}
		if i > 0 {
			assert.LessOrEqual(t, c.Count, counts[i-1].Count)
		}
	}
	assert.True(t, found, "user without posts missing from aggregate")

	rows, err := database.Counts(ctx, s.admin)
	require.NoError(t, err)
	assert.Equal(t, rows.Posts, total)
}

func (s *suite) userWithPosts(t *testing.T) {
	ctx := context.Background()
	n := s.index()
	posts := models.GeneratePosts(uuid.Nil, 3)

	id, err := s.conn.InsertUserWithPosts(ctx, models.GenerateUser(n), posts)
	require.NoError(t, err)

	counts, err := s.conn.CountPostsPerUser(ctx)
	require.NoError(t, err)
	for _, c := range counts {
		if c.UserID == id {
			assert.Equal(t, int64(3), c.Count)
		}
	}
	assert.Equal(t, uuid.Nil, posts[0].UserID, "input posts were mutated")

	// a failing post rolls the user back on transactional backends
	bad := models.GeneratePosts(uuid.Nil, 2)
	bad[1].Title = strings.Repeat("x", 600)
	u := models.GenerateUser(s.index())
	_, err = s.conn.InsertUserWithPosts(ctx, u, bad)
	require.Error(t, err)

	users, err := s.conn.SearchUsersByName(ctx, u.FirstName, 10)
	require.NoError(t, err)
	left := false
	for _, got := range users {
		left = left || got.Username == u.Username
	}
	assert.Equal(t, !s.info.Atomic, left, "atomic=%v but partial user present=%v", s.info.Atomic, left)
}

func (s *suite) cleanupIdempotent(t *testing.T) {
	ctx := context.Background()
	s.insertUser(t)

	n, err := s.conn.Cleanup(ctx)
	require.NoError(t, err)
	assert.Positive(t, n)

	n, err = s.conn.Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func (s *suite) batchEndToEnd(t *testing.T) {
	ctx := context.Background()
	start := s.next + 1
	s.next += 100
	users := models.GenerateUsers(start, 100)

	ids, err := s.conn.InsertUsersBatch(ctx, users)
	require.NoError(t, err)
	require.Len(t, ids, 100)
	first, err := s.conn.SelectUserByID(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, users[0].Username, first.Username)

	got, err := s.conn.SelectUsersLimit(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, got, 100)
	for _, u := range got {
		assert.True(t, strings.HasPrefix(u.Username, models.SyntheticPrefix), u.Username)
	}

	_, err = s.conn.Cleanup(ctx)
	require.NoError(t, err)

	got, err = s.conn.SelectUsersLimit(ctx, 100)
	require.NoError(t, err)
	for _, u := range got {
		assert.False(t, strings.HasPrefix(u.Username, models.SyntheticPrefix), u.Username)
	}
}
