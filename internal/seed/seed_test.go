package seed_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/dbbench/internal/backend/backendtest"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/seed"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name       string
		start, end int64
		workers    int
		want       []seed.IDRange
	}{
		{"even", 0, 10, 2, []seed.IDRange{{0, 5}, {5, 10}}},
		{"remainder goes first", 0, 10, 3, []seed.IDRange{{0, 4}, {4, 7}, {7, 10}}},
		{"offset start", 100, 103, 2, []seed.IDRange{{100, 102}, {102, 103}}},
		{"more workers than rows", 0, 2, 8, []seed.IDRange{{0, 1}, {1, 2}}},
		{"zero workers", 0, 3, 0, []seed.IDRange{{0, 3}}},
		{"empty", 5, 5, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seed.Partition(tt.start, tt.end, tt.workers)
			assert.Equal(t, tt.want, got)

			var total int64
			for _, r := range got {
				total += r.Len()
			}
			if tt.end > tt.start {
				assert.Equal(t, tt.end-tt.start, total)
			}
		})
	}
}

func TestWorkerCount(t *testing.T) {
	assert.Equal(t, 3, seed.WorkerCount(3))
	assert.GreaterOrEqual(t, seed.WorkerCount(0), 1)
}

func TestUsernameSortsByIndex(t *testing.T) {
	assert.Equal(t, "seed_user_0000007", seed.Username(7))
	assert.Less(t, seed.Username(9), seed.Username(10))
}

func TestSeedAndDrop(t *testing.T) {
	dbCfg := backendtest.DatabaseConfig(t)
	admin := backendtest.Lock(t, dbCfg)
	ctx := context.Background()

	_, err := seed.Drop(ctx, admin)
	require.NoError(t, err)

	pool, err := database.NewPgxPool(ctx, dbCfg, 4)
	require.NoError(t, err)
	defer pool.Close()

	cfg := config.SeedConfig{Users: 25, PostsPerUser: 2, CommentsPerPost: 1, Workers: 3, RandomSeed: 42}
	s := seed.New(pool, cfg)
	var last atomic.Int64
	s.Progress = func(done, total int64) {
		assert.Equal(t, int64(25), total)
		last.Store(done)
	}

	res, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Existing)
	assert.Equal(t, int64(25), res.Users)
	assert.Equal(t, int64(25), last.Load())

	counts, err := database.Counts(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(25), counts.Seed)

	// second run only tops up
	res, err = seed.New(pool, cfg).Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.Existing)
	assert.Zero(t, res.Users)

	// an interrupted seed leaves gaps below the highest index
	_, err = admin.Exec(ctx, `DELETE FROM users WHERE username IN ($1, $2)`, seed.Username(3), seed.Username(20))
	require.NoError(t, err)

	missing, err := seed.Missing(ctx, admin, 25)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 20}, missing)

	res, err = seed.New(pool, cfg).Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(23), res.Existing)
	assert.Equal(t, int64(2), res.Users)

	missing, err = seed.Missing(ctx, admin, 25)
	require.NoError(t, err)
	assert.Empty(t, missing)

	refs, err := database.LoadSeedRefs(ctx, admin, 10)
	require.NoError(t, err)
	assert.Len(t, refs.UserIDs, 10)
	assert.Len(t, refs.Posts, int(min(10, countPosts(t, admin))))

	dropped, err := seed.Drop(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(25), dropped)

	counts, err = database.Counts(ctx, admin)
	require.NoError(t, err)
	assert.Zero(t, counts.Seed)
}

func countPosts(t *testing.T, q database.Querier) int64 {
	t.Helper()
	var n int64
	err := q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM posts p JOIN users u ON u.id = p.user_id WHERE u.username LIKE 'seed_user_%'`).Scan(&n)
	require.NoError(t, err)
	return n
}
