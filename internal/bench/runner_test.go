package bench

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

func groupNamed(t *testing.T, name string) Group {
	t.Helper()
	for _, g := range DefaultGroups() {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("group %q not found", name)
	return Group{}
}

func seedRefs() database.SeedRefs {
	return database.SeedRefs{
		UserIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Posts:   []database.PostRef{{ID: uuid.New(), UserID: uuid.New()}},
	}
}

func run(t *testing.T, opts Options, groups []Group, backends ...backend.Backend) (*Report, error) {
	t.Helper()
	if opts.Samples == 0 {
		opts.Samples = 3
	}
	return NewRunner(opts).Run(context.Background(), groups, backends)
}

func TestRunEveryGroupWithFakeBackends(t *testing.T) {
	a, s := newFake("a"), newFake("s")
	s.kind = backend.KindSync

	groups := DefaultGroups()
	report, err := run(t, Options{Refs: seedRefs()}, groups, a, s)
	require.NoError(t, err)
	assert.Len(t, report.Cases, CaseCount(groups, []backend.Backend{a, s}))

	for _, c := range report.Cases {
		assert.Equal(t, StatusOK, c.Status, "%s: %s", c.Label(), c.Error)
		assert.Equal(t, 3, c.Stats.Samples, c.Label())
	}
	for _, conn := range append(a.conns, s.conns...) {
		assert.True(t, conn.closed)
	}
}

func TestRunFixtureIsSharedVerbatim(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	g := groupNamed(t, "insert_batch_users")
	g.Params = []int{10}

	_, err := run(t, Options{}, []Group{g}, a, b)
	require.NoError(t, err)

	require.Len(t, a.conns, 1)
	require.Len(t, b.conns, 1)
	assert.Equal(t, a.conns[0].inserted, b.conns[0].inserted)
	// 3 samples of the same 10 users, cleaned before each sample
	assert.Len(t, a.conns[0].inserted, 30)
	assert.Equal(t, models.GenerateUser(0).Username, a.conns[0].inserted[0])
}

func TestRunCleansUpWritingGroups(t *testing.T) {
	a := newFake("a")
	_, err := run(t, Options{}, []Group{groupNamed(t, "insert_single_user")}, a)
	require.NoError(t, err)

	conn := a.conns[0]
	// once before and once after the case
	assert.Equal(t, 2, conn.cleanups)
	assert.Equal(t, []string{"bench_user_1", "bench_user_2", "bench_user_3"}, conn.inserted)
}

func TestRunCountersArePerCase(t *testing.T) {
	a, b := newFake("a"), newFake("b")
	_, err := run(t, Options{}, []Group{groupNamed(t, "insert_single_user")}, a, b)
	require.NoError(t, err)
	assert.Equal(t, a.conns[0].inserted, b.conns[0].inserted)
}

func TestRunConnectFailureSkipsCase(t *testing.T) {
	bad, good := newFake("bad"), newFake("good")
	bad.connectErr = errors.New("dial tcp: connection refused")

	report, err := run(t, Options{Refs: seedRefs()}, []Group{groupNamed(t, "aggregate_count_posts_per_user")}, bad, good)
	require.NoError(t, err)
	require.Len(t, report.Cases, 2)
	assert.Equal(t, StatusSkipped, report.Cases[0].Status)
	assert.Contains(t, report.Cases[0].Error, "connection refused")
	assert.Equal(t, StatusOK, report.Cases[1].Status)
}

func TestRunConnectivityErrorFailsSampleOnly(t *testing.T) {
	a := newFake("a")
	a.failOn["count_posts_per_user"] = io.ErrUnexpectedEOF

	report, err := run(t, Options{Samples: 4, Refs: seedRefs()}, []Group{groupNamed(t, "aggregate_count_posts_per_user")}, a)
	require.NoError(t, err)
	res := report.Cases[0]
	assert.Equal(t, 4, res.FailedSamples)
	assert.Equal(t, 4, a.conns[0].count("count_posts_per_user"), "no retries")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "every sample failed", res.Error)
}

func TestRunQueryErrorAbortsCaseButNotRun(t *testing.T) {
	a := newFake("a")
	a.failOn["count_posts_per_user"] = errors.New("syntax error")

	groups := []Group{groupNamed(t, "aggregate_count_posts_per_user"), groupNamed(t, "insert_single_user")}
	report, err := run(t, Options{Refs: seedRefs()}, groups, a)
	require.NoError(t, err)
	require.Len(t, report.Cases, 2)
	assert.Equal(t, StatusFailed, report.Cases[0].Status)
	assert.Equal(t, 1, a.conns[0].count("count_posts_per_user"))
	assert.Equal(t, StatusOK, report.Cases[1].Status)
}

func TestRunConstraintViolationStopsRun(t *testing.T) {
	a := newFake("a")
	dup := Group{
		Name:     "duplicate",
		Category: CategoryInsert,
		Writes:   true,
		Iterate: func(ctx context.Context, c *Case) error {
			_, err := c.Conn.InsertUser(ctx, models.GenerateUser(1))
			return err
		},
	}

	report, err := run(t, Options{}, []Group{dup, groupNamed(t, "insert_single_user")}, a)
	require.ErrorIs(t, err, ErrFairness)
	require.Len(t, report.Cases, 1)
	assert.Equal(t, StatusFailed, report.Cases[0].Status)
	// cleanup still runs after the failed case
	assert.Equal(t, 2, a.conns[0].cleanups)
}

func TestRunSkipsSeedGroupsWithoutSeed(t *testing.T) {
	a := newFake("a")
	report, err := run(t, Options{}, []Group{groupNamed(t, "select_user_by_id")}, a)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, report.Cases[0].Status)
	assert.Empty(t, a.conns, "no connection for a skipped case")
}

func TestReadGroupsNeedSeed(t *testing.T) {
	for _, g := range DefaultGroups() {
		reads := g.Category == CategorySelect || g.Category == CategoryJoin || g.Category == CategoryAggregate ||
			g.Name == "heavy_read_intensive" || g.Name == "concurrent_reads"
		if reads {
			assert.True(t, g.NeedsSeed, g.Name)
		}
	}

	a := newFake("a")
	report, err := run(t, Options{}, []Group{groupNamed(t, "join_posts_users")}, a)
	require.NoError(t, err)
	for _, c := range report.Cases {
		assert.Equal(t, StatusSkipped, c.Status, c.Label())
	}
}

func TestRunMeasurementTimeBoundsSamples(t *testing.T) {
	a := newFake("a")
	slow := Group{
		Name:            "slow",
		Category:        CategorySelect,
		Samples:         1000,
		MeasurementTime: 20 * time.Millisecond,
		Iterate: func(ctx context.Context, c *Case) error {
			time.Sleep(5 * time.Millisecond)
			return nil
		},
	}
	report, err := NewRunner(Options{}).Run(context.Background(), []Group{slow}, []backend.Backend{a})
	require.NoError(t, err)
	n := report.Cases[0].Stats.Samples
	assert.GreaterOrEqual(t, n, 1)
	assert.Less(t, n, 1000)
}

func TestRunNotesNonAtomicTransactions(t *testing.T) {
	raw := newFake("raw")
	raw.atomic = false
	g := groupNamed(t, "transaction_insert_user_with_posts")
	g.Params = []int{1}

	report, err := run(t, Options{}, []Group{g}, raw)
	require.NoError(t, err)
	require.NotEmpty(t, report.Cases[0].Notes)
	assert.Contains(t, report.Cases[0].Notes[0], "non-atomic")
	assert.False(t, report.Cases[0].Atomic)
}

func TestRunConcurrentGroupsSizePoolAndTrackTasks(t *testing.T) {
	for _, kind := range []backend.Kind{backend.KindAsync, backend.KindSync} {
		t.Run(string(kind), func(t *testing.T) {
			f := newFake("f")
			f.kind = kind
			g := groupNamed(t, "concurrent_reads")
			g.Params = []int{10}

			report, err := run(t, Options{Samples: 2, Refs: seedRefs()}, []Group{g}, f)
			require.NoError(t, err)
			assert.Equal(t, []int{10}, f.poolSize)
			assert.Equal(t, 20, f.conns[0].count("select_users_limit"))

			res := report.Cases[0]
			require.NotNil(t, res.Tasks)
			assert.Equal(t, 20, res.Tasks.Samples)
			assert.Equal(t, 2, res.Stats.Samples)
		})
	}
}

func TestRunConcurrentMixedInputsAreUnique(t *testing.T) {
	f := newFake("f")
	f.kind = backend.KindSync
	_, err := run(t, Options{Samples: 2}, []Group{groupNamed(t, "concurrent_mixed_workload")}, f)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, u := range f.conns[0].inserted {
		assert.False(t, seen[u], "duplicate %s", u)
		seen[u] = true
	}
	assert.NotEmpty(t, seen)
}

func TestRunSerialPoolSize(t *testing.T) {
	f := newFake("f")
	_, err := run(t, Options{SerialPoolSize: 3}, []Group{groupNamed(t, "insert_single_user")}, f)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, f.poolSize)
}

func TestRunHooks(t *testing.T) {
	f := newFake("f")
	var started, done int
	opts := Options{
		Refs:        seedRefs(),
		OnCaseStart: func(*Group, int, string) { started++ },
		OnCaseDone:  func(CaseResult) { done++ },
	}
	g := groupNamed(t, "select_users_limit")
	_, err := run(t, opts, []Group{g}, f)
	require.NoError(t, err)
	assert.Equal(t, 3, started)
	assert.Equal(t, 3, done)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(Options{}).Run(ctx, DefaultGroups(), []backend.Backend{newFake("f")})
	assert.ErrorIs(t, err, context.Canceled)
}
