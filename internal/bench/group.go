package bench

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// Group is a named set of cases: one operation run for every backend at
// every parameter value
type Group struct {
	Name     string
	Category string

	// ParamName labels Params in reports ("size", "posts", "concurrency").
	// A group without Params runs a single case with Param 0.
	ParamName string
	Params    []int

	// Samples and MeasurementTime bound the timed iterations; at least one
	// sample is always taken.
	Samples         int
	MeasurementTime time.Duration

	// Writes groups create synthetic rows and are cleaned up around each case
	Writes bool

	// NeedsSeed groups read seed rows and are skipped when none exist
	NeedsSeed bool

	// Concurrent groups size the pool to Param and report per-task latency
	Concurrent bool

	// Elements returns the per-sample element count used for throughput
	Elements func(param int) int64

	// Prepare fills the fixture shared verbatim by every backend
	Prepare func(f *Fixture)

	// Before runs untimed before each sample
	Before func(ctx context.Context, c *Case) error

	// Iterate is the timed body of one sample
	Iterate func(ctx context.Context, c *Case) error
}

// params returns the parameter values to run, a single 0 when unparameterized
func (g *Group) params() []int {
	if len(g.Params) == 0 {
		return []int{0}
	}
	return g.Params
}

// Label formats a case label such as "insert_batch_users/100"
func (g *Group) Label(param int) string {
	if len(g.Params) == 0 {
		return g.Name
	}
	return g.Name + "/" + strconv.Itoa(param)
}

// Fixture is the pre-generated input for one group parameter
type Fixture struct {
	Param int
	Users []models.NewUser
	Posts []models.NewPost
	Refs  database.SeedRefs
}

// Case is the per-backend state of one benchmark case. It is created fresh
// for every (group, param, backend) and never shared between cases.
type Case struct {
	Group   *Group
	Param   int
	Backend backend.Info
	Conn    backend.Conn
	Fixture *Fixture

	counter Counter
	tasks   LatencyTracker

	// target is the row the Before hook prepared for the next sample
	target uuid.UUID
}

// Next returns the next unique input index of this case
func (c *Case) Next() int64 {
	return c.counter.Next()
}

// SeedUserID cycles over the fixture's seed users
func (c *Case) SeedUserID() uuid.UUID {
	ids := c.Fixture.Refs.UserIDs
	return ids[int((c.Next()-1)%int64(len(ids)))]
}

// RunTasks runs n tasks concurrently against the case's pool. Async backends
// get one goroutine per task; sync backends get a fixed set of
// min(Param, n) worker goroutines pulling tasks in order. Each successful
// task's latency is recorded. The first task error is returned after every
// task has finished.
func (c *Case) RunTasks(ctx context.Context, n int, task func(ctx context.Context, id int) error) error {
	timed := func(id int) error {
		start := time.Now()
		if err := task(ctx, id); err != nil {
			return err
		}
		c.tasks.Record(time.Since(start))
		return nil
	}

	if c.Backend.Kind != backend.KindSync {
		var g errgroup.Group
		for id := 0; id < n; id++ {
			g.Go(func() error { return timed(id) })
		}
		return g.Wait()
	}

	workers := c.Param
	if workers < 1 || workers > n {
		workers = n
	}
	ids := make(chan int)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				if err := timed(id); err != nil {
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}
	for id := 0; id < n; id++ {
		ids <- id
	}
	close(ids)
	wg.Wait()
	return firstErr
}

// Filter returns the groups whose name contains any filter or whose category
// equals one. No filters selects every group.
func Filter(groups []Group, filters []string) []Group {
	var clean []string
	for _, f := range filters {
		for _, part := range strings.Split(f, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				clean = append(clean, part)
			}
		}
	}
	if len(clean) == 0 {
		return groups
	}

	var out []Group
	for _, g := range groups {
		for _, f := range clean {
			if strings.Contains(g.Name, f) || g.Category == f {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
