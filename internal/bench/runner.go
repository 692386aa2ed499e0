package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/database"
)

// ErrFairness means a constraint violation hit a timed operation. Input
// indices are unique per case, so this is a harness bug and stops the run.
var ErrFairness = errors.New("fairness violation")

// CaseStatus is the outcome of one case
type CaseStatus string

const (
	StatusOK      CaseStatus = "ok"
	StatusFailed  CaseStatus = "failed"
	StatusSkipped CaseStatus = "skipped"
)

// CaseResult is the measured outcome of one (group, param, backend) case
type CaseResult struct {
	Group     string     `json:"group" yaml:"group"`
	Category  string     `json:"category" yaml:"category"`
	ParamName string     `json:"param_name,omitempty" yaml:"param_name,omitempty"`
	Param     int        `json:"param,omitempty" yaml:"param,omitempty"`
	Backend   string     `json:"backend" yaml:"backend"`
	Atomic    bool       `json:"atomic" yaml:"atomic"`
	Status    CaseStatus `json:"status" yaml:"status"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`

	// FailedSamples counts samples lost to connectivity errors
	FailedSamples int `json:"failed_samples" yaml:"failed_samples"`

	// Stats covers whole samples; for concurrent cases that is the aggregate
	// completion time of all tasks
	Stats Stats `json:"stats" yaml:"stats"`

	// Tasks is per-task latency of concurrent cases
	Tasks *Stats `json:"tasks,omitempty" yaml:"tasks,omitempty"`

	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Label formats the case for logs
func (r CaseResult) Label() string {
	if r.ParamName == "" {
		return r.Group + "/" + r.Backend
	}
	return fmt.Sprintf("%s/%d/%s", r.Group, r.Param, r.Backend)
}

// Report is the result of one run
type Report struct {
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	Duration  time.Duration  `json:"duration" yaml:"duration"`
	Database  string         `json:"database" yaml:"database"`
	Backends  []backend.Info `json:"backends" yaml:"backends"`
	Cases     []CaseResult   `json:"cases" yaml:"cases"`
}

// Options configures a Runner
type Options struct {
	DSN            string
	ConnectTimeout time.Duration

	// SerialPoolSize is the pool size of non-concurrent cases
	SerialPoolSize int

	// Samples and MeasurementTime override every group's own values when > 0
	Samples         int
	MeasurementTime time.Duration

	// Refs are the seed rows lookup groups cycle over
	Refs database.SeedRefs

	// OnCaseStart and OnCaseDone are optional progress hooks
	OnCaseStart func(group *Group, param int, backend string)
	OnCaseDone  func(CaseResult)
}

// Runner executes groups against backends
type Runner struct {
	opts Options
}

// NewRunner creates a runner
func NewRunner(opts Options) *Runner {
	if opts.SerialPoolSize < 1 {
		opts.SerialPoolSize = 1
	}
	return &Runner{opts: opts}
}

// CaseCount returns how many cases Run will execute
func CaseCount(groups []Group, backends []backend.Backend) int {
	n := 0
	for i := range groups {
		n += len(groups[i].params()) * len(backends)
	}
	return n
}

// Run executes every group for every backend in order. Connectivity and
// query failures are recorded per case; a constraint violation aborts the
// run with ErrFairness and returns the partial report.
func (r *Runner) Run(ctx context.Context, groups []Group, backends []backend.Backend) (*Report, error) {
	report := &Report{StartedAt: time.Now()}
	for _, b := range backends {
		report.Backends = append(report.Backends, b.Info())
	}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	for gi := range groups {
		g := &groups[gi]
		for _, param := range g.params() {
			fx := &Fixture{Param: param, Refs: r.opts.Refs}
			if g.Prepare != nil {
				g.Prepare(fx)
			}

			for _, b := range backends {
				if err := ctx.Err(); err != nil {
					return report, err
				}
				if r.opts.OnCaseStart != nil {
					r.opts.OnCaseStart(g, param, b.Name())
				}
				res, err := r.runCase(ctx, g, fx, b)
				report.Cases = append(report.Cases, res)
				if r.opts.OnCaseDone != nil {
					r.opts.OnCaseDone(res)
				}
				if err != nil {
					return report, err
				}
			}
		}
	}
	return report, nil
}

func (r *Runner) samples(g *Group) (int, time.Duration) {
	samples, budget := g.Samples, g.MeasurementTime
	if r.opts.Samples > 0 {
		samples = r.opts.Samples
	}
	if r.opts.MeasurementTime > 0 {
		budget = r.opts.MeasurementTime
	}
	return max(samples, 1), budget
}

func (r *Runner) runCase(ctx context.Context, g *Group, fx *Fixture, b backend.Backend) (CaseResult, error) {
	info := b.Info()
	res := CaseResult{
		Group:     g.Name,
		Category:  g.Category,
		ParamName: g.ParamName,
		Param:     fx.Param,
		Backend:   info.Name,
		Atomic:    info.Atomic,
		Status:    StatusOK,
	}
	if g.Category == CategoryTransaction && !info.Atomic {
		res.Notes = append(res.Notes, "non-atomic: statements run without a transaction")
	}
	logger := zlog.With().Str("group", g.Name).Int("param", fx.Param).Str("backend", info.Name).Logger()

	if g.NeedsSeed && (len(fx.Refs.UserIDs) == 0 || len(fx.Refs.Posts) == 0) {
		res.Status = StatusSkipped
		res.Error = "no seed rows (run `dbbench seed`)"
		logger.Warn().Msg("skipping case without seed data")
		return res, nil
	}

	poolSize := r.opts.SerialPoolSize
	if g.Concurrent {
		poolSize = fx.Param
	}
	conn, err := b.Connect(ctx, backend.ConnectOptions{
		DSN:            r.opts.DSN,
		PoolSize:       poolSize,
		ConnectTimeout: r.opts.ConnectTimeout,
	})
	if err != nil {
		res.Status = StatusSkipped
		res.Error = err.Error()
		logger.Warn().Err(err).Msg("connect failed, skipping case")
		return res, nil
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warn().Err(err).Msg("close failed")
		}
	}()

	c := &Case{Group: g, Param: fx.Param, Backend: info, Conn: conn, Fixture: fx}

	if g.Writes {
		if _, err := conn.Cleanup(ctx); err != nil {
			res.Status = StatusSkipped
			res.Error = fmt.Sprintf("cleanup before case: %v", err)
			logger.Warn().Err(err).Msg("pre-case cleanup failed, skipping case")
			return res, nil
		}
	}

	logger.Info().Msg("case start")
	durations, fatal := r.sample(ctx, g, c, &res, logger)

	if g.Writes {
		if n, err := conn.Cleanup(ctx); err != nil {
			res.Notes = append(res.Notes, fmt.Sprintf("cleanup failed: %v", err))
			logger.Warn().Err(err).Msg("cleanup failed")
		} else {
			logger.Debug().Int64("rows", n).Int64("counter", c.counter.Value()).Msg("cleanup")
		}
	}

	var elements int64
	if g.Elements != nil {
		elements = g.Elements(fx.Param)
	}
	res.Stats = Compute(durations, elements)
	if g.Concurrent {
		tasks := Compute(c.tasks.Samples(), 0)
		res.Tasks = &tasks
	}
	if res.Status == StatusOK && len(durations) == 0 {
		res.Status = StatusFailed
		if res.Error == "" {
			res.Error = "every sample failed"
		}
	}

	logger.Info().
		Str("status", string(res.Status)).
		Int("samples", res.Stats.Samples).
		Int("failed", res.FailedSamples).
		Dur("mean", res.Stats.Mean).
		Msg("case done")
	return res, fatal
}

// sample runs the timed iterations. It returns the successful sample times
// and a non-nil error only for a fairness violation.
func (r *Runner) sample(ctx context.Context, g *Group, c *Case, res *CaseResult, logger zerolog.Logger) ([]time.Duration, error) {
	samples, budget := r.samples(g)
	durations := make([]time.Duration, 0, samples)
	start := time.Now()

	for i := 0; i < samples; i++ {
		if i > 0 && budget > 0 && time.Since(start) >= budget {
			logger.Debug().Int("taken", i).Msg("measurement time exhausted")
			break
		}
		if err := ctx.Err(); err != nil {
			res.Status = StatusFailed
			res.Error = err.Error()
			return durations, nil
		}

		if g.Before != nil {
			if err := g.Before(ctx, c); err != nil {
				stop, fatal := r.handle(err, res, logger, "before hook")
				if fatal != nil || stop {
					return durations, fatal
				}
				continue
			}
		}

		t0 := time.Now()
		err := g.Iterate(ctx, c)
		elapsed := time.Since(t0)

		if err != nil {
			stop, fatal := r.handle(err, res, logger, "sample")
			if fatal != nil || stop {
				return durations, fatal
			}
			continue
		}
		durations = append(durations, elapsed)
		logger.Debug().Int("sample", i).Dur("elapsed", elapsed).Msg("sample")
	}
	return durations, nil
}

// handle classifies a sample error. Connectivity errors fail the sample only;
// constraint violations are fatal for the run; anything else stops the case.
func (r *Runner) handle(err error, res *CaseResult, logger zerolog.Logger, stage string) (stop bool, fatal error) {
	switch backend.Classify(err) {
	case backend.ErrorConnectivity:
		res.FailedSamples++
		logger.Warn().Err(err).Str("stage", stage).Msg("sample failed")
		return false, nil
	case backend.ErrorConstraint:
		res.Status = StatusFailed
		res.Error = err.Error()
		logger.Error().Err(err).Str("stage", stage).Msg("constraint violation")
		return true, fmt.Errorf("%w: %s: %v", ErrFairness, res.Label(), err)
	default:
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("%s: %v", stage, err)
		logger.Error().Err(err).Str("stage", stage).Msg("case failed")
		return true, nil
	}
}
