// Package results keeps a history of benchmark runs in a local SQLite file
// so runs can be compared over time.
package results

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	zlog "github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/willfong/dbbench/internal/bench"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TIMESTAMP NOT NULL,
	duration_ns INTEGER NOT NULL,
	database    TEXT NOT NULL,
	backends    TEXT NOT NULL,
	ok          INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cases (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	grp            TEXT NOT NULL,
	category       TEXT NOT NULL,
	param_name     TEXT NOT NULL,
	param          INTEGER NOT NULL,
	backend        TEXT NOT NULL,
	status         TEXT NOT NULL,
	samples        INTEGER NOT NULL,
	failed_samples INTEGER NOT NULL,
	mean_ns        INTEGER NOT NULL,
	stddev_ns      INTEGER NOT NULL,
	p95_ns         INTEGER NOT NULL,
	throughput     REAL NOT NULL,
	notes          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cases_run ON cases(run_id);
`

// Run is one stored run
type Run struct {
	ID        int64     `db:"id"`
	StartedAt time.Time `db:"started_at"`
	Duration  int64     `db:"duration_ns"`
	Database  string    `db:"database"`
	Backends  string    `db:"backends"`
	OK        int       `db:"ok"`
	Failed    int       `db:"failed"`
	Skipped   int       `db:"skipped"`
}

// Case is the stored summary of one case
type Case struct {
	ID            int64   `db:"id"`
	RunID         int64   `db:"run_id"`
	Group         string  `db:"grp"`
	Category      string  `db:"category"`
	ParamName     string  `db:"param_name"`
	Param         int     `db:"param"`
	Backend       string  `db:"backend"`
	Status        string  `db:"status"`
	Samples       int     `db:"samples"`
	FailedSamples int     `db:"failed_samples"`
	Mean          int64   `db:"mean_ns"`
	StdDev        int64   `db:"stddev_ns"`
	P95           int64   `db:"p95_ns"`
	Throughput    float64 `db:"throughput"`
	Notes         string  `db:"notes"`
}

// Store is an open history file
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the history file at path
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open(DriverName, "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open results store: %w", err)
	}
	// one writer; SQLite serializes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores the run and its case summaries in one transaction and
// returns the new run id.
func (s *Store) Append(ctx context.Context, r *bench.Report) (int64, error) {
	run := Run{
		StartedAt: r.StartedAt.UTC(),
		Duration:  int64(r.Duration),
		Database:  r.Database,
	}
	names := make([]string, len(r.Backends))
	for i, b := range r.Backends {
		names[i] = b.Name
	}
	run.Backends = strings.Join(names, ",")
	for _, c := range r.Cases {
		switch c.Status {
		case bench.StatusOK:
			run.OK++
		case bench.StatusFailed:
			run.Failed++
		case bench.StatusSkipped:
			run.Skipped++
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO runs (started_at, duration_ns, database, backends, ok, failed, skipped)
		VALUES (:started_at, :duration_ns, :database, :backends, :ok, :failed, :skipped)`, run)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	if len(r.Cases) > 0 {
		cases := make([]Case, len(r.Cases))
		for i, c := range r.Cases {
			cases[i] = Case{
				RunID:         runID,
				Group:         c.Group,
				Category:      c.Category,
				ParamName:     c.ParamName,
				Param:         c.Param,
				Backend:       c.Backend,
				Status:        string(c.Status),
				Samples:       c.Stats.Samples,
				FailedSamples: c.FailedSamples,
				Mean:          int64(c.Stats.Mean),
				StdDev:        int64(c.Stats.StdDev),
				P95:           int64(c.Stats.P95),
				Throughput:    c.Stats.Throughput,
				Notes:         strings.Join(c.Notes, "; "),
			}
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO cases (run_id, grp, category, param_name, param, backend, status,
				samples, failed_samples, mean_ns, stddev_ns, p95_ns, throughput, notes)
			VALUES (:run_id, :grp, :category, :param_name, :param, :backend, :status,
				:samples, :failed_samples, :mean_ns, :stddev_ns, :p95_ns, :throughput, :notes)`, cases)
		if err != nil {
			return 0, fmt.Errorf("insert cases: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	zlog.Debug().Int64("run", runID).Int("cases", len(r.Cases)).Msg("stored run")
	return runID, nil
}

// Runs returns up to limit runs, newest first
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, started_at, duration_ns, database, backends, ok, failed, skipped
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Cases returns the cases of one run in the order they ran
func (s *Store) Cases(ctx context.Context, runID int64) ([]Case, error) {
	var cases []Case
	err := s.db.SelectContext(ctx, &cases, `
		SELECT id, run_id, grp, category, param_name, param, backend, status,
			samples, failed_samples, mean_ns, stddev_ns, p95_ns, throughput, notes
		FROM cases WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return cases, nil
}
