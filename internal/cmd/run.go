package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/willfong/dbbench/internal/backend/registry"
	"github.com/willfong/dbbench/internal/bench"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/report"
	"github.com/willfong/dbbench/internal/results"
	"github.com/willfong/dbbench/internal/ui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark groups against every backend",
	Long: `Run every benchmark group (or those matching --filter) against every
backend (or those named by --backend) and print a report per group.

Each case connects outside the timed region, runs its samples, and then
deletes the synthetic rows it wrote. Every backend gets identical inputs.
Read groups query seed rows, which are created on first use unless
--no-seed is given.

A connection failure skips the case. A lost connection during a sample
counts as a failed sample and is not retried. A unique-constraint
violation means the inputs were not unique and stops the run with a
non-zero exit code.

Examples:
  dbbench run
  dbbench run --filter insert --filter join
  dbbench run --backend pgx,sqlc --samples 20 --time 5s
  dbbench run --csv | grep '^Csv:'
  dbbench run --output report.yaml
  dbbench run --list`,
	Run: runRun,
}

var listGroups bool

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringSlice("filter", nil, "group name substring or category (repeatable, comma separated)")
	f.StringSlice("backend", nil, "backends to compare (default: all)")
	f.Int("samples", 0, "samples per case (default: per group)")
	f.Duration("time", 0, "measurement time per case (default: per group)")
	f.Int("pool-size", config.SerialPoolSize, "pool size of non-concurrent cases")
	f.Bool("csv", false, "also print Csv: prefixed lines")
	f.StringP("output", "o", "", "write the full report as YAML to this file")
	f.Bool("no-seed", false, "do not create seed rows")
	f.String("results", config.ResultsFile, `SQLite run history file ("" disables it)`)
	f.BoolVar(&listGroups, "list", false, "list the selected groups and exit")

	bindFlag("run.filters", f, "filter")
	bindFlag("run.backends", f, "backend")
	bindFlag("run.samples", f, "samples")
	bindFlag("run.measurement_time", f, "time")
	bindFlag("run.serial_pool_size", f, "pool-size")
	bindFlag("run.csv", f, "csv")
	bindFlag("run.output", f, "output")
	bindFlag("run.no_seed", f, "no-seed")
	bindFlag("results_file", f, "results")
}

func runRun(cmd *cobra.Command, args []string) {
	u := newUI()

	backends, err := registry.Select(cfg.Database, cfg.Run.Backends)
	if err != nil {
		fail(u, "%v", err)
	}
	groups := bench.Filter(bench.DefaultGroups(), cfg.Run.Filters)
	if len(groups) == 0 {
		fail(u, "No benchmark group matches %s", strings.Join(cfg.Run.Filters, ", "))
	}

	if listGroups {
		printGroups(u, groups)
		return
	}

	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name()
	}
	total := bench.CaseCount(groups, backends)

	fmt.Fprintln(os.Stderr, u.Header("PostgreSQL Library Benchmark"))
	fmt.Fprintln(os.Stderr, u.KeyValue("Database", config.MaskDSN(cfg.Database.DSN)))
	fmt.Fprintln(os.Stderr, u.KeyValue("Backends", strings.Join(names, ", ")))
	fmt.Fprintln(os.Stderr, u.KeyValue("Groups", strconv.Itoa(len(groups))))
	fmt.Fprintln(os.Stderr, u.KeyValue("Cases", strconv.Itoa(total)))
	fmt.Fprintln(os.Stderr)

	ctx, stop := signalContext()
	defer stop()

	refs, err := prepare(ctx, u, groups)
	if err != nil {
		fail(u, "%v", err)
	}

	progress := u.NewProgressBar("Cases", int64(total))
	done := 0
	runner := bench.NewRunner(bench.Options{
		DSN:             cfg.Database.DSN,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		SerialPoolSize:  cfg.Run.SerialPoolSize,
		Samples:         cfg.Run.Samples,
		MeasurementTime: cfg.Run.MeasurementTime,
		Refs:            refs,
		OnCaseStart: func(g *bench.Group, param int, name string) {
			progress.Step(int64(done), g.Label(param)+" "+name)
		},
		OnCaseDone: func(res bench.CaseResult) {
			done++
			progress.Update(int64(done))
		},
	})

	rep, runErr := runner.Run(ctx, groups, backends)
	rep.Database = config.MaskDSN(cfg.Database.DSN)
	if runErr != nil {
		progress.Fail(runErr)
	} else {
		progress.Complete()
	}

	if err := emit(ctx, u, rep); err != nil {
		fmt.Fprintln(os.Stderr, u.Error(err.Error()))
		Exit(1)
	}

	if runErr != nil {
		if errors.Is(runErr, bench.ErrFairness) {
			fail(u, "Run stopped: %v", runErr)
		}
		fail(u, "Run interrupted: %v", runErr)
	}
}

// prepare applies the schema, seeds when a selected group reads seed rows
// and loads the seed ids lookup groups cycle over.
func prepare(ctx context.Context, u *ui.UI, groups []bench.Group) (database.SeedRefs, error) {
	conn, err := connectAdmin(ctx, u)
	if err != nil {
		return database.SeedRefs{}, err
	}
	defer conn.Close(context.Background())

	if err := ensureSchema(ctx, u, conn); err != nil {
		return database.SeedRefs{}, err
	}

	needsSeed := false
	for _, g := range groups {
		needsSeed = needsSeed || g.NeedsSeed
	}
	if !needsSeed {
		return database.SeedRefs{}, nil
	}

	if !cfg.Run.NoSeed {
		if _, err := seedData(ctx, u, cfg.Seed); err != nil {
			return database.SeedRefs{}, err
		}
	}
	return loadRefs(ctx, u, conn)
}

func loadRefs(ctx context.Context, u *ui.UI, conn *pgx.Conn) (database.SeedRefs, error) {
	spin := u.NewSpinner("Loading seed ids")
	spin.Start()
	refs, err := database.LoadSeedRefs(ctx, conn, config.LookupIDCount)
	if err != nil {
		spin.Error("failed")
		return refs, err
	}
	if len(refs.UserIDs) == 0 {
		spin.Error("no seed rows, read groups will be skipped")
		return refs, nil
	}
	spin.Success(fmt.Sprintf("%d users, %d posts", len(refs.UserIDs), len(refs.Posts)))
	return refs, nil
}

// emit prints the report and writes the optional CSV, YAML and history
func emit(ctx context.Context, u *ui.UI, rep *bench.Report) error {
	// an interrupted run still saves what it measured
	ctx = context.WithoutCancel(ctx)
	report.Console(u, rep)

	if cfg.Run.CSV {
		u.Println()
		if err := report.CSV(u.Out, rep); err != nil {
			return err
		}
	}

	if cfg.Run.Output != "" {
		if err := report.SaveYAML(cfg.Run.Output, rep); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, u.Success("Report written to: "+cfg.Run.Output))
	}

	if cfg.ResultsFile != "" && len(rep.Cases) > 0 {
		store, err := results.Open(ctx, cfg.ResultsFile)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Append(ctx, rep)
		if err != nil {
			return err
		}
		zlog.Info().Int64("run", id).Str("file", cfg.ResultsFile).Msg("run stored")
	}
	return nil
}

func printGroups(u *ui.UI, groups []bench.Group) {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		params := "-"
		if len(g.Params) > 0 {
			vals := make([]string, len(g.Params))
			for j, p := range g.Params {
				vals[j] = strconv.Itoa(p)
			}
			params = g.ParamName + " " + strings.Join(vals, "/")
		}
		seed := ""
		if g.NeedsSeed {
			seed = "yes"
		}
		rows[i] = []string{g.Name, g.Category, params, strconv.Itoa(g.Samples), g.MeasurementTime.String(), seed}
	}
	u.Println(u.Table([]string{"group", "category", "params", "samples", "time", "seed"}, rows, nil))
}

// backendNames is used by commands that accept a single backend
func backendNames() string {
	return strings.Join(registry.Names(), ", ")
}
