package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/willfong/dbbench/internal/report"
	"github.com/willfong/dbbench/internal/results"
	"github.com/willfong/dbbench/internal/ui"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored benchmark runs",
	Long: `List runs stored in the SQLite history file, newest first.
With --run, show the case summaries of one run.

Examples:
  dbbench history
  dbbench history --limit 5
  dbbench history --run 12`,
	Run: runHistory,
}

var (
	historyLimit int
	historyRun   int64
)

func init() {
	rootCmd.AddCommand(historyCmd)
	f := historyCmd.Flags()
	f.IntVar(&historyLimit, "limit", 20, "number of runs to list")
	f.Int64Var(&historyRun, "run", 0, "show the cases of this run")
	f.String("results", "", "SQLite run history file (default from config)")
}

func runHistory(cmd *cobra.Command, args []string) {
	u := newUI()
	ctx := context.Background()

	path := cfg.ResultsFile
	if f := cmd.Flags().Lookup("results"); f.Changed {
		path = f.Value.String()
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, u.Warning("No history yet: "+path+" does not exist"))
		return
	}

	store, err := results.Open(ctx, path)
	if err != nil {
		fail(u, "%v", err)
	}
	defer store.Close()

	if historyRun > 0 {
		if err := printRunCases(ctx, u, store, historyRun); err != nil {
			fail(u, "%v", err)
		}
		return
	}

	runs, err := store.Runs(ctx, historyLimit)
	if err != nil {
		fail(u, "%v", err)
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(time.DateTime),
			time.Duration(r.Duration).Round(time.Second).String(),
			r.Backends,
			strconv.Itoa(r.OK),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
		}
	}
	u.Println(u.Table([]string{"run", "started", "duration", "backends", "ok", "failed", "skipped"}, rows, func(row, col int) ui.Cell {
		if col == 5 && runs[row].Failed > 0 {
			return ui.CellBad
		}
		return ui.CellNormal
	}))
}

func printRunCases(ctx context.Context, u *ui.UI, store *results.Store, runID int64) error {
	cases, err := store.Cases(ctx, runID)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("run %d not found", runID)
	}

	rows := make([][]string, len(cases))
	for i, c := range cases {
		param := ""
		if c.ParamName != "" {
			param = strconv.Itoa(c.Param)
		}
		rows[i] = []string{
			c.Group, param, c.Backend, c.Status,
			strconv.Itoa(c.Samples),
			report.FormatDuration(time.Duration(c.Mean)),
			report.FormatDuration(time.Duration(c.P95)),
			report.FormatThroughput(c.Throughput),
			c.Notes,
		}
	}
	u.Println(u.Table([]string{"group", "param", "backend", "status", "samples", "mean", "p95", "throughput", "notes"}, rows, func(row, col int) ui.Cell {
		if cases[row].Status != "ok" {
			return ui.CellBad
		}
		return ui.CellNormal
	}))
	return nil
}
