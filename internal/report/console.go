// Package report renders benchmark reports as console tables, Csv: lines
// and YAML documents.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/willfong/dbbench/internal/bench"
	"github.com/willfong/dbbench/internal/ui"
)

// section is one group's cases in run order
type section struct {
	group    string
	category string
	param    string
	cases    []bench.CaseResult
}

func sections(r *bench.Report) []section {
	var out []section
	index := map[string]int{}
	for _, c := range r.Cases {
		i, ok := index[c.Group]
		if !ok {
			i = len(out)
			index[c.Group] = i
			out = append(out, section{group: c.Group, category: c.Category, param: c.ParamName})
		}
		out[i].cases = append(out[i].cases, c)
	}
	return out
}

// Notes returns the notes shown for a case, including why it did not run
func Notes(c bench.CaseResult) string {
	notes := make([]string, 0, len(c.Notes)+1)
	switch c.Status {
	case bench.StatusSkipped:
		notes = append(notes, "skipped: "+c.Error)
	case bench.StatusFailed:
		notes = append(notes, "failed: "+c.Error)
	}
	notes = append(notes, c.Notes...)
	return strings.Join(notes, "; ")
}

// Console writes one table per group to u.Out
func Console(u *ui.UI, r *bench.Report) {
	for _, s := range sections(r) {
		concurrent := false
		for _, c := range s.cases {
			concurrent = concurrent || c.Tasks != nil
		}

		headers := []string{}
		if s.param != "" {
			headers = append(headers, s.param)
		}
		headers = append(headers, "backend", "samples", "mean", "stddev", "p95", "throughput")
		if concurrent {
			headers = append(headers, "task mean", "task p95")
		}
		headers = append(headers, "failed", "notes")

		rows := make([][]string, 0, len(s.cases))
		for _, c := range s.cases {
			var row []string
			if s.param != "" {
				row = append(row, strconv.Itoa(c.Param))
			}
			row = append(row,
				c.Backend,
				strconv.Itoa(c.Stats.Samples),
				FormatDuration(c.Stats.Mean),
				FormatDuration(c.Stats.StdDev),
				FormatDuration(c.Stats.P95),
				FormatThroughput(c.Stats.Throughput),
			)
			if concurrent {
				var tasks bench.Stats
				if c.Tasks != nil {
					tasks = *c.Tasks
				}
				row = append(row, FormatDuration(tasks.Mean), FormatDuration(tasks.P95))
			}
			row = append(row, strconv.Itoa(c.FailedSamples), Notes(c))
			rows = append(rows, row)
		}

		u.Println()
		u.Println(u.Bold(fmt.Sprintf("%s (%s)", s.group, s.category)))
		u.Println(u.Table(headers, rows, func(row, col int) ui.Cell {
			switch s.cases[row].Status {
			case bench.StatusFailed:
				return ui.CellBad
			case bench.StatusSkipped:
				return ui.CellMuted
			}
			if col == len(headers)-1 && len(s.cases[row].Notes) > 0 {
				return ui.CellBad
			}
			return ui.CellNormal
		}))
	}

	u.Println()
	u.Println(u.SummaryBox("Run", Summary(r)))
}

// Summary returns the run totals shown after the tables
func Summary(r *bench.Report) []ui.KV {
	var ok, failed, skipped, lost int
	for _, c := range r.Cases {
		switch c.Status {
		case bench.StatusOK:
			ok++
		case bench.StatusFailed:
			failed++
		case bench.StatusSkipped:
			skipped++
		}
		lost += c.FailedSamples
	}

	names := make([]string, len(r.Backends))
	var gaps []string
	for i, b := range r.Backends {
		names[i] = b.Name
		if !b.Atomic {
			gaps = append(gaps, b.Name)
		}
	}

	items := []ui.KV{
		{Key: "Backends", Value: strings.Join(names, ", ")},
		{Key: "Cases", Value: fmt.Sprintf("%d ok, %d failed, %d skipped", ok, failed, skipped)},
		{Key: "Failed samples", Value: strconv.Itoa(lost)},
		{Key: "Duration", Value: r.Duration.Round(time.Millisecond).String()},
	}
	if len(gaps) > 0 {
		items = append(items, ui.KV{Key: "Non-atomic", Value: strings.Join(gaps, ", ")})
	}
	return items
}
