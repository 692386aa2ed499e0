package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/willfong/dbbench/internal/bench"
)

// CSVPrefix starts every machine-readable line so results can be grepped
// out of mixed console output.
const CSVPrefix = "Csv:"

// CSVHeader names the columns of CSV rows
var CSVHeader = []string{
	"group", "category", "param", "backend", "status", "samples", "failed_samples",
	"mean_ns", "stddev_ns", "min_ns", "max_ns", "p50_ns", "p95_ns", "p99_ns",
	"mild_outliers", "severe_outliers", "elements", "throughput",
	"task_mean_ns", "task_p95_ns", "notes",
}

// CSV writes the header and one line per case, each prefixed with CSVPrefix
func CSV(w io.Writer, r *bench.Report) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range r.Cases {
		if err := cw.Write(csvRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	for _, line := range strings.SplitAfter(buf.String(), "\n") {
		if line == "" {
			continue
		}
		if _, err := io.WriteString(w, CSVPrefix+line); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	return nil
}

func csvRow(c bench.CaseResult) []string {
	ns := func(d int64) string { return strconv.FormatInt(d, 10) }
	param := ""
	if c.ParamName != "" {
		param = strconv.Itoa(c.Param)
	}
	var taskMean, taskP95 string
	if c.Tasks != nil {
		taskMean, taskP95 = ns(int64(c.Tasks.Mean)), ns(int64(c.Tasks.P95))
	}
	s := c.Stats
	return []string{
		c.Group, c.Category, param, c.Backend, string(c.Status),
		strconv.Itoa(s.Samples), strconv.Itoa(c.FailedSamples),
		ns(int64(s.Mean)), ns(int64(s.StdDev)), ns(int64(s.Min)), ns(int64(s.Max)),
		ns(int64(s.P50)), ns(int64(s.P95)), ns(int64(s.P99)),
		strconv.Itoa(s.MildOutliers), strconv.Itoa(s.SevereOutliers),
		strconv.FormatInt(s.Elements, 10), strconv.FormatFloat(s.Throughput, 'f', 2, 64),
		taskMean, taskP95, Notes(c),
	}
}
