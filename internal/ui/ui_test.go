package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPlainOutputHasNoEscapes(t *testing.T) {
	var out bytes.Buffer
	u := Plain(&out)

	if got := u.Success("done"); got != "[OK] done" {
		t.Errorf("Success = %q", got)
	}
	if got := u.Error("boom"); got != "[FAILED] boom" {
		t.Errorf("Error = %q", got)
	}
	if got := u.Warning("careful"); got != "[WARN] careful" {
		t.Errorf("Warning = %q", got)
	}
	if got := u.Header("dbbench"); got != "=== dbbench ===" {
		t.Errorf("Header = %q", got)
	}

	u.Println(u.KeyValue("Backends", "pgx, sqlx"))
	if strings.Contains(out.String(), "\033[") {
		t.Errorf("plain output contains escape codes: %q", out.String())
	}
}

func TestTablePlain(t *testing.T) {
	u := Plain(&bytes.Buffer{})
	got := u.Table(
		[]string{"backend", "mean"},
		[][]string{{"pgx", "1.00 ms"}, {"sqlx", "1.20 ms"}},
		func(row, col int) Cell { return CellBad },
	)

	for _, want := range []string{"backend", "mean", "pgx", "1.20 ms"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\033[") {
		t.Errorf("plain table contains escape codes:\n%s", got)
	}
	if lines := strings.Count(got, "\n"); lines < 4 {
		t.Errorf("expected bordered rows, got %d lines:\n%s", lines, got)
	}
}

func TestSummaryBoxPlain(t *testing.T) {
	u := Plain(&bytes.Buffer{})
	got := u.SummaryBox("Seed", []KV{{"Users", "1000"}, {"Posts", "3000"}})
	if !strings.Contains(got, "=== Seed ===") || !strings.Contains(got, "Users:") {
		t.Errorf("SummaryBox = %q", got)
	}
}

func TestProgressBarPlain(t *testing.T) {
	var status bytes.Buffer
	u := Plain(&bytes.Buffer{})
	u.Status = &status

	p := u.NewProgressBar("Cases", 2)
	p.Step(0, "insert_single_user/pgx")
	p.Step(1, "insert_single_user/sqlx")
	p.Complete()

	got := status.String()
	if !strings.Contains(got, "[1/2] insert_single_user/pgx") || !strings.Contains(got, "[2/2] insert_single_user/sqlx") {
		t.Errorf("unexpected progress output:\n%s", got)
	}
	if !strings.Contains(got, "Cases: 2/2 done") {
		t.Errorf("missing completion line:\n%s", got)
	}

	status.Reset()
	u.NewProgressBar("Seed", 10).Fail(errors.New("connection refused"))
	if !strings.Contains(status.String(), "FAILED: connection refused") {
		t.Errorf("Fail output = %q", status.String())
	}
}

func TestSpinnerPlain(t *testing.T) {
	var status bytes.Buffer
	u := Plain(&bytes.Buffer{})
	u.Status = &status

	s := u.NewSpinner("Connecting")
	s.Success("ignored before start")
	if status.Len() != 0 {
		t.Errorf("spinner wrote before Start: %q", status.String())
	}

	s.Start()
	s.Success("ok")
	s.Error("second stop is harmless")
	if got := status.String(); !strings.HasPrefix(got, "Connecting... ok\n") {
		t.Errorf("spinner output = %q", got)
	}
}
