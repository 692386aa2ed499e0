package report

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/willfong/dbbench/internal/bench"
)

// YAML encodes the full report
func YAML(w io.Writer, r *bench.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// SaveYAML writes the report to path
func SaveYAML(path string, r *bench.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := YAML(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
