// Package registry assembles the fixed list of benchmarked backends.
package registry

import (
	"fmt"
	"strings"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/backend/entsql"
	"github.com/willfong/dbbench/internal/backend/gormorm"
	"github.com/willfong/dbbench/internal/backend/pgxdriver"
	"github.com/willfong/dbbench/internal/backend/sqlcgen"
	"github.com/willfong/dbbench/internal/backend/sqlxdb"
	"github.com/willfong/dbbench/internal/config"
)

// Names returns the backend names in report order
func Names() []string {
	return []string{pgxdriver.Name, sqlxdb.Name, gormorm.Name, entsql.Name, sqlcgen.Name}
}

// All returns every backend in report order
func All(db config.DatabaseConfig) []backend.Backend {
	return []backend.Backend{
		pgxdriver.New(db),
		sqlxdb.New(db),
		gormorm.New(db),
		entsql.New(db),
		sqlcgen.New(db),
	}
}

// Lookup returns the backend registered under name
func Lookup(db config.DatabaseConfig, name string) (backend.Backend, error) {
	for _, b := range All(db) {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", backend.ErrUnknownBackend, name, strings.Join(Names(), ", "))
}

// Select returns the named backends in report order. An empty list selects
// all of them. Names are case-insensitive and may be comma separated.
func Select(db config.DatabaseConfig, names []string) ([]backend.Backend, error) {
	all := All(db)
	if len(names) == 0 {
		return all, nil
	}

	want := make(map[string]bool)
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if _, err := Lookup(db, part); err != nil {
				return nil, err
			}
			want[part] = true
		}
	}

	var selected []backend.Backend
	for _, b := range all {
		if want[b.Name()] {
			selected = append(selected, b)
		}
	}
	return selected, nil
}
