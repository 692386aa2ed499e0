package database

import (
	"context"
	"embed"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// Schema variants
const (
	SchemaFull    = "full"
	SchemaTables  = "tables"
	SchemaIndexes = "indexes"
)

var schemaFiles = map[string]string{
	SchemaFull:    "schemas/schema.sql",
	SchemaTables:  "schemas/schema_tables.sql",
	SchemaIndexes: "schemas/schema_indexes.sql",
}

// SchemaKinds returns the valid schema variant names
func SchemaKinds() []string {
	kinds := make([]string, 0, len(schemaFiles))
	for k := range schemaFiles {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Schema returns the DDL of one schema variant
func Schema(kind string) ([]byte, error) {
	name, ok := schemaFiles[kind]
	if !ok {
		return nil, fmt.Errorf("unknown schema type %q", kind)
	}
	return schemaFS.ReadFile(name)
}

// EnsureSchema creates the benchmark tables and indexes when they do not
// exist. Every statement is idempotent.
func EnsureSchema(ctx context.Context, conn *pgx.Conn) error {
	ddl, err := Schema(SchemaFull)
	if err != nil {
		return err
	}
	// Simple protocol so the multi-statement script runs in one round trip
	if _, err := conn.PgConn().Exec(ctx, string(ddl)).ReadAll(); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
