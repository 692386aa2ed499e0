package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willfong/dbbench/internal/database"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema [type]",
	Short: "Output the PostgreSQL schema",
	Long: `Output the SQL schema the benchmarks run against.

Available schema types:
  full      Tables and indexes (default)
  tables    Tables only, no secondary indexes
  indexes   Secondary indexes only

Every statement uses IF NOT EXISTS, so the schema can be applied to an
existing database. dbbench run and dbbench seed apply it automatically.

Examples:
  dbbench schema                          # Output complete schema
  dbbench schema -o schema.sql            # Save to a file
  dbbench schema tables | psql bench      # Create tables only`,
	Args: cobra.MaximumNArgs(1),
	// printing the schema needs no config
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run:               runSchema,
}

var schemaOutputFile string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutputFile, "output", "o", "", "output file (default: stdout)")
}

func runSchema(cmd *cobra.Command, args []string) {
	u := newUI()

	kind := database.SchemaFull
	if len(args) > 0 {
		kind = args[0]
	}

	content, err := database.Schema(kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(err.Error()))
		fmt.Fprintln(os.Stderr, "Valid types: "+strings.Join(database.SchemaKinds(), ", "))
		Exit(1)
	}

	if schemaOutputFile == "" {
		u.Printf("%s", content)
		return
	}

	dir := filepath.Dir(schemaOutputFile)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fail(u, "Creating directory: %v", err)
		}
	}
	if err := os.WriteFile(schemaOutputFile, content, 0644); err != nil {
		fail(u, "Writing file: %v", err)
	}
	fmt.Fprintln(os.Stderr, u.Success("Schema written to: "+schemaOutputFile))
}
