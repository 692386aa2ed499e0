package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willfong/dbbench/internal/backend/registry"
	"github.com/willfong/dbbench/internal/bench"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "List backends and check the database connection",
	Long: `Print the backends under comparison, connect to the database and show
row counts for the benchmark tables, then explain how to run the
benchmarks. Exits non-zero when the database cannot be reached.

This is also what dbbench does when run without a subcommand.`,
	Run: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	u := newUI()

	u.Println(u.Header("PostgreSQL Library Benchmark"))
	u.Println()

	backends := registry.All(cfg.Database)
	rows := make([][]string, len(backends))
	for i, b := range backends {
		info := b.Info()
		atomic := "yes"
		if !info.Atomic {
			atomic = "no"
		}
		rows[i] = []string{info.Name, info.Library, string(info.Kind), atomic, info.Description}
	}
	u.Println(u.Table([]string{"backend", "library", "kind", "atomic tx", "description"}, rows, nil))
	u.Println()
	u.Println(u.KeyValue("Database", config.MaskDSN(cfg.Database.DSN)))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout*2)
	defer cancel()

	conn, err := connectAdmin(ctx, u)
	if err != nil {
		fail(u, "Connectivity check failed: %v", err)
	}
	defer conn.Close(context.Background())

	counts, err := database.Counts(ctx, conn)
	if err != nil {
		fail(u, "Reading row counts: %v", err)
	}
	u.Println(u.KeyValue("Users", fmt.Sprintf("%d (%d seed, %d synthetic)", counts.Users, counts.Seed, counts.Synthetic)))
	u.Println(u.KeyValue("Posts", fmt.Sprintf("%d", counts.Posts)))
	u.Println(u.KeyValue("Comments", fmt.Sprintf("%d", counts.Comments)))
	u.Println()

	u.Println(u.Bold("Run the benchmarks:"))
	u.Println("  dbbench run")
	u.Println("  dbbench run --filter insert --filter join")
	u.Println("  dbbench run --backend pgx,sqlc --samples 20")
	u.Println()
	u.Println(u.KeyValue("Filters", strings.Join(bench.Categories, ", ")))
	u.Println(u.Muted("  Filters match a category or any part of a group name; see dbbench run --list."))
}
