package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/backend/pgxdriver"
	"github.com/willfong/dbbench/internal/backend/registry"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete synthetic rows left by benchmark runs",
	Long: `Delete every synthetic user (and, by cascade, their posts and comments).
Seed rows are kept. Runs clean up after themselves; this is for runs that
were interrupted.

Examples:
  dbbench cleanup
  dbbench cleanup --backend gorm`,
	Run: runCleanup,
}

var cleanupBackend string

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringVar(&cleanupBackend, "backend", pgxdriver.Name, "backend used to delete ("+backendNames()+")")
}

func runCleanup(cmd *cobra.Command, args []string) {
	u := newUI()
	ctx, stop := signalContext()
	defer stop()

	b, err := registry.Lookup(cfg.Database, cleanupBackend)
	if err != nil {
		fail(u, "%v", err)
	}

	spin := u.NewSpinner("Deleting synthetic rows with " + b.Name())
	spin.Start()
	conn, err := b.Connect(ctx, backend.ConnectOptions{
		DSN:            cfg.Database.DSN,
		PoolSize:       1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
	if err != nil {
		spin.Error("connection failed")
		fail(u, "%v", err)
	}
	defer conn.Close()

	n, err := conn.Cleanup(ctx)
	if err != nil {
		spin.Error("failed")
		fail(u, "%v", err)
	}
	spin.Success(fmt.Sprintf("%d users deleted", n))
	fmt.Fprintln(os.Stderr)
}
