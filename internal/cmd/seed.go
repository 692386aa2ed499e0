package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/seed"
	"github.com/willfong/dbbench/internal/ui"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the seed rows read groups query",
	Long: `Create seed users with posts and comments. Seed rows are shared by every
backend, are never removed by cleanup, and are topped up rather than
recreated, so running seed twice inserts nothing the second time.

Post and comment counts vary per user around the configured averages;
some users have no posts. --random-seed makes the data reproducible.

Examples:
  dbbench seed
  dbbench seed --users 10000 --posts-per-user 5 --workers 16
  dbbench seed --drop`,
	Run: runSeed,
}

var dropSeed bool

func init() {
	rootCmd.AddCommand(seedCmd)

	f := seedCmd.Flags()
	f.Int("users", config.SeedUsers, "number of seed users")
	f.Int("posts-per-user", config.SeedPostsPerUser, "average posts per seed user")
	f.Int("comments-per-post", config.SeedCommentsPerPost, "average comments per seed post")
	f.Int("workers", config.SeedWorkers, "parallel insert workers")
	f.Int64("random-seed", 0, "random seed for reproducibility (0 = random)")
	f.BoolVar(&dropSeed, "drop", false, "delete all seed rows instead")

	bindFlag("seed.users", f, "users")
	bindFlag("seed.posts_per_user", f, "posts-per-user")
	bindFlag("seed.comments_per_post", f, "comments-per-post")
	bindFlag("seed.workers", f, "workers")
	bindFlag("seed.random_seed", f, "random-seed")
}

func runSeed(cmd *cobra.Command, args []string) {
	u := newUI()
	ctx, stop := signalContext()
	defer stop()

	conn, err := connectAdmin(ctx, u)
	if err != nil {
		fail(u, "%v", err)
	}
	defer conn.Close(context.Background())

	if dropSeed {
		n, err := seed.Drop(ctx, conn)
		if err != nil {
			fail(u, "%v", err)
		}
		fmt.Fprintln(os.Stderr, u.Success(fmt.Sprintf("Dropped %d seed users with their posts and comments", n)))
		return
	}

	if err := ensureSchema(ctx, u, conn); err != nil {
		fail(u, "%v", err)
	}
	res, err := seedData(ctx, u, cfg.Seed)
	if err != nil {
		fail(u, "%v", err)
	}

	counts, err := database.Counts(ctx, conn)
	if err != nil {
		fail(u, "%v", err)
	}
	u.Println(u.SummaryBox("Seed Data", []ui.KV{
		{Key: "Existing", Value: fmt.Sprintf("%d users", res.Existing)},
		{Key: "Inserted", Value: fmt.Sprintf("%d users, %d posts, %d comments", res.Users, res.Posts, res.Comments)},
		{Key: "Seed users", Value: fmt.Sprintf("%d", counts.Seed)},
		{Key: "Duration", Value: res.Duration.Round(time.Millisecond).String()},
	}))
}

// seedData tops up the seed rows with a progress bar
func seedData(ctx context.Context, u *ui.UI, sc config.SeedConfig) (seed.Result, error) {
	pool, err := database.NewPgxPool(ctx, cfg.Database, seed.WorkerCount(sc.Workers))
	if err != nil {
		return seed.Result{}, err
	}
	defer pool.Close()

	existing, err := seed.Existing(ctx, pool)
	if err != nil {
		return seed.Result{}, err
	}
	missing, err := seed.Missing(ctx, pool, int64(sc.Users))
	if err != nil {
		return seed.Result{}, err
	}
	if len(missing) == 0 {
		return seed.Result{Existing: existing}, nil
	}

	progress := u.NewProgressBar("Seeding", int64(len(missing)))
	s := seed.New(pool, sc)
	s.Progress = func(done, total int64) { progress.Update(done) }

	res, err := s.Seed(ctx)
	if err != nil {
		progress.Fail(err)
		return res, err
	}
	progress.Complete()
	return res, nil
}
