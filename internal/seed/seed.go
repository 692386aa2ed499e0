// Package seed populates the read-only seed rows the select, join and
// aggregate groups query. Seed rows are inserted once, shared by every
// backend, and never touched by Cleanup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// BatchSize is the number of queued statements sent per round trip
const BatchSize = 500

// PublishedRatio is the share of seed posts with status published
const PublishedRatio = 0.7

// Result summarizes a seed run
type Result struct {
	Existing int64
	Users    int64
	Posts    int64
	Comments int64
	Duration time.Duration
}

// text is filled by faker. It only carries the free-text columns so every
// structured value stays under the seeded RNG's control.
type text struct {
	FirstName string `faker:"first_name"`
	LastName  string `faker:"last_name"`
	Title     string `faker:"sentence"`
	Content   string `faker:"paragraph"`
	Comment   string `faker:"sentence"`
}

// Seeder inserts seed users, posts and comments with pgx batches
type Seeder struct {
	pool *pgxpool.Pool
	cfg  config.SeedConfig
	rng  *Rand

	// Progress, when set, is called with the number of users inserted so far
	Progress func(done, total int64)

	done atomic.Int64
}

// New creates a seeder. The pool should be sized for cfg.Workers.
func New(pool *pgxpool.Pool, cfg config.SeedConfig) *Seeder {
	return &Seeder{
		pool: pool,
		cfg:  cfg,
		rng:  NewRand(cfg.RandomSeed),
	}
}

// Username returns the username of seed user i. Zero padding keeps
// username order equal to index order.
func Username(i int64) string {
	return fmt.Sprintf("%s%07d", models.SeedPrefix, i)
}

// Existing returns the number of seed users already present
func Existing(ctx context.Context, q database.Querier) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username LIKE $1`, models.SeedPattern).Scan(&n); err != nil {
		return 0, fmt.Errorf("count seed users: %w", err)
	}
	return n, nil
}

// Missing returns the seed indices below target that have no user, in
// ascending order. An interrupted seed leaves gaps anywhere in the range, so
// the count of existing users says nothing about which indices are free.
func Missing(ctx context.Context, q database.Querier, target int64) ([]int64, error) {
	rows, err := q.Query(ctx, `
		SELECT i FROM generate_series(0, $1::bigint - 1) AS i
		WHERE NOT EXISTS (
			SELECT 1 FROM users
			WHERE username = $2 || lpad(i::text, greatest(7, length(i::text)), '0')
		)
		ORDER BY i`, target, models.SeedPrefix)
	if err != nil {
		return nil, fmt.Errorf("find missing seed users: %w", err)
	}
	missing, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("find missing seed users: %w", err)
	}
	return missing, nil
}

// Seed tops the seed set up to cfg.Users users. Existing seed users are kept,
// so running it twice inserts nothing the second time, and a run interrupted
// halfway is completed by the next one.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	start := time.Now()
	existing, err := Existing(ctx, s.pool)
	if err != nil {
		return Result{}, err
	}
	res := Result{Existing: existing}

	missing, err := Missing(ctx, s.pool, int64(s.cfg.Users))
	if err != nil {
		return res, err
	}
	if len(missing) == 0 {
		zlog.Info().Int64("existing", existing).Msg("seed data already present")
		res.Duration = time.Since(start)
		return res, nil
	}

	total := int64(len(missing))
	ranges := Partition(0, total, WorkerCount(s.cfg.Workers))
	rngs := s.rng.ForkN(len(ranges))

	var users, posts, comments atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		w := &worker{id: i, seeder: s, rng: rngs[i], total: total}
		indices := missing[r.Start:r.End]
		g.Go(func() error {
			u, p, c, err := w.run(gctx, indices)
			users.Add(u)
			posts.Add(p)
			comments.Add(c)
			return err
		})
	}
	err = g.Wait()

	res.Users, res.Posts, res.Comments = users.Load(), posts.Load(), comments.Load()
	res.Duration = time.Since(start)
	return res, err
}

// Drop deletes every seed user; posts and comments follow by cascade
func Drop(ctx context.Context, q database.Querier) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM users WHERE username LIKE $1`, models.SeedPattern)
	if err != nil {
		return 0, fmt.Errorf("drop seed data: %w", err)
	}
	return tag.RowsAffected(), nil
}

type worker struct {
	id     int
	seeder *Seeder
	rng    *Rand
	total  int64
}

type seedPost struct {
	id     uuid.UUID
	userID uuid.UUID
}

func (w *worker) run(ctx context.Context, indices []int64) (users, posts, comments int64, err error) {
	log := zlog.With().Int("worker", w.id).Int64("first", indices[0]).Int64("last", indices[len(indices)-1]).Logger()
	log.Debug().Msg("seed worker start")

	for from := 0; from < len(indices); from += BatchSize {
		chunk := indices[from:min(from+BatchSize, len(indices))]

		userIDs, err := w.insertUsers(ctx, chunk)
		if err != nil {
			return users, posts, comments, err
		}
		users += int64(len(userIDs))

		postRefs, err := w.insertPosts(ctx, userIDs)
		if err != nil {
			return users, posts, comments, err
		}
		posts += int64(len(postRefs))

		n, err := w.insertComments(ctx, postRefs, userIDs)
		if err != nil {
			return users, posts, comments, err
		}
		comments += n

		done := w.seeder.done.Add(int64(len(chunk)))
		if w.seeder.Progress != nil {
			w.seeder.Progress(done, w.total)
		}
	}

	log.Debug().Int64("users", users).Int64("posts", posts).Int64("comments", comments).Msg("seed worker done")
	return users, posts, comments, nil
}

func fake() (text, error) {
	var t text
	if err := faker.FakeData(&t); err != nil {
		return t, fmt.Errorf("fake data: %w", err)
	}
	return t, nil
}

// insertUsers skips usernames another seeder inserted meanwhile
func (w *worker) insertUsers(ctx context.Context, indices []int64) ([]uuid.UUID, error) {
	batch := &pgx.Batch{}
	for _, i := range indices {
		t, err := fake()
		if err != nil {
			return nil, err
		}
		age := int32(w.rng.IntRange(18, 80))
		name := Username(i)
		batch.Queue(`INSERT INTO users (username, email, first_name, last_name, age)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING RETURNING id`,
			name, name+"@seed.example.com", t.FirstName, t.LastName, age)
	}

	ids := make([]uuid.UUID, 0, batch.Len())
	br := w.seeder.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		var id uuid.UUID
		err := br.QueryRow().Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert seed users: %w", err)
		}
		ids = append(ids, id)
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("insert seed users: %w", err)
	}
	return ids, nil
}

func (w *worker) insertPosts(ctx context.Context, userIDs []uuid.UUID) ([]seedPost, error) {
	batch := &pgx.Batch{}
	var owners []uuid.UUID
	avg := w.seeder.cfg.PostsPerUser
	for _, userID := range userIDs {
		// some users get no posts
		n := w.rng.Around(avg)
		for j := 0; j < n; j++ {
			t, err := fake()
			if err != nil {
				return nil, err
			}
			status := models.StatusDraft
			if w.rng.Probability(PublishedRatio) {
				status = models.StatusPublished
			}
			batch.Queue(`INSERT INTO posts (user_id, title, content, status, view_count)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				userID, t.Title, t.Content, status, w.rng.IntRange(0, 1000))
			owners = append(owners, userID)
		}
	}
	if batch.Len() == 0 {
		return nil, nil
	}

	posts := make([]seedPost, 0, batch.Len())
	br := w.seeder.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		var id uuid.UUID
		if err := br.QueryRow().Scan(&id); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert seed posts: %w", err)
		}
		posts = append(posts, seedPost{id: id, userID: owners[i]})
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("insert seed posts: %w", err)
	}
	return posts, nil
}

func (w *worker) insertComments(ctx context.Context, posts []seedPost, userIDs []uuid.UUID) (int64, error) {
	batch := &pgx.Batch{}
	avg := w.seeder.cfg.CommentsPerPost
	for _, p := range posts {
		n := w.rng.Around(avg)
		for j := 0; j < n; j++ {
			t, err := fake()
			if err != nil {
				return 0, err
			}
			// commenter is any user of this batch
			author := userIDs[w.rng.IntN(len(userIDs))]
			batch.Queue(`INSERT INTO comments (post_id, user_id, content) VALUES ($1, $2, $3)`,
				p.id, author, t.Comment)
		}
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	br := w.seeder.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("insert seed comments: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("insert seed comments: %w", err)
	}
	return int64(batch.Len()), nil
}
