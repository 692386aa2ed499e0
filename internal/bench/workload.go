package bench

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// OpKind is one operation of a workload plan
type OpKind int

const (
	OpInsertUser OpKind = iota
	OpInsertPost
	OpUpdateUser
	OpSelectUsersLimit
	OpSelectUsersFiltered
	OpSelectPostsWithUser
	OpCountPostsPerUser
	OpSelectPostsByStatus
	OpIncrementViewCount
	OpSearchUsersByName
	OpInsertComment
)

var opNames = map[OpKind]string{
	OpInsertUser:          "insert_user",
	OpInsertPost:          "insert_post",
	OpUpdateUser:          "update_user",
	OpSelectUsersLimit:    "select_users_limit",
	OpSelectUsersFiltered: "select_users_filtered",
	OpSelectPostsWithUser: "select_posts_with_user",
	OpCountPostsPerUser:   "count_posts_per_user",
	OpSelectPostsByStatus: "select_posts_by_status",
	OpIncrementViewCount:  "increment_view_count",
	OpSearchUsersByName:   "search_users_by_name",
	OpInsertComment:       "insert_comment",
}

func (k OpKind) String() string {
	if name, ok := opNames[k]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(k))
}


// Op is one step of a plan. Limit applies to the read operations.
type Op struct {
	Kind  OpKind
	Limit int
}

// Workload parameters shared by every backend
const (
	MixedReadLimit    = 50
	ReadLimit         = 100
	ReadFilteredLimit = 50
	ReadJoinLimit     = 50
	FilterMinAge      = 25
	FilterMaxAge      = 55
	ContentLimit      = 20
	ContentSearch     = "an"
)

// MixedPlan interleaves writes and reads: every every-th operation (starting
// with the first) inserts a user, the rest read the newest users.
func MixedPlan(n, every int) []Op {
	if every < 1 {
		every = 1
	}
	plan := make([]Op, n)
	for i := range plan {
		if i%every == 0 {
			plan[i] = Op{Kind: OpInsertUser}
		} else {
			plan[i] = Op{Kind: OpSelectUsersLimit, Limit: MixedReadLimit}
		}
	}
	return plan
}

var readCycle = []Op{
	{Kind: OpSelectUsersLimit, Limit: ReadLimit},
	{Kind: OpSelectUsersFiltered, Limit: ReadFilteredLimit},
	{Kind: OpSelectPostsWithUser, Limit: ReadJoinLimit},
	{Kind: OpCountPostsPerUser},
}

// ReadPlan round-robins over four read kinds in a fixed order
func ReadPlan(n int) []Op {
	return cycle(readCycle, n)
}

// WritePlan repeats (insert user, insert post for that user, update that
// user) n times
func WritePlan(n int) []Op {
	plan := make([]Op, 0, n*3)
	for i := 0; i < n; i++ {
		plan = append(plan, Op{Kind: OpInsertUser}, Op{Kind: OpInsertPost}, Op{Kind: OpUpdateUser})
	}
	return plan
}

var contentCycle = []Op{
	{Kind: OpSelectPostsByStatus, Limit: ContentLimit},
	{Kind: OpIncrementViewCount},
	{Kind: OpSearchUsersByName, Limit: ContentLimit},
	{Kind: OpInsertComment},
}

// ContentPlan inserts one commenting user, then round-robins n operations
// over the post and comment operations
func ContentPlan(n int) []Op {
	return append([]Op{{Kind: OpInsertUser}}, cycle(contentCycle, n)...)
}

func cycle(ops []Op, n int) []Op {
	plan := make([]Op, n)
	for i := range plan {
		plan[i] = ops[i%len(ops)]
	}
	return plan
}

// ErrNoTarget is returned when a plan step needs a row that an earlier step
// should have produced
var ErrNoTarget = errors.New("workload step has no target row")

// Execute applies plan to conn in order. next supplies input indices; posts
// supplies existing posts for the view-count and comment steps.
func Execute(ctx context.Context, conn backend.Conn, plan []Op, next func() int64, posts []database.PostRef) error {
	var (
		n        int64
		lastUser uuid.UUID
		postIdx  int
	)
	nextPost := func() (database.PostRef, error) {
		if len(posts) == 0 {
			return database.PostRef{}, fmt.Errorf("%w: no seed posts", ErrNoTarget)
		}
		p := posts[postIdx%len(posts)]
		postIdx++
		return p, nil
	}

	for i, op := range plan {
		var err error
		switch op.Kind {
		case OpInsertUser:
			n = next()
			lastUser, err = conn.InsertUser(ctx, models.GenerateUser(n))
		case OpInsertPost:
			if lastUser == uuid.Nil {
				return fmt.Errorf("step %d %s: %w", i, op.Kind, ErrNoTarget)
			}
			_, err = conn.InsertPost(ctx, models.GeneratePost(lastUser, n))
		case OpUpdateUser:
			if lastUser == uuid.Nil {
				return fmt.Errorf("step %d %s: %w", i, op.Kind, ErrNoTarget)
			}
			_, err = conn.UpdateUser(ctx, lastUser, models.ModifiedFirstName, models.ModifiedLastName)
		case OpSelectUsersLimit:
			_, err = conn.SelectUsersLimit(ctx, op.Limit)
		case OpSelectUsersFiltered:
			_, err = conn.SelectUsersFiltered(ctx, FilterMinAge, FilterMaxAge, op.Limit)
		case OpSelectPostsWithUser:
			_, err = conn.SelectPostsWithUser(ctx, op.Limit)
		case OpCountPostsPerUser:
			_, err = conn.CountPostsPerUser(ctx)
		case OpSelectPostsByStatus:
			status := models.StatusPublished
			if i%2 == 0 {
				status = models.StatusDraft
			}
			_, err = conn.SelectPostsByStatus(ctx, status, op.Limit)
		case OpIncrementViewCount:
			var p database.PostRef
			if p, err = nextPost(); err == nil {
				_, err = conn.IncrementViewCount(ctx, p.ID)
			}
		case OpSearchUsersByName:
			_, err = conn.SearchUsersByName(ctx, ContentSearch, op.Limit)
		case OpInsertComment:
			if lastUser == uuid.Nil {
				return fmt.Errorf("step %d %s: %w", i, op.Kind, ErrNoTarget)
			}
			var p database.PostRef
			if p, err = nextPost(); err == nil {
				_, err = conn.InsertComment(ctx, models.GenerateComment(p.ID, lastUser, next()))
			}
		default:
			return fmt.Errorf("step %d: unknown operation %s", i, op.Kind)
		}
		if err != nil {
			return fmt.Errorf("step %d %s: %w", i, op.Kind, err)
		}
	}
	return nil
}
