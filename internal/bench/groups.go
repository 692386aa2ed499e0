package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/willfong/dbbench/internal/models"
)

// Categories accepted by the run filter
const (
	CategoryInsert      = "insert"
	CategorySelect      = "select"
	CategoryUpdate      = "update"
	CategoryDelete      = "delete"
	CategoryJoin        = "join"
	CategoryAggregate   = "aggregate"
	CategoryTransaction = "transaction"
	CategoryHeavy       = "heavy"
	CategoryConcurrent  = "concurrent"
)

// Categories lists the filter categories in group order
var Categories = []string{
	CategoryInsert, CategorySelect, CategoryUpdate, CategoryDelete, CategoryJoin,
	CategoryAggregate, CategoryTransaction, CategoryHeavy, CategoryConcurrent,
}

// Parameter sets
var (
	Sizes             = []int{10, 100, 1000}
	PostsPerTx        = []int{1, 5, 10}
	ConcurrencyLevels = []int{10, 50, 100}
)

// Workload sizes
const (
	MixedOperations   = 100
	MixedWriteEvery   = 5
	ReadOperations    = 200
	WriteRepetitions  = 50
	ContentOperations = 100

	ConcurrentReadLimit = 50
	ConcurrentMixedTask = 50
	OpsPerTask          = 20
)

// ErrNoRowAffected means an update expected to hit an existing row matched none
var ErrNoRowAffected = errors.New("no row affected")

func perSize(size int) int64 { return int64(size) }

func affected(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoRowAffected
	}
	return nil
}

// DefaultGroups returns every benchmark group in run order
func DefaultGroups() []Group {
	return []Group{
		{
			Name:            "insert_single_user",
			Category:        CategoryInsert,
			Samples:         100,
			MeasurementTime: 10 * time.Second,
			Writes:          true,
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.InsertUser(ctx, models.GenerateUser(c.Next()))
				return err
			},
		},
		{
			Name:            "insert_batch_users",
			Category:        CategoryInsert,
			ParamName:       "size",
			Params:          Sizes,
			Samples:         50,
			MeasurementTime: 15 * time.Second,
			Writes:          true,
			Elements:        perSize,
			Prepare: func(f *Fixture) {
				f.Users = models.GenerateUsers(0, f.Param)
			},
			// the same users are inserted every sample
			Before: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.Cleanup(ctx)
				return err
			},
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.InsertUsersBatch(ctx, c.Fixture.Users)
				return err
			},
		},
		{
			Name:            "select_user_by_id",
			Category:        CategorySelect,
			Samples:         200,
			MeasurementTime: 10 * time.Second,
			NeedsSeed:       true,
			Iterate: func(ctx context.Context, c *Case) error {
				u, err := c.Conn.SelectUserByID(ctx, c.SeedUserID())
				if err == nil && u == nil {
					return fmt.Errorf("seed user: %w", ErrNoRowAffected)
				}
				return err
			},
		},
		{
			Name:            "select_users_limit",
			Category:        CategorySelect,
			ParamName:       "size",
			Params:          Sizes,
			Samples:         100,
			MeasurementTime: 10 * time.Second,
			NeedsSeed:       true,
			Elements:        perSize,
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.SelectUsersLimit(ctx, c.Param)
				return err
			},
		},
		{
			Name:            "select_users_filtered",
			Category:        CategorySelect,
			ParamName:       "size",
			Params:          Sizes,
			Samples:         100,
			MeasurementTime: 10 * time.Second,
			NeedsSeed:       true,
			Elements:        perSize,
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.SelectUsersFiltered(ctx, FilterMinAge, FilterMaxAge, c.Param)
				return err
			},
		},
		{
			Name:            "update_user",
			Category:        CategoryUpdate,
			Samples:         100,
			MeasurementTime: 10 * time.Second,
			NeedsSeed:       true,
			Iterate: func(ctx context.Context, c *Case) error {
				return affected(c.Conn.UpdateUser(ctx, c.SeedUserID(), models.UpdatedFirstName, models.UpdatedLastName))
			},
		},
		{
			Name:            "delete_user",
			Category:        CategoryDelete,
			Samples:         100,
			MeasurementTime: 10 * time.Second,
			Writes:          true,
			Before: func(ctx context.Context, c *Case) error {
				id, err := c.Conn.InsertUser(ctx, models.GenerateUser(c.Next()))
				c.target = id
				return err
			},
			Iterate: func(ctx context.Context, c *Case) error {
				if c.target == uuid.Nil {
					return ErrNoTarget
				}
				return affected(c.Conn.DeleteUser(ctx, c.target))
			},
		},
		{
			Name:            "join_posts_users",
			Category:        CategoryJoin,
			ParamName:       "size",
			Params:          Sizes,
			Samples:         50,
			MeasurementTime: 10 * time.Second,
			NeedsSeed:       true,
			Elements:        perSize,
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.SelectPostsWithUser(ctx, c.Param)
				return err
			},
		},
		{
			Name:            "join_users_posts_comments",
			Category:        CategoryJoin,
			ParamName:       "size",
			Params:          Sizes,
			Samples:         30,
			MeasurementTime: 15 * time.Second,
			NeedsSeed:       true,
			Elements:        perSize,
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.SelectUsersPostsComments(ctx, c.Param)
				return err
			},
		},
		{
			Name:            "aggregate_count_posts_per_user",
			Category:        CategoryAggregate,
			Samples:         50,
			MeasurementTime: 10 * time.Second,
			NeedsSeed:       true,
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.CountPostsPerUser(ctx)
				return err
			},
		},
		{
			Name:            "transaction_insert_user_with_posts",
			Category:        CategoryTransaction,
			ParamName:       "posts",
			Params:          PostsPerTx,
			Samples:         30,
			MeasurementTime: 15 * time.Second,
			Writes:          true,
			Prepare: func(f *Fixture) {
				f.Posts = models.GeneratePosts(uuid.Nil, f.Param)
			},
			Iterate: func(ctx context.Context, c *Case) error {
				_, err := c.Conn.InsertUserWithPosts(ctx, models.GenerateUser(c.Next()), c.Fixture.Posts)
				return err
			},
		},
		{
			Name:            "heavy_mixed_workload",
			Category:        CategoryHeavy,
			Samples:         20,
			MeasurementTime: 30 * time.Second,
			Writes:          true,
			Elements:        func(int) int64 { return MixedOperations },
			Iterate: func(ctx context.Context, c *Case) error {
				return Execute(ctx, c.Conn, MixedPlan(MixedOperations, MixedWriteEvery), c.Next, nil)
			},
		},
		{
			Name:            "heavy_read_intensive",
			Category:        CategoryHeavy,
			Samples:         30,
			MeasurementTime: 20 * time.Second,
			NeedsSeed:       true,
			Elements:        func(int) int64 { return ReadOperations },
			Iterate: func(ctx context.Context, c *Case) error {
				return Execute(ctx, c.Conn, ReadPlan(ReadOperations), c.Next, nil)
			},
		},
		{
			Name:            "heavy_write_intensive",
			Category:        CategoryHeavy,
			Samples:         20,
			MeasurementTime: 20 * time.Second,
			Writes:          true,
			Elements:        func(int) int64 { return WriteRepetitions * 3 },
			Iterate: func(ctx context.Context, c *Case) error {
				return Execute(ctx, c.Conn, WritePlan(WriteRepetitions), c.Next, nil)
			},
		},
		{
			Name:            "heavy_content_workload",
			Category:        CategoryHeavy,
			Samples:         20,
			MeasurementTime: 20 * time.Second,
			Writes:          true,
			NeedsSeed:       true,
			Elements:        func(int) int64 { return ContentOperations },
			Iterate: func(ctx context.Context, c *Case) error {
				return Execute(ctx, c.Conn, ContentPlan(ContentOperations), c.Next, c.Fixture.Refs.Posts)
			},
		},
		{
			Name:            "concurrent_reads",
			Category:        CategoryConcurrent,
			ParamName:       "concurrency",
			Params:          ConcurrencyLevels,
			Samples:         20,
			MeasurementTime: 20 * time.Second,
			Concurrent:      true,
			NeedsSeed:       true,
			Elements:        perSize,
			Iterate: func(ctx context.Context, c *Case) error {
				return c.RunTasks(ctx, c.Param, func(ctx context.Context, _ int) error {
					_, err := c.Conn.SelectUsersLimit(ctx, ConcurrentReadLimit)
					return err
				})
			},
		},
		{
			Name:            "concurrent_mixed_workload",
			Category:        CategoryConcurrent,
			ParamName:       "concurrency",
			Params:          []int{ConcurrentMixedTask},
			Samples:         15,
			MeasurementTime: 30 * time.Second,
			Writes:          true,
			Concurrent:      true,
			Elements:        func(p int) int64 { return int64(p * OpsPerTask) },
			Iterate: func(ctx context.Context, c *Case) error {
				return c.RunTasks(ctx, c.Param, func(ctx context.Context, _ int) error {
					seed := c.Next()
					for i := int64(0); i < OpsPerTask; i++ {
						var err error
						if (seed+i)%MixedWriteEvery == 0 {
							_, err = c.Conn.InsertUser(ctx, models.GenerateUser(seed*1000+i))
						} else {
							_, err = c.Conn.SelectUsersLimit(ctx, MixedReadLimit)
						}
						if err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
	}
}
