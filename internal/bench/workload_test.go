package bench

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/dbbench/internal/database"
)

func kinds(plan []Op) []OpKind {
	out := make([]OpKind, len(plan))
	for i, op := range plan {
		out[i] = op.Kind
	}
	return out
}

func isWrite(k OpKind) bool {
	switch k {
	case OpInsertUser, OpInsertPost, OpUpdateUser, OpIncrementViewCount, OpInsertComment:
		return true
	}
	return false
}

func TestMixedPlan(t *testing.T) {
	plan := MixedPlan(100, 5)
	require.Len(t, plan, 100)

	writes := 0
	for i, op := range plan {
		if isWrite(op.Kind) {
			writes++
			assert.Zero(t, i%5, "write at %d", i)
		} else {
			assert.Equal(t, MixedReadLimit, op.Limit)
		}
	}
	assert.Equal(t, 20, writes)
	assert.Equal(t, plan, MixedPlan(100, 5), "plan must be deterministic")
}

func TestReadPlanCycles(t *testing.T) {
	plan := ReadPlan(8)
	assert.Equal(t, []OpKind{
		OpSelectUsersLimit, OpSelectUsersFiltered, OpSelectPostsWithUser, OpCountPostsPerUser,
		OpSelectUsersLimit, OpSelectUsersFiltered, OpSelectPostsWithUser, OpCountPostsPerUser,
	}, kinds(plan))
	for _, op := range plan {
		assert.False(t, isWrite(op.Kind))
	}
}

func TestWritePlanSequence(t *testing.T) {
	plan := WritePlan(2)
	assert.Equal(t, []OpKind{
		OpInsertUser, OpInsertPost, OpUpdateUser,
		OpInsertUser, OpInsertPost, OpUpdateUser,
	}, kinds(plan))
}

func TestContentPlanStartsWithCommenter(t *testing.T) {
	plan := ContentPlan(5)
	require.Len(t, plan, 6)
	assert.Equal(t, OpInsertUser, plan[0].Kind)
	assert.Equal(t, OpSelectPostsByStatus, plan[1].Kind)
	assert.Equal(t, OpInsertComment, plan[4].Kind)
	assert.Equal(t, OpSelectPostsByStatus, plan[5].Kind)
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "insert_user", OpInsertUser.String())
	assert.Equal(t, "op(99)", OpKind(99).String())
}

func TestExecuteWritePlan(t *testing.T) {
	b := newFake("fake")
	conn, err := b.Connect(context.Background(), backendOpts(1))
	require.NoError(t, err)
	fc := conn.(*fakeConn)

	var counter Counter
	require.NoError(t, Execute(context.Background(), conn, WritePlan(3), counter.Next, nil))

	assert.Equal(t, 3, fc.count("insert_user"))
	assert.Equal(t, 3, fc.count("insert_post"))
	assert.Equal(t, 3, fc.count("update_user"))
	assert.Equal(t, []string{"bench_user_1", "bench_user_2", "bench_user_3"}, fc.inserted)
}

func TestExecuteContentPlanNeedsPosts(t *testing.T) {
	b := newFake("fake")
	conn, _ := b.Connect(context.Background(), backendOpts(1))
	var counter Counter

	err := Execute(context.Background(), conn, ContentPlan(4), counter.Next, nil)
	assert.ErrorIs(t, err, ErrNoTarget)

	posts := []database.PostRef{{ID: uuid.New(), UserID: uuid.New()}}
	require.NoError(t, Execute(context.Background(), conn, ContentPlan(8), counter.Next, posts))
	assert.Equal(t, 2, conn.(*fakeConn).count("insert_comment"))
}

func TestExecuteStopsAtFirstError(t *testing.T) {
	b := newFake("fake")
	boom := errors.New("boom")
	b.failOn["select_users_filtered"] = boom
	conn, _ := b.Connect(context.Background(), backendOpts(1))
	var counter Counter

	err := Execute(context.Background(), conn, ReadPlan(8), counter.Next, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step 1 select_users_filtered")
	assert.Equal(t, 0, conn.(*fakeConn).count("count_posts_per_user"))
}

func TestExecutePostWithoutUser(t *testing.T) {
	b := newFake("fake")
	conn, _ := b.Connect(context.Background(), backendOpts(1))
	var counter Counter

	err := Execute(context.Background(), conn, []Op{{Kind: OpInsertPost}}, counter.Next, nil)
	assert.ErrorIs(t, err, ErrNoTarget)
}
