package sqlcgen

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/willfong/dbbench/internal/backend/sqlcgen/db"
	"github.com/willfong/dbbench/internal/config"
)

func TestToUserKeepsNullables(t *testing.T) {
	age := int32(33)
	now := time.Now()
	in := db.User{ID: uuid.New(), Username: "bench_user_1", Email: "a@b.c", FirstName: "A", LastName: "B", Age: &age, CreatedAt: &now}

	got := toUser(in)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, "bench_user_1", got.Username)
	assert.Equal(t, &age, got.Age)
	assert.Equal(t, &now, got.CreatedAt)
	assert.Nil(t, got.UpdatedAt)
}

func TestMapRowsJoinRows(t *testing.T) {
	userID := uuid.New()
	rows := []db.SelectPostsWithUserRow{
		{Post: db.Post{ID: uuid.New(), UserID: userID, Title: "t1", ViewCount: 4}, User: db.User{ID: userID}},
		{Post: db.Post{ID: uuid.New(), UserID: userID, Title: "t2"}, User: db.User{ID: userID}},
	}

	got := mapRows(rows, func(r db.SelectPostsWithUserRow) string { return r.Post.Title })
	assert.Equal(t, []string{"t1", "t2"}, got)

	p := toPost(rows[0].Post)
	assert.Equal(t, int32(4), p.ViewCount)
	assert.Equal(t, userID, p.UserID)
}

func TestMapRowsEmpty(t *testing.T) {
	got := mapRows([]db.Comment(nil), toComment)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInfo(t *testing.T) {
	info := New(config.DefaultConfig().Database).Info()
	assert.Equal(t, Name, info.Name)
	assert.True(t, info.Atomic)
}
