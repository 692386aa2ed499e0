package gormorm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/willfong/dbbench/internal/models"
)

func TestCreateLeavesIDToDatabase(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := Open(sqlDB)
	require.NoError(t, err)
	defer conn.Close()

	dry := conn.db.Session(&gorm.Session{DryRun: true})

	u := newUser(models.GenerateUser(1))
	query := dry.Omit(clause.Associations).Create(&u).Statement.SQL.String()
	assert.Contains(t, query, `INSERT INTO "users"`)
	assert.NotContains(t, query, `("id"`)
	assert.Contains(t, query, `RETURNING "id"`)
	assert.Equal(t, uuid.Nil, u.ID)

	c := Comment{PostID: uuid.New(), UserID: uuid.New(), Content: "c"}
	query = dry.Create(&c).Statement.SQL.String()
	assert.Contains(t, query, `INSERT INTO "comments"`)
	assert.Contains(t, query, `RETURNING "id"`)
}

func TestNewUserLeavesTimestampsToDatabase(t *testing.T) {
	u := newUser(models.GenerateUser(3))
	assert.Nil(t, u.CreatedAt)
	assert.Nil(t, u.UpdatedAt)
	assert.Equal(t, "bench_user_3", u.Username)
	require.NotNil(t, u.Age)
	assert.Equal(t, int32(23), *u.Age)
}

func TestUserPostCommentRowModel(t *testing.T) {
	now := time.Now()
	row := userPostCommentRow{
		UserID:         uuid.New(),
		Username:       "seed_user_1",
		PostID:         uuid.New(),
		Title:          "title",
		PostContent:    "post body",
		CommentID:      uuid.New(),
		CommentUserID:  uuid.New(),
		CommentContent: "comment body",
		PostCreatedAt:  &now,
	}

	m := row.model()
	assert.Equal(t, row.UserID, m.User.ID)
	assert.Equal(t, row.UserID, m.Post.UserID)
	assert.Equal(t, row.PostID, m.Comment.PostID)
	assert.Equal(t, row.CommentUserID, m.Comment.UserID)
	assert.Equal(t, "post body", m.Post.Content)
	assert.Equal(t, "comment body", m.Comment.Content)
	assert.Equal(t, &now, m.Post.CreatedAt)
}
