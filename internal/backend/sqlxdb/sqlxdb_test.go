package sqlxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/models"
)

var userCols = []string{"id", "username", "email", "first_name", "last_name", "age", "created_at", "updated_at"}

func newMockConn(t *testing.T) (*Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectPrepare("INSERT INTO users")
	mock.ExpectPrepare("INSERT INTO posts")
	mock.ExpectPrepare("INSERT INTO comments")

	conn, err := NewConn(context.Background(), sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)
	return conn, mock
}

func TestInsertUser(t *testing.T) {
	conn, mock := newMockConn(t)
	id := uuid.New()
	u := models.GenerateUser(1)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.Username, u.Email, u.FirstName, u.LastName, int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))

	got, err := conn.InsertUser(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUserConstraintViolation(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := conn.InsertUser(context.Background(), models.GenerateUser(1))
	require.Error(t, err)
	assert.Equal(t, backend.ErrorConstraint, backend.Classify(err))
}

func TestSelectUserByIDNotFound(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userCols))

	u, err := conn.SelectUserByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSelectUsersFiltered(t *testing.T) {
	conn, mock := newMockConn(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE age >= \$1 AND age <= \$2 ORDER BY age, username LIMIT \$3`).
		WithArgs(int64(25), int64(55), int64(10)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(uuid.New().String(), "seed_user_1", "a@example.com", "A", "B", int64(25), now, now).
			AddRow(uuid.New().String(), "seed_user_2", "b@example.com", "C", "D", nil, now, nil))

	users, err := conn.SelectUsersFiltered(context.Background(), 25, 55, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.NotNil(t, users[0].Age)
	assert.Equal(t, int32(25), *users[0].Age)
	assert.Nil(t, users[1].Age)
	assert.Nil(t, users[1].UpdatedAt)
}

func TestUpdateUserNoMatch(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectExec(`UPDATE users SET first_name = \$2, last_name = \$3, updated_at = NOW\(\)`).
		WithArgs(sqlmock.AnyArg(), models.UpdatedFirstName, models.UpdatedLastName).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := conn.UpdateUser(context.Background(), uuid.New(), models.UpdatedFirstName, models.UpdatedLastName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectPostsWithUser(t *testing.T) {
	conn, mock := newMockConn(t)
	postID, userID := uuid.New(), uuid.New()
	now := time.Now()

	cols := []string{
		"post.id", "post.user_id", "post.title", "post.content", "post.status", "post.view_count",
		"post.created_at", "post.updated_at",
		"author.id", "author.username", "author.email", "author.first_name", "author.last_name",
		"author.age", "author.created_at", "author.updated_at",
	}
	mock.ExpectQuery(`FROM posts p\s+JOIN users u`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			postID.String(), userID.String(), "t", "c", models.StatusPublished, int64(3), now, now,
			userID.String(), "seed_user_1", "e", "f", "l", int64(30), now, now,
		))

	rows, err := conn.SelectPostsWithUser(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, postID, rows[0].Post.ID)
	assert.Equal(t, userID, rows[0].User.ID)
	assert.Equal(t, rows[0].Post.UserID, rows[0].User.ID)
	assert.Equal(t, int32(3), rows[0].Post.ViewCount)
}

func TestCountPostsPerUser(t *testing.T) {
	conn, mock := newMockConn(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery("LEFT JOIN posts p ON p.user_id = u.id").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "post_count"}).
			AddRow(a.String(), int64(3)).
			AddRow(b.String(), int64(0)))

	counts, err := conn.CountPostsPerUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.PostCount{{UserID: a, Count: 3}, {UserID: b, Count: 0}}, counts)
}

func TestInsertUserWithPostsCommits(t *testing.T) {
	conn, mock := newMockConn(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("INSERT INTO posts").
			WithArgs(id.String(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	}
	mock.ExpectCommit()

	got, err := conn.InsertUserWithPosts(context.Background(), models.GenerateUser(5), models.GeneratePosts(uuid.Nil, 2))
	require.NoError(t, err)
	assert.Equal(t, id, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUserWithPostsRollsBack(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery("INSERT INTO posts").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := conn.InsertUserWithPosts(context.Background(), models.GenerateUser(5), models.GeneratePosts(uuid.Nil, 3))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanup(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectExec(`DELETE FROM users WHERE username LIKE \$1`).
		WithArgs(models.SyntheticPattern).
		WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := conn.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}
