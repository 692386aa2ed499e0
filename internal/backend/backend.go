// Package backend defines the operation contract every benchmarked
// PostgreSQL access approach implements.
package backend

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/willfong/dbbench/internal/models"
)

// Kind describes how a backend drives the database
type Kind string

const (
	// KindAsync backends are driven with one goroutine per concurrent task
	KindAsync Kind = "async"

	// KindSync backends are driven by a fixed set of worker goroutines
	KindSync Kind = "sync"
)

// Info describes a backend for reports and the info command
type Info struct {
	Name        string
	Description string
	Library     string
	Kind        Kind

	// Atomic is false when InsertUserWithPosts runs outside a transaction
	Atomic bool
}

// ConnectOptions configures a backend connection
type ConnectOptions struct {
	DSN            string
	PoolSize       int
	ConnectTimeout time.Duration
}

// Backend is one benchmarked access approach
type Backend interface {
	Name() string
	Info() Info

	// Connect opens a connection (or pool) and verifies it with a ping.
	Connect(ctx context.Context, opts ConnectOptions) (Conn, error)
}

// Conn is an open connection to the benchmark database. Every backend
// implements the same semantics; only the access approach differs.
//
// Single-row lookups return (nil, nil) when the row does not exist. Update
// and delete report false when no row matched.
type Conn interface {
	InsertUser(ctx context.Context, u models.NewUser) (uuid.UUID, error)

	// InsertUsersBatch inserts the users one by one and returns their ids in
	// input order. A failure part-way leaves the earlier rows committed.
	InsertUsersBatch(ctx context.Context, users []models.NewUser) ([]uuid.UUID, error)

	SelectUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// SelectUsersLimit returns the newest users first
	SelectUsersLimit(ctx context.Context, limit int) ([]models.User, error)

	// SelectUsersFiltered returns users with minAge <= age <= maxAge ordered by
	// age then username
	SelectUsersFiltered(ctx context.Context, minAge, maxAge int32, limit int) ([]models.User, error)

	// UpdateUser sets the names and refreshes updated_at on the server
	UpdateUser(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error)

	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)

	InsertPost(ctx context.Context, p models.NewPost) (uuid.UUID, error)

	// SelectPostsWithUser returns posts joined with their author, newest post first
	SelectPostsWithUser(ctx context.Context, limit int) ([]models.PostWithUser, error)

	// SelectUsersPostsComments returns user/post/comment triples ordered by
	// user, post and comment creation time, newest first
	SelectUsersPostsComments(ctx context.Context, limit int) ([]models.UserPostComment, error)

	// CountPostsPerUser returns one row per user, including users without
	// posts, ordered by count descending
	CountPostsPerUser(ctx context.Context) ([]models.PostCount, error)

	// InsertUserWithPosts inserts a user and its posts. The posts' UserID is
	// replaced with the new user's id.
	InsertUserWithPosts(ctx context.Context, u models.NewUser, posts []models.NewPost) (uuid.UUID, error)

	// Cleanup deletes every synthetic user (and their posts and comments
	// through the foreign-key cascade). It is idempotent.
	Cleanup(ctx context.Context) (int64, error)

	InsertComment(ctx context.Context, c models.NewComment) (uuid.UUID, error)
	SelectPostsByStatus(ctx context.Context, status string, limit int) ([]models.Post, error)
	IncrementViewCount(ctx context.Context, postID uuid.UUID) (bool, error)

	// SearchUsersByName matches pattern case-insensitively against first and
	// last name, ordered by username
	SearchUsersByName(ctx context.Context, pattern string, limit int) ([]models.User, error)

	Close() error
}

// BatchWithSingleInserts implements InsertUsersBatch on top of a single-row
// insert function.
func BatchWithSingleInserts(ctx context.Context, users []models.NewUser, insert func(context.Context, models.NewUser) (uuid.UUID, error)) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(users))
	for i, u := range users {
		id, err := insert(ctx, u)
		if err != nil {
			return ids, &BatchError{Index: i, Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AssignAuthor returns a copy of posts with UserID set to userID
func AssignAuthor(posts []models.NewPost, userID uuid.UUID) []models.NewPost {
	out := make([]models.NewPost, len(posts))
	for i, p := range posts {
		p.UserID = userID
		out[i] = p
	}
	return out
}
