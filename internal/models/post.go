package models

import (
	"time"

	"github.com/google/uuid"
)

// Post statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post is a stored posts row
type Post struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Title     string     `db:"title" json:"title"`
	Content   string     `db:"content" json:"content"`
	Status    string     `db:"status" json:"status"`
	ViewCount int32      `db:"view_count" json:"view_count"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// NewPost is the input for inserting a post. UserID may be uuid.Nil when the
// post is pre-generated before its author exists; InsertUserWithPosts
// overwrites it with the new user's id.
type NewPost struct {
	UserID  uuid.UUID `db:"user_id" json:"user_id"`
	Title   string    `db:"title" json:"title"`
	Content string    `db:"content" json:"content"`
	Status  string    `db:"status" json:"status"`
}

// PostColumns is the column list every backend selects for a post, in scan order
var PostColumns = []string{"id", "user_id", "title", "content", "status", "view_count", "created_at", "updated_at"}

// Comment is a stored comments row
type Comment struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PostID    uuid.UUID  `db:"post_id" json:"post_id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Content   string     `db:"content" json:"content"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// NewComment is the input for inserting a comment
type NewComment struct {
	PostID  uuid.UUID `db:"post_id" json:"post_id"`
	UserID  uuid.UUID `db:"user_id" json:"user_id"`
	Content string    `db:"content" json:"content"`
}

// CommentColumns is the column list every backend selects for a comment, in scan order
var CommentColumns = []string{"id", "post_id", "user_id", "content", "created_at"}

// PostWithUser is one row of the posts ⋈ users join
type PostWithUser struct {
	Post Post `json:"post"`
	User User `json:"user"`
}

// UserPostComment is one row of the users ⋈ posts ⋈ comments join
type UserPostComment struct {
	User    User    `json:"user"`
	Post    Post    `json:"post"`
	Comment Comment `json:"comment"`
}
