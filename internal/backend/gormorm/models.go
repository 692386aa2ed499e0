package gormorm

import (
	"time"

	"github.com/google/uuid"

	"github.com/willfong/dbbench/internal/models"
)

// Ids and timestamps are owned by the database: automatic time tracking is
// disabled and zero values are left out of INSERTs so the column defaults
// apply and come back through RETURNING.

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName string     `gorm:"type:varchar(255);not null"`
	LastName  string     `gorm:"type:varchar(255);not null"`
	Age       *int32     `gorm:"type:integer"`
	CreatedAt *time.Time `gorm:"default:now();autoCreateTime:false"`
	UpdatedAt *time.Time `gorm:"default:now();autoUpdateTime:false"`
}

func (User) TableName() string { return "users" }

type Post struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title     string     `gorm:"type:varchar(500);not null"`
	Content   string     `gorm:"type:text;not null"`
	Status    string     `gorm:"type:varchar(50);not null"`
	ViewCount int32      `gorm:"not null"`
	CreatedAt *time.Time `gorm:"default:now();autoCreateTime:false"`
	UpdatedAt *time.Time `gorm:"default:now();autoUpdateTime:false"`

	User User `gorm:"foreignKey:UserID"`
}

func (Post) TableName() string { return "posts" }

type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PostID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Content   string     `gorm:"type:text;not null"`
	CreatedAt *time.Time `gorm:"default:now();autoCreateTime:false"`
}

func (Comment) TableName() string { return "comments" }

func newUser(u models.NewUser) User {
	return User{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
	}
}

func newPost(p models.NewPost) Post {
	return Post{
		UserID:  p.UserID,
		Title:   p.Title,
		Content: p.Content,
		Status:  p.Status,
	}
}

func (u User) model() models.User {
	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (p Post) model() models.Post {
	return models.Post{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		Content:   p.Content,
		Status:    p.Status,
		ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func usersToModels(rows []User) []models.User {
	out := make([]models.User, len(rows))
	for i, u := range rows {
		out[i] = u.model()
	}
	return out
}

func postsToModels(rows []Post) []models.Post {
	out := make([]models.Post, len(rows))
	for i, p := range rows {
		out[i] = p.model()
	}
	return out
}

// userPostCommentRow is the flat scan target of the three-table join
type userPostCommentRow struct {
	UserID           uuid.UUID
	Username         string
	Email            string
	FirstName        string
	LastName         string
	Age              *int32
	UserCreatedAt    *time.Time
	UserUpdatedAt    *time.Time
	PostID           uuid.UUID
	Title            string
	PostContent      string
	Status           string
	ViewCount        int32
	PostCreatedAt    *time.Time
	PostUpdatedAt    *time.Time
	CommentID        uuid.UUID
	CommentUserID    uuid.UUID
	CommentContent   string
	CommentCreatedAt *time.Time
}

func (r userPostCommentRow) model() models.UserPostComment {
	return models.UserPostComment{
		User: models.User{
			ID:        r.UserID,
			Username:  r.Username,
			Email:     r.Email,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Age:       r.Age,
			CreatedAt: r.UserCreatedAt,
			UpdatedAt: r.UserUpdatedAt,
		},
		Post: models.Post{
			ID:        r.PostID,
			UserID:    r.UserID,
			Title:     r.Title,
			Content:   r.PostContent,
			Status:    r.Status,
			ViewCount: r.ViewCount,
			CreatedAt: r.PostCreatedAt,
			UpdatedAt: r.PostUpdatedAt,
		},
		Comment: models.Comment{
			ID:        r.CommentID,
			PostID:    r.PostID,
			UserID:    r.CommentUserID,
			Content:   r.CommentContent,
			CreatedAt: r.CommentCreatedAt,
		},
	}
}

type postCountRow struct {
	UserID    uuid.UUID
	PostCount int64
}
