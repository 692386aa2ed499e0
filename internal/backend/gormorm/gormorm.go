// Package gormorm benchmarks the GORM ORM: model structs, query chains and
// transaction closures on a database/sql pool.
package gormorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/config"
	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/models"
)

// Name is the registry name of this backend
const Name = "gorm"

// Backend connects through GORM
type Backend struct {
	db config.DatabaseConfig
}

// New returns the GORM backend
func New(db config.DatabaseConfig) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Info() backend.Info {
	return backend.Info{
		Name:        Name,
		Description: "ORM with model structs and association joins",
		Library:     "gorm.io/gorm",
		Kind:        backend.KindAsync,
		Atomic:      true,
	}
}

func (b *Backend) Connect(ctx context.Context, opts backend.ConnectOptions) (backend.Conn, error) {
	cfg := b.db
	cfg.DSN = opts.DSN
	if opts.ConnectTimeout > 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := database.OpenPool(ctx, cfg, max(opts.PoolSize, 1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	conn, err := Open(pool.DB())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return conn, nil
}

// Conn runs the benchmark operations through GORM
type Conn struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// Open wraps an existing database/sql handle. Close closes sqlDB.
func Open(sqlDB *sql.DB) (*Conn, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return &Conn{db: db, sqlDB: sqlDB}, nil
}

func (c *Conn) Close() error {
	return c.sqlDB.Close()
}

func (c *Conn) InsertUser(ctx context.Context, u models.NewUser) (uuid.UUID, error) {
	row := newUser(u)
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	return row.ID, nil
}

func (c *Conn) InsertUsersBatch(ctx context.Context, users []models.NewUser) ([]uuid.UUID, error) {
	return backend.BatchWithSingleInserts(ctx, users, c.InsertUser)
}

func (c *Conn) SelectUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var row User
	err := c.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	u := row.model()
	return &u, nil
}

func (c *Conn) SelectUsersLimit(ctx context.Context, limit int) ([]models.User, error) {
	var rows []User
	if err := c.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return usersToModels(rows), nil
}

func (c *Conn) SelectUsersFiltered(ctx context.Context, minAge, maxAge int32, limit int) ([]models.User, error) {
	var rows []User
	err := c.db.WithContext(ctx).
		Where("age >= ? AND age <= ?", minAge, maxAge).
		Order("age").Order("username").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select users filtered: %w", err)
	}
	return usersToModels(rows), nil
}

func (c *Conn) SearchUsersByName(ctx context.Context, pattern string, limit int) ([]models.User, error) {
	like := "%" + pattern + "%"
	var rows []User
	err := c.db.WithContext(ctx).
		Where("first_name ILIKE ? OR last_name ILIKE ?", like, like).
		Order("username").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return usersToModels(rows), nil
}

func (c *Conn) UpdateUser(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error) {
	res := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
		"updated_at": gorm.Expr("NOW()"),
	})
	if res.Error != nil {
		return false, fmt.Errorf("update user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *Conn) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	res := c.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *Conn) InsertPost(ctx context.Context, p models.NewPost) (uuid.UUID, error) {
	row := newPost(p)
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return uuid.Nil, fmt.Errorf("insert post: %w", err)
	}
	return row.ID, nil
}

func (c *Conn) SelectPostsWithUser(ctx context.Context, limit int) ([]models.PostWithUser, error) {
	var rows []Post
	err := c.db.WithContext(ctx).
		InnerJoins("User").
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select posts with user: %w", err)
	}
	result := make([]models.PostWithUser, len(rows))
	for i, p := range rows {
		result[i] = models.PostWithUser{Post: p.model(), User: p.User.model()}
	}
	return result, nil
}

func (c *Conn) SelectUsersPostsComments(ctx context.Context, limit int) ([]models.UserPostComment, error) {
	var rows []userPostCommentRow
	err := c.db.WithContext(ctx).
		Table("users u").
		Select(`u.id AS user_id, u.username, u.email, u.first_name, u.last_name, u.age,
			u.created_at AS user_created_at, u.updated_at AS user_updated_at,
			p.id AS post_id, p.title, p.content AS post_content, p.status, p.view_count,
			p.created_at AS post_created_at, p.updated_at AS post_updated_at,
			c.id AS comment_id, c.user_id AS comment_user_id, c.content AS comment_content,
			c.created_at AS comment_created_at`).
		Joins("JOIN posts p ON p.user_id = u.id").
		Joins("JOIN comments c ON c.post_id = p.id").
		Order("u.created_at DESC").Order("p.created_at DESC").Order("c.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select users posts comments: %w", err)
	}
	result := make([]models.UserPostComment, len(rows))
	for i, r := range rows {
		result[i] = r.model()
	}
	return result, nil
}

func (c *Conn) CountPostsPerUser(ctx context.Context) ([]models.PostCount, error) {
	var rows []postCountRow
	err := c.db.WithContext(ctx).
		Table("users u").
		Select("u.id AS user_id, COUNT(p.id) AS post_count").
		Joins("LEFT JOIN posts p ON p.user_id = u.id").
		Group("u.id").
		Order("post_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count posts per user: %w", err)
	}
	counts := make([]models.PostCount, len(rows))
	for i, r := range rows {
		counts[i] = models.PostCount{UserID: r.UserID, Count: r.PostCount}
	}
	return counts, nil
}

func (c *Conn) InsertUserWithPosts(ctx context.Context, u models.NewUser, posts []models.NewPost) (uuid.UUID, error) {
	user := newUser(u)
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		for _, p := range backend.AssignAuthor(posts, user.ID) {
			row := newPost(p)
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return fmt.Errorf("insert post: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func (c *Conn) Cleanup(ctx context.Context) (int64, error) {
	res := c.db.WithContext(ctx).Where("username LIKE ?", models.SyntheticPattern).Delete(&User{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (c *Conn) InsertComment(ctx context.Context, cm models.NewComment) (uuid.UUID, error) {
	row := Comment{PostID: cm.PostID, UserID: cm.UserID, Content: cm.Content}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return uuid.Nil, fmt.Errorf("insert comment: %w", err)
	}
	return row.ID, nil
}

func (c *Conn) SelectPostsByStatus(ctx context.Context, status string, limit int) ([]models.Post, error) {
	var rows []Post
	err := c.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select posts by status: %w", err)
	}
	return postsToModels(rows), nil
}

func (c *Conn) IncrementViewCount(ctx context.Context, postID uuid.UUID) (bool, error) {
	res := c.db.WithContext(ctx).Model(&Post{}).Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return false, fmt.Errorf("increment view count: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
