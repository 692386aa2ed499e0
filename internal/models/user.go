package models

import (
	"time"

	"github.com/google/uuid"
)

// Naming patterns for rows the harness owns
const (
	// SyntheticPrefix marks users created by benchmark iterations
	SyntheticPrefix = "bench_user_"

	// SyntheticPattern is the LIKE pattern Cleanup deletes by
	SyntheticPattern = SyntheticPrefix + "%"

	// SeedPrefix marks users created by the seed phase; Cleanup never touches them
	SeedPrefix = "seed_user_"

	// SeedPattern is the LIKE pattern `seed --drop` deletes by
	SeedPattern = SeedPrefix + "%"
)

// User is a stored users row
type User struct {
	ID        uuid.UUID  `db:"id" json:"id" yaml:"id"`
	Username  string     `db:"username" json:"username" yaml:"username"`
	Email     string     `db:"email" json:"email" yaml:"email"`
	FirstName string     `db:"first_name" json:"first_name" yaml:"first_name"`
	LastName  string     `db:"last_name" json:"last_name" yaml:"last_name"`
	Age       *int32     `db:"age" json:"age,omitempty" yaml:"age,omitempty"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// NewUser is the input for inserting a user. The id and timestamps are
// assigned by the database.
type NewUser struct {
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Age       *int32 `db:"age" json:"age,omitempty"`
}

// UserColumns is the column list every backend selects for a user, in scan order
var UserColumns = []string{"id", "username", "email", "first_name", "last_name", "age", "created_at", "updated_at"}

// PostCount is one row of the posts-per-user aggregate
type PostCount struct {
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	Count  int64     `db:"post_count" json:"post_count"`
}
