package store

import (
	"context"
	"time"
)

// User is a catalog account. PasswordHash is bcrypt and never serialized.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	GameScore    int64      `json:"game_score"`
	CreatedAt    time.Time  `json:"created_at"`
}

type UserPatch struct {
	Username     *string
	Email        *string
	BirthDate    *time.Time
	PasswordHash *string
	Role         *string
	GameScore    *int64
}

type UserStore interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (User, error)
	Delete(ctx context.Context, id int64) (User, error)
}
