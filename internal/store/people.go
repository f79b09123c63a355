package store

import (
	"context"
	"time"
)

// Person is an actor or other cast member.
type Person struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Biography string     `json:"biography,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	PhotoURL  string     `json:"photo_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CastMember links a person to a movie with a role.
type CastMember struct {
	Person        Person `json:"person"`
	MovieID       int64  `json:"movie_id"`
	Role          string `json:"role"`
	CharacterName string `json:"character_name,omitempty"`
}

type PersonStore interface {
	List(ctx context.Context) ([]Person, error)
	GetByID(ctx context.Context, id int64) (Person, error)
	CastForMovie(ctx context.Context, movieID int64) ([]CastMember, error)
}
