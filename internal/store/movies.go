package store

import (
	"context"
	"time"
)

// Movie is the catalog representation of a title.
type Movie struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Overview    string     `json:"overview"`
	Tagline     string     `json:"tagline"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	PosterFile  string     `json:"poster_file"`
	BannerFile  string     `json:"banner_file"`
	PlatformID  *int64     `json:"platform_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MoviePatch describes a partial movie update; nil fields are unchanged.
type MoviePatch struct {
	Title       *string
	Overview    *string
	Tagline     *string
	ReleaseDate *time.Time
	PosterFile  *string
	BannerFile  *string
	PlatformID  *int64
}

type MovieStore interface {
	List(ctx context.Context) ([]Movie, error)
	GetByID(ctx context.Context, id int64) (Movie, error)
	Create(ctx context.Context, m Movie) (Movie, error)
	Update(ctx context.Context, id int64, patch MoviePatch) (Movie, error)
	Delete(ctx context.Context, id int64) (Movie, error)
}
