package store

import (
	"context"
	"time"
)

// Comment represents a single comment row. Rating is optional: a comment
// without one never contributes to the movie's aggregate.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Body      string    `json:"body"`
	Rating    *int      `json:"rating,omitempty"`
	Likes     int64     `json:"comment_likes"`
	Dislikes  int64     `json:"comment_dislikes"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentPatch describes a partial comment update. Nil Body leaves the body
// unchanged. RatingSet distinguishes "clear the rating" (RatingSet with nil
// Rating) from "leave the rating alone" (RatingSet false).
type CommentPatch struct {
	Body      *string
	Rating    *int
	RatingSet bool
}

// MovieCommentsFilter narrows ListByMovie.
type MovieCommentsFilter struct {
	RatedOnly bool
	// SortByRating is "asc" or "desc"; empty means newest-first.
	SortByRating string
}

// CommentStore defines the contract for comment persistence. Update and
// Delete return the prior row state so the caller can derive the aggregate
// delta for the rating engine.
type CommentStore interface {
	Create(ctx context.Context, c Comment) (Comment, error)
	GetByID(ctx context.Context, id int64) (Comment, error)
	List(ctx context.Context) ([]Comment, error)
	ListByMovie(ctx context.Context, movieID int64, f MovieCommentsFilter) ([]Comment, error)
	Update(ctx context.Context, id int64, patch CommentPatch) (old Comment, updated Comment, err error)
	Delete(ctx context.Context, id int64) (Comment, error)
	Like(ctx context.Context, id int64) (Comment, error)
	Dislike(ctx context.Context, id int64) (Comment, error)

	// RatedScores returns the ratings of every rated comment for a movie.
	// Authoritative input for aggregate repair.
	RatedScores(ctx context.Context, movieID int64) ([]int, error)
}
