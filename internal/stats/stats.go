// Package stats maintains the per-movie rating aggregates kept in the
// statistic table: a running vote count and running average updated
// incrementally as rated comments are created, edited and deleted.
package stats

import (
	"context"
	"errors"
)

// Rating bounds for a comment rating.
const (
	RatingMin = 0
	RatingMax = 10
)

// Aggregate is the maintained (vote_count, vote_avg) pair for one movie.
type Aggregate struct {
	MovieID   int64   `json:"movie_id"`
	VoteCount int64   `json:"vote_count"`
	VoteAvg   float64 `json:"vote_avg"`
}

// ErrNoAggregate indicates a reversal or replacement was requested against a
// missing aggregate row or one already at zero votes. This is a consistency
// violation (a prior delta went missing), not a transient fault, and must be
// surfaced rather than clamped away.
var ErrNoAggregate = errors.New("stats: aggregate row missing or has no votes")

// StatStore is the durable, keyed store of per-movie aggregates. Each Apply*
// method executes as a single atomic read-modify-write against one row: the
// store computes the new count/avg from its own current row state in the same
// operation that writes it, serialized per movie_id. Two concurrent updates
// for the same movie must both be reflected, never lost.
type StatStore interface {
	// Get returns the aggregate for a movie, ErrNoAggregate when no row exists.
	Get(ctx context.Context, movieID int64) (Aggregate, error)

	// ApplyCreate adds one rating: count'=count+1, avg'=(avg*count+r)/count'.
	// A missing row is created as {0,0} immediately before the transform, so
	// the formula degenerates to count'=1, avg'=r.
	ApplyCreate(ctx context.Context, movieID int64, rating int) error

	// ApplyReplace swaps one rating for another without changing the count:
	// avg'=(avg*count-old+new)/count, using the count at replacement time.
	// Returns ErrNoAggregate when the row is missing or count is zero.
	ApplyReplace(ctx context.Context, movieID int64, oldRating, newRating int) error

	// ApplyDelete backs one rating out: count'=count-1 and
	// avg'=(avg*count-r)/count' when count'>0, else avg'=0.
	// Returns ErrNoAggregate when the row is missing or count is zero;
	// the count never goes negative.
	ApplyDelete(ctx context.Context, movieID int64, rating int) error

	// Overwrite sets exact values for a movie, creating the row if needed.
	// Used by the repair path only.
	Overwrite(ctx context.Context, movieID int64, count int64, avg float64) error

	// ListMovieIDs returns every movie that has an aggregate row.
	// Used by the reconciliation sweep.
	ListMovieIDs(ctx context.Context) ([]int64, error)
}

// ValidRating reports whether r is inside the rating domain.
func ValidRating(r int) bool {
	return r >= RatingMin && r <= RatingMax
}
