package stats

import (
	"context"

	"go.uber.org/zap"
)

// ScoreSource yields the authoritative set of rated-comment scores for a
// movie. Implemented by the comment store.
type ScoreSource interface {
	RatedScores(ctx context.Context, movieID int64) ([]int, error)
}

// Repairer recomputes an aggregate from the true set of rated comments and
// overwrites the stored row. This is the reconciliation mechanism the
// incremental deltas are an optimization over; it is never on the hot path.
type Repairer struct {
	Stats  StatStore
	Source ScoreSource
	Log    *zap.Logger
}

// Repair rebuilds the aggregate for one movie and returns the exact values
// written. A movie with no rated comments is reset to {0, 0}.
func (r *Repairer) Repair(ctx context.Context, movieID int64) (Aggregate, error) {
	scores, err := r.Source.RatedScores(ctx, movieID)
	if err != nil {
		return Aggregate{}, err
	}

	var sum int64
	for _, sc := range scores {
		sum += int64(sc)
	}
	agg := Aggregate{MovieID: movieID, VoteCount: int64(len(scores))}
	if agg.VoteCount > 0 {
		agg.VoteAvg = float64(sum) / float64(agg.VoteCount)
	}

	if err := r.Stats.Overwrite(ctx, movieID, agg.VoteCount, agg.VoteAvg); err != nil {
		return Aggregate{}, err
	}
	r.Log.Info("aggregate repaired",
		zap.Int64("movie_id", movieID),
		zap.Int64("vote_count", agg.VoteCount),
		zap.Float64("vote_avg", agg.VoteAvg))
	return agg, nil
}

// RepairAll rebuilds every movie that has an aggregate row. Used by the
// periodic reconciliation sweep.
func (r *Repairer) RepairAll(ctx context.Context) error {
	ids, err := r.Stats.ListMovieIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := r.Repair(ctx, id); err != nil {
			r.Log.Warn("sweep repair failed", zap.Int64("movie_id", id), zap.Error(err))
		}
	}
	return nil
}
