package stats

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Engine translates comment-rating mutations into aggregate deltas and
// applies them to the StatStore. It is invoked by the comment-mutation path
// only after the comment write has durably committed; it never reads or
// writes comment rows itself.
//
// The comment write is the primary fact. When a delta cannot be applied the
// engine logs the discrepancy, hands it to the drift reporter so a repair can
// be scheduled, and returns the error. Callers must not fail the user-facing
// operation on it. Deltas are not idempotent: exactly one engine call per
// comment mutation, or the aggregate drifts.
type Engine struct {
	store    StatStore
	log      *zap.Logger
	reporter DriftReporter
}

// NewEngine builds an engine. reporter may be nil; drift is then only logged.
func NewEngine(store StatStore, log *zap.Logger, reporter DriftReporter) *Engine {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Engine{store: store, log: log, reporter: reporter}
}

// OnCreate applies the delta for a newly created comment.
// A nil rating leaves the aggregate untouched (and uncreated).
func (e *Engine) OnCreate(ctx context.Context, movieID, commentID int64, newRating *int) error {
	if newRating == nil {
		return nil
	}
	if err := e.store.ApplyCreate(ctx, movieID, *newRating); err != nil {
		return e.drift(ctx, "create", movieID, commentID, err)
	}
	return nil
}

// OnUpdate applies the delta for an edited comment, given the rating the
// comment held before the edit and the one it holds after.
func (e *Engine) OnUpdate(ctx context.Context, movieID, commentID int64, oldRating, newRating *int) error {
	switch {
	case oldRating == nil && newRating == nil:
		return nil
	case oldRating == nil:
		// Rating added where none existed.
		if err := e.store.ApplyCreate(ctx, movieID, *newRating); err != nil {
			return e.drift(ctx, "update", movieID, commentID, err)
		}
	case newRating == nil:
		// Rating cleared: back the old one out.
		if err := e.store.ApplyDelete(ctx, movieID, *oldRating); err != nil {
			return e.drift(ctx, "update", movieID, commentID, err)
		}
	case *oldRating == *newRating:
		return nil
	default:
		if err := e.store.ApplyReplace(ctx, movieID, *oldRating, *newRating); err != nil {
			return e.drift(ctx, "update", movieID, commentID, err)
		}
	}
	return nil
}

// OnDelete applies the reversal for a deleted comment, given the rating the
// deleted comment held. A nil rating is a no-op.
func (e *Engine) OnDelete(ctx context.Context, movieID, commentID int64, rating *int) error {
	if rating == nil {
		return nil
	}
	if err := e.store.ApplyDelete(ctx, movieID, *rating); err != nil {
		return e.drift(ctx, "delete", movieID, commentID, err)
	}
	return nil
}

func (e *Engine) drift(ctx context.Context, op string, movieID, commentID int64, cause error) error {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int64("movie_id", movieID),
		zap.Int64("comment_id", commentID),
		zap.Error(cause),
	}
	if errors.Is(cause, ErrNoAggregate) {
		e.log.Error("aggregate consistency violation, repair required", fields...)
	} else {
		e.log.Warn("comment committed but aggregate update failed", fields...)
	}

	ev := NewDriftEvent(op, movieID, commentID, cause)
	if err := e.reporter.Report(ctx, ev); err != nil {
		e.log.Warn("drift event not reported", zap.Int64("movie_id", movieID), zap.Error(err))
	}
	return fmt.Errorf("stats: %s delta for movie %d: %w", op, movieID, cause)
}
