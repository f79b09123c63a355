package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/movem/internal/stats"
	"github.com/example/movem/internal/store"
)

func TestSweeperRepairsDriftedAggregate(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	st := stats.NewInMemoryStatStore()
	ctx := context.Background()

	r := 8
	if _, err := cs.Create(ctx, store.Comment{UserID: 1, MovieID: 5, Body: "drifted", Rating: &r}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Stored aggregate disagrees with the comments table.
	if err := st.Overwrite(ctx, 5, 3, 2.5); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	s := &Sweeper{
		Log:      zap.NewNop(),
		Repairer: &stats.Repairer{Stats: st, Source: cs, Log: zap.NewNop()},
		Interval: 10 * time.Millisecond,
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = s.Run(runCtx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		agg, err := st.Get(ctx, 5)
		if err == nil && agg.VoteCount == 1 && agg.VoteAvg == 8 {
			break
		}
		select {
		case <-deadline:
			cancel()
			t.Fatalf("sweep never converged, last aggregate %+v err %v", agg, err)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestSweeperDisabledWithZeroInterval(t *testing.T) {
	s := &Sweeper{Log: zap.NewNop(), Interval: 0}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
