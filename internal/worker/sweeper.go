package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/movem/internal/stats"
)

// Sweeper periodically rebuilds every aggregate row from the rated comments.
// It catches drift that never produced an event, such as deltas lost while
// NATS was down.
type Sweeper struct {
	Log      *zap.Logger
	Repairer *stats.Repairer
	Interval time.Duration
}

// Run blocks running full sweeps until the context is cancelled. A zero
// interval disables the sweep.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Repairer.RepairAll(ctx); err != nil {
				s.Log.Warn("reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}
