// Package worker runs the background reconciliation side of the rating
// aggregates: a JetStream consumer that repairs movies named in drift
// events, and an optional periodic sweep over every aggregate row.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/movem/internal/stats"
)

const (
	streamName  = "STATS_EVENTS"
	durableName = "stats_repair"
)

// RepairConsumer pulls drift events and rebuilds the affected aggregates.
type RepairConsumer struct {
	Log       *zap.Logger
	JS        nats.JetStreamContext
	Repairer  *stats.Repairer
	BatchSize int
	MaxWait   time.Duration
}

func NewRepairConsumer(log *zap.Logger, nc *nats.Conn, rep *stats.Repairer) (*RepairConsumer, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &RepairConsumer{
		Log:       log,
		JS:        js,
		Repairer:  rep,
		BatchSize: 50,
		MaxWait:   2 * time.Second,
	}, nil
}

// EnsureStream creates or updates the stream carrying drift events.
func (c *RepairConsumer) EnsureStream(ctx context.Context) error {
	info, err := c.JS.StreamInfo(streamName)
	if err == nil {
		for _, s := range info.Config.Subjects {
			if s == "stats.>" {
				return nil
			}
		}
		cfg := info.Config
		cfg.Subjects = []string{"stats.>"}
		_, err := c.JS.UpdateStream(&cfg)
		return err
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = c.JS.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"stats.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

// Run blocks fetching drift events until the context is cancelled. An event
// is acked once its movie has been recomputed; failed repairs are naked so
// JetStream redelivers them.
func (c *RepairConsumer) Run(ctx context.Context) error {
	if err := c.EnsureStream(ctx); err != nil {
		return err
	}

	sub, err := c.JS.PullSubscribe(stats.SubjectDrift, durableName)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := sub.Fetch(c.BatchSize, nats.MaxWait(c.MaxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			c.Log.Warn("drift fetch failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, m := range msgs {
			c.handle(ctx, m)
		}
	}
}

func (c *RepairConsumer) handle(ctx context.Context, m *nats.Msg) {
	var ev stats.DriftEvent
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		c.Log.Warn("invalid drift event", zap.Error(err))
		// Malformed payloads will never parse; drop them.
		if err := m.Ack(); err != nil {
			c.Log.Warn("ack failed", zap.Error(err))
		}
		return
	}

	if _, err := c.Repairer.Repair(ctx, ev.MovieID); err != nil {
		c.Log.Warn("drift repair failed",
			zap.String("event_id", ev.EventID),
			zap.Int64("movie_id", ev.MovieID),
			zap.Error(err))
		if err := m.Nak(); err != nil {
			c.Log.Warn("nak failed", zap.Error(err))
		}
		return
	}

	c.Log.Info("drift event handled",
		zap.String("event_id", ev.EventID),
		zap.String("op", ev.Op),
		zap.Int64("movie_id", ev.MovieID),
		zap.Int64("comment_id", ev.CommentID))
	if err := m.Ack(); err != nil {
		c.Log.Warn("ack failed", zap.Error(err))
	}
}
