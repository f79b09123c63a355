package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectDrift carries drift events for the repair consumer.
const SubjectDrift = "stats.drift"

// DriftEvent records one aggregate delta that could not be applied after its
// comment mutation had already committed.
type DriftEvent struct {
	EventID    string    `json:"event_id"`
	Op         string    `json:"op"` // create, update, delete
	MovieID    int64     `json:"movie_id"`
	CommentID  int64     `json:"comment_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewDriftEvent(op string, movieID, commentID int64, cause error) DriftEvent {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return DriftEvent{
		EventID:    uuid.NewString(),
		Op:         op,
		MovieID:    movieID,
		CommentID:  commentID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

// DriftReporter is the failure channel for secondary aggregate updates.
type DriftReporter interface {
	Report(ctx context.Context, ev DriftEvent) error
}

// NopReporter drops drift events. Used when NATS is not configured.
type NopReporter struct{}

func (NopReporter) Report(context.Context, DriftEvent) error { return nil }

// NATSReporter publishes drift events to JetStream so the repair worker can
// recompute the affected aggregates.
type NATSReporter struct {
	js nats.JetStreamContext
}

func NewNATSReporter(nc *nats.Conn) (*NATSReporter, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &NATSReporter{js: js}, nil
}

func (r *NATSReporter) Report(_ context.Context, ev DriftEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = r.js.Publish(SubjectDrift, payload, nats.MsgId(ev.EventID))
	return err
}
