package stats

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func intp(v int) *int { return &v }

func newTestEngine(t *testing.T) (*Engine, *InMemoryStatStore) {
	t.Helper()
	st := NewInMemoryStatStore()
	return NewEngine(st, zap.NewNop(), nil), st
}

func seedRatings(t *testing.T, e *Engine, movieID int64, ratings ...int) {
	t.Helper()
	ctx := context.Background()
	for i, r := range ratings {
		if err := e.OnCreate(ctx, movieID, int64(i+1), intp(r)); err != nil {
			t.Fatalf("seed rating %d: %v", r, err)
		}
	}
}

func TestEngine_CreateAccumulates(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 8, 6, 10)

	agg, err := st.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if agg.VoteCount != 3 {
		t.Fatalf("expected count 3, got %d", agg.VoteCount)
	}
	if agg.VoteAvg != 8.0 {
		t.Fatalf("expected avg 8.0, got %g", agg.VoteAvg)
	}
}

func TestEngine_CreateFirstRating(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 7)

	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 1 || agg.VoteAvg != 7.0 {
		t.Fatalf("expected {1, 7.0}, got {%d, %g}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestEngine_CreateWithoutRating_NoRow(t *testing.T) {
	e, st := newTestEngine(t)
	if err := e.OnCreate(context.Background(), 1, 10, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := st.Get(context.Background(), 1); !errors.Is(err, ErrNoAggregate) {
		t.Fatalf("expected no aggregate row, got err=%v", err)
	}
}

func TestEngine_UpdateReplacementPreservesCount(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 8, 6, 10)

	// (8*3 - 6 + 9) / 3 = 9
	if err := e.OnUpdate(context.Background(), 1, 2, intp(6), intp(9)); err != nil {
		t.Fatalf("update: %v", err)
	}
	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 3 {
		t.Fatalf("expected count unchanged at 3, got %d", agg.VoteCount)
	}
	if agg.VoteAvg != 9.0 {
		t.Fatalf("expected avg 9.0, got %g", agg.VoteAvg)
	}
}

func TestEngine_UpdateAddsRating(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 8)

	if err := e.OnUpdate(context.Background(), 1, 2, nil, intp(6)); err != nil {
		t.Fatalf("update: %v", err)
	}
	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 2 || agg.VoteAvg != 7.0 {
		t.Fatalf("expected {2, 7.0}, got {%d, %g}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestEngine_UpdateClearsRating(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 8, 6)

	if err := e.OnUpdate(context.Background(), 1, 2, intp(6), nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 1 || agg.VoteAvg != 8.0 {
		t.Fatalf("expected {1, 8.0}, got {%d, %g}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestEngine_UpdateSameRating_Noop(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 8, 6)
	before, _ := st.Get(context.Background(), 1)

	if err := e.OnUpdate(context.Background(), 1, 2, intp(6), intp(6)); err != nil {
		t.Fatalf("update: %v", err)
	}
	after, _ := st.Get(context.Background(), 1)
	if before != after {
		t.Fatalf("expected aggregate unchanged, got %+v -> %+v", before, after)
	}
}

func TestEngine_UpdateNilBoth_Noop(t *testing.T) {
	e, st := newTestEngine(t)
	if err := e.OnUpdate(context.Background(), 1, 1, nil, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := st.Get(context.Background(), 1); !errors.Is(err, ErrNoAggregate) {
		t.Fatalf("expected no aggregate row, got err=%v", err)
	}
}

func TestEngine_DeleteReversal(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 8, 6, 10)

	// (8*3 - 6) / 2 = 9
	if err := e.OnDelete(context.Background(), 1, 2, intp(6)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 2 || agg.VoteAvg != 9.0 {
		t.Fatalf("expected {2, 9.0}, got {%d, %g}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestEngine_DeleteToEmptyResetsAvg(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 7)

	if err := e.OnDelete(context.Background(), 1, 1, intp(7)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 0 || agg.VoteAvg != 0 {
		t.Fatalf("expected {0, 0}, got {%d, %g}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestEngine_DeleteWithoutRating_Noop(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 8)
	before, _ := st.Get(context.Background(), 1)

	if err := e.OnDelete(context.Background(), 1, 2, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	after, _ := st.Get(context.Background(), 1)
	if before != after {
		t.Fatalf("expected aggregate unchanged, got %+v -> %+v", before, after)
	}
}

func TestEngine_DeleteMissingRow_ConsistencyViolation(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.OnDelete(context.Background(), 99, 1, intp(5))
	if !errors.Is(err, ErrNoAggregate) {
		t.Fatalf("expected ErrNoAggregate, got %v", err)
	}
}

func TestEngine_DeleteAtZeroCount_ConsistencyViolation(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 7)
	if err := e.OnDelete(context.Background(), 1, 1, intp(7)); err != nil {
		t.Fatalf("first delete: %v", err)
	}

	// Second reversal against a zero-count row must be reported, not clamped.
	err := e.OnDelete(context.Background(), 1, 1, intp(7))
	if !errors.Is(err, ErrNoAggregate) {
		t.Fatalf("expected ErrNoAggregate, got %v", err)
	}
	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 0 {
		t.Fatalf("count must never go negative, got %d", agg.VoteCount)
	}
}

func TestEngine_ConcurrentCreatesConverge(t *testing.T) {
	e, st := newTestEngine(t)
	ratings := []int{8, 6, 10, 2, 9, 7, 0, 5, 3, 10, 1, 4, 6, 8, 2}

	var wg sync.WaitGroup
	for i, r := range ratings {
		wg.Add(1)
		go func(commentID int64, rating int) {
			defer wg.Done()
			_ = e.OnCreate(context.Background(), 1, commentID, intp(rating))
		}(int64(i+1), r)
	}
	wg.Wait()

	var sum int
	for _, r := range ratings {
		sum += r
	}
	want := float64(sum) / float64(len(ratings))

	agg, err := st.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if agg.VoteCount != int64(len(ratings)) {
		t.Fatalf("lost update: expected count %d, got %d", len(ratings), agg.VoteCount)
	}
	if math.Abs(agg.VoteAvg-want) > 1e-9 {
		t.Fatalf("expected avg %g, got %g", want, agg.VoteAvg)
	}
}

func TestEngine_IndependentMovies(t *testing.T) {
	e, st := newTestEngine(t)
	seedRatings(t, e, 1, 9)
	seedRatings(t, e, 2, 3)

	a1, _ := st.Get(context.Background(), 1)
	a2, _ := st.Get(context.Background(), 2)
	if a1.VoteAvg != 9 || a2.VoteAvg != 3 {
		t.Fatalf("expected independent aggregates, got %g and %g", a1.VoteAvg, a2.VoteAvg)
	}
}

// Deltas are not idempotent: re-applying the same create double-counts, which
// is exactly what a caller violating the one-delta-per-mutation contract
// would produce.
func TestEngine_DoubleApplyDoubleCounts(t *testing.T) {
	e, st := newTestEngine(t)

	if err := e.OnCreate(context.Background(), 1, 1, intp(8)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.OnCreate(context.Background(), 1, 1, intp(8)); err != nil {
		t.Fatalf("create: %v", err)
	}

	agg, _ := st.Get(context.Background(), 1)
	if agg.VoteCount != 2 {
		t.Fatalf("expected the duplicate delta to double-count (count 2), got %d", agg.VoteCount)
	}
}

type captureReporter struct {
	mu     sync.Mutex
	events []DriftEvent
}

func (c *captureReporter) Report(_ context.Context, ev DriftEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func TestEngine_DriftReported(t *testing.T) {
	st := NewInMemoryStatStore()
	rep := &captureReporter{}
	e := NewEngine(st, zap.NewNop(), rep)

	err := e.OnDelete(context.Background(), 7, 33, intp(5))
	if err == nil {
		t.Fatal("expected secondary failure to be surfaced")
	}

	if len(rep.events) != 1 {
		t.Fatalf("expected 1 drift event, got %d", len(rep.events))
	}
	ev := rep.events[0]
	if ev.MovieID != 7 || ev.CommentID != 33 || ev.Op != "delete" {
		t.Fatalf("unexpected drift event: %+v", ev)
	}
	if ev.EventID == "" || ev.Reason == "" {
		t.Fatalf("expected populated event id and reason: %+v", ev)
	}
}

// TestStatStoreInterface ensures both implementations satisfy the interface.
func TestStatStoreInterface(t *testing.T) {
	var _ StatStore = (*InMemoryStatStore)(nil)
	var _ StatStore = (*PostgresStatStore)(nil)
}
