package stats

import (
	"context"
	"sync"
)

// InMemoryStatStore keeps aggregates in process memory. Development and test
// backend; the mutex gives each Apply* the same read-modify-write atomicity
// the Postgres row lock provides.
type InMemoryStatStore struct {
	mu   sync.Mutex
	rows map[int64]Aggregate
}

func NewInMemoryStatStore() *InMemoryStatStore {
	return &InMemoryStatStore{rows: make(map[int64]Aggregate)}
}

func (s *InMemoryStatStore) Get(_ context.Context, movieID int64) (Aggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[movieID]
	if !ok {
		return Aggregate{}, ErrNoAggregate
	}
	return row, nil
}

func (s *InMemoryStatStore) ApplyCreate(_ context.Context, movieID int64, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[movieID]
	if !ok {
		row = Aggregate{MovieID: movieID}
	}
	newCount := row.VoteCount + 1
	row.VoteAvg = (row.VoteAvg*float64(row.VoteCount) + float64(rating)) / float64(newCount)
	row.VoteCount = newCount
	s.rows[movieID] = row
	return nil
}

func (s *InMemoryStatStore) ApplyReplace(_ context.Context, movieID int64, oldRating, newRating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[movieID]
	if !ok || row.VoteCount == 0 {
		return ErrNoAggregate
	}
	row.VoteAvg = (row.VoteAvg*float64(row.VoteCount) - float64(oldRating) + float64(newRating)) / float64(row.VoteCount)
	s.rows[movieID] = row
	return nil
}

func (s *InMemoryStatStore) ApplyDelete(_ context.Context, movieID int64, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[movieID]
	if !ok || row.VoteCount == 0 {
		return ErrNoAggregate
	}
	newCount := row.VoteCount - 1
	if newCount > 0 {
		row.VoteAvg = (row.VoteAvg*float64(row.VoteCount) - float64(rating)) / float64(newCount)
	} else {
		row.VoteAvg = 0
	}
	row.VoteCount = newCount
	s.rows[movieID] = row
	return nil
}

func (s *InMemoryStatStore) Overwrite(_ context.Context, movieID int64, count int64, avg float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[movieID] = Aggregate{MovieID: movieID, VoteCount: count, VoteAvg: avg}
	return nil
}

func (s *InMemoryStatStore) ListMovieIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	return ids, nil
}
