package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type InMemoryPersonStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Person
	cast   []CastMember // person id referenced through Person.ID
}

func NewInMemoryPersonStore() *InMemoryPersonStore {
	return &InMemoryPersonStore{nextID: 1, rows: make(map[int64]Person)}
}

// Add inserts a person directly. Test and seed helper.
func (s *InMemoryPersonStore) Add(p Person) Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	p.CreatedAt = time.Now().UTC()
	s.rows[p.ID] = p
	return p
}

// AddCast links a person to a movie. Test and seed helper.
func (s *InMemoryPersonStore) AddCast(m CastMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cast = append(s.cast, m)
}

func (s *InMemoryPersonStore) List(_ context.Context) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Person, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryPersonStore) GetByID(_ context.Context, id int64) (Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[id]
	if !ok {
		return Person{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemoryPersonStore) CastForMovie(_ context.Context, movieID int64) ([]CastMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CastMember, 0)
	for _, m := range s.cast {
		if m.MovieID == movieID {
			out = append(out, m)
		}
	}
	return out, nil
}
