package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type InMemoryMovieStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Movie
}

func NewInMemoryMovieStore() *InMemoryMovieStore {
	return &InMemoryMovieStore{nextID: 1, rows: make(map[int64]Movie)}
}

func (s *InMemoryMovieStore) List(_ context.Context) ([]Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Movie, 0, len(s.rows))
	for _, m := range s.rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *InMemoryMovieStore) GetByID(_ context.Context, id int64) (Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.rows[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	return m, nil
}

func (s *InMemoryMovieStore) Create(_ context.Context, m Movie) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID
	s.nextID++
	m.CreatedAt = time.Now().UTC()
	s.rows[m.ID] = m
	return m, nil
}

func (s *InMemoryMovieStore) Update(_ context.Context, id int64, patch MoviePatch) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Overview != nil {
		m.Overview = *patch.Overview
	}
	if patch.Tagline != nil {
		m.Tagline = *patch.Tagline
	}
	if patch.ReleaseDate != nil {
		d := *patch.ReleaseDate
		m.ReleaseDate = &d
	}
	if patch.PosterFile != nil {
		m.PosterFile = *patch.PosterFile
	}
	if patch.BannerFile != nil {
		m.BannerFile = *patch.BannerFile
	}
	if patch.PlatformID != nil {
		p := *patch.PlatformID
		m.PlatformID = &p
	}
	s.rows[id] = m
	return m, nil
}

func (s *InMemoryMovieStore) Delete(_ context.Context, id int64) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	delete(s.rows, id)
	return m, nil
}
