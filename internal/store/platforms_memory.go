package store

import (
	"context"
	"sort"
	"sync"
)

type InMemoryPlatformStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Platform
}

func NewInMemoryPlatformStore() *InMemoryPlatformStore {
	return &InMemoryPlatformStore{nextID: 1, rows: make(map[int64]Platform)}
}

func (s *InMemoryPlatformStore) List(_ context.Context) ([]Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Platform, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryPlatformStore) GetByID(_ context.Context, id int64) (Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[id]
	if !ok {
		return Platform{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemoryPlatformStore) Create(_ context.Context, p Platform) (Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.rows[p.ID] = p
	return p, nil
}

func (s *InMemoryPlatformStore) Update(_ context.Context, id int64, patch PlatformPatch) (Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return Platform{}, ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.LogoPath != nil {
		p.LogoPath = *patch.LogoPath
	}
	s.rows[id] = p
	return p, nil
}

func (s *InMemoryPlatformStore) Delete(_ context.Context, id int64) (Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return Platform{}, ErrNotFound
	}
	delete(s.rows, id)
	return p, nil
}
