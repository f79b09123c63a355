package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryCommentStore keeps comments in process memory (development only).
type InMemoryCommentStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Comment
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{nextID: 1, rows: make(map[int64]Comment)}
}

func (s *InMemoryCommentStore) Create(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = time.Now().UTC()
	if c.Rating != nil {
		r := *c.Rating
		c.Rating = &r
	}
	s.rows[c.ID] = c
	return c, nil
}

func (s *InMemoryCommentStore) GetByID(_ context.Context, id int64) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.rows[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c, nil
}

func (s *InMemoryCommentStore) List(_ context.Context) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Comment, 0, len(s.rows))
	for _, c := range s.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryCommentStore) ListByMovie(_ context.Context, movieID int64, f MovieCommentsFilter) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Comment, 0)
	for _, c := range s.rows {
		if c.MovieID != movieID {
			continue
		}
		if f.RatedOnly && c.Rating == nil {
			continue
		}
		out = append(out, c)
	}
	switch f.SortByRating {
	case "asc":
		sort.Slice(out, func(i, j int) bool { return ratingOf(out[i]) < ratingOf(out[j]) })
	case "desc":
		sort.Slice(out, func(i, j int) bool { return ratingOf(out[i]) > ratingOf(out[j]) })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out, nil
}

func ratingOf(c Comment) int {
	if c.Rating == nil {
		return -1
	}
	return *c.Rating
}

func (s *InMemoryCommentStore) Update(_ context.Context, id int64, patch CommentPatch) (Comment, Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rows[id]
	if !ok {
		return Comment{}, Comment{}, ErrNotFound
	}
	updated := old
	if patch.Body != nil {
		updated.Body = *patch.Body
	}
	if patch.RatingSet {
		if patch.Rating != nil {
			r := *patch.Rating
			updated.Rating = &r
		} else {
			updated.Rating = nil
		}
	}
	s.rows[id] = updated
	return old, updated, nil
}

func (s *InMemoryCommentStore) Delete(_ context.Context, id int64) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	delete(s.rows, id)
	return c, nil
}

func (s *InMemoryCommentStore) Like(_ context.Context, id int64) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	c.Likes++
	s.rows[id] = c
	return c, nil
}

func (s *InMemoryCommentStore) Dislike(_ context.Context, id int64) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	c.Dislikes++
	s.rows[id] = c
	return c, nil
}

func (s *InMemoryCommentStore) RatedScores(_ context.Context, movieID int64) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var scores []int
	for _, c := range s.rows {
		if c.MovieID == movieID && c.Rating != nil {
			scores = append(scores, *c.Rating)
		}
	}
	return scores, nil
}
