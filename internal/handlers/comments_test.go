package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/movem/internal/platform/auth"
	"github.com/example/movem/internal/stats"
	"github.com/example/movem/internal/store"
)

// setupReq builds a request with chi URL params and optional user id in context.
func setupReq(method, url string, body string, params map[string]string, userID int64) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != 0 {
		ctx = auth.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func newCommentEnv() (*store.InMemoryCommentStore, *stats.InMemoryStatStore, *stats.Engine) {
	cs := store.NewInMemoryCommentStore()
	st := stats.NewInMemoryStatStore()
	return cs, st, stats.NewEngine(st, zap.NewNop(), nil)
}

func TestCreateComment(t *testing.T) {
	cs, st, engine := newCommentEnv()
	handler := CreateComment(cs, engine)

	req := setupReq(http.MethodPost, "/v1/comments", `{"movie_id":1,"body":"great movie","rating":8}`, nil, 7)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var c store.Comment
	if err := json.NewDecoder(rr.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Body != "great movie" {
		t.Fatalf("expected body 'great movie', got %q", c.Body)
	}
	if c.UserID != 7 {
		t.Fatalf("expected user_id 7, got %d", c.UserID)
	}
	if c.Rating == nil || *c.Rating != 8 {
		t.Fatalf("expected rating 8, got %v", c.Rating)
	}

	agg, err := st.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.VoteCount != 1 || agg.VoteAvg != 8 {
		t.Fatalf("expected {1, 8}, got {%d, %v}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestCreateComment_NoRating(t *testing.T) {
	cs, st, engine := newCommentEnv()
	handler := CreateComment(cs, engine)

	req := setupReq(http.MethodPost, "/v1/comments", `{"movie_id":1,"body":"no score from me"}`, nil, 7)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if _, err := st.Get(context.Background(), 1); !errors.Is(err, stats.ErrNoAggregate) {
		t.Fatalf("expected no aggregate row, got %v", err)
	}
}

func TestCreateComment_Unauthorized(t *testing.T) {
	cs, _, engine := newCommentEnv()
	handler := CreateComment(cs, engine)

	req := setupReq(http.MethodPost, "/v1/comments", `{"movie_id":1,"body":"hello"}`, nil, 0)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCreateComment_EmptyBody(t *testing.T) {
	cs, _, engine := newCommentEnv()
	handler := CreateComment(cs, engine)

	req := setupReq(http.MethodPost, "/v1/comments", `{"movie_id":1,"body":""}`, nil, 7)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateComment_InvalidRating(t *testing.T) {
	cs, _, engine := newCommentEnv()
	handler := CreateComment(cs, engine)

	req := setupReq(http.MethodPost, "/v1/comments", `{"movie_id":1,"body":"x","rating":11}`, nil, 7)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

// failingStatStore rejects every write so the handler's failure isolation
// can be observed end to end.
type failingStatStore struct {
	stats.InMemoryStatStore
}

func (f *failingStatStore) ApplyCreate(context.Context, int64, int) error {
	return errors.New("stats backend down")
}

func TestCreateComment_StatsFailureStillSucceeds(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	engine := stats.NewEngine(&failingStatStore{}, zap.NewNop(), nil)
	handler := CreateComment(cs, engine)

	req := setupReq(http.MethodPost, "/v1/comments", `{"movie_id":1,"body":"still lands","rating":5}`, nil, 7)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite stats failure, got %d: %s", rr.Code, rr.Body.String())
	}

	rows, err := cs.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected comment persisted, got %d rows", len(rows))
	}
}

func TestUpdateComment_ChangesAggregate(t *testing.T) {
	cs, st, engine := newCommentEnv()
	ctx := context.Background()
	r1 := 4
	c, _ := cs.Create(ctx, store.Comment{UserID: 7, MovieID: 1, Body: "mid", Rating: &r1})
	if err := engine.OnCreate(ctx, c.MovieID, c.ID, c.Rating); err != nil {
		t.Fatalf("seed: %v", err)
	}

	handler := UpdateComment(cs, engine)
	req := setupReq(http.MethodPut, "/v1/comments/1", `{"body":"actually great","rating":9}`,
		map[string]string{"comment_id": "1"}, 7)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	agg, err := st.Get(ctx, 1)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.VoteCount != 1 || agg.VoteAvg != 9 {
		t.Fatalf("expected {1, 9}, got {%d, %v}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestUpdateComment_ClearRating(t *testing.T) {
	cs, st, engine := newCommentEnv()
	ctx := context.Background()
	r1 := 6
	c, _ := cs.Create(ctx, store.Comment{UserID: 7, MovieID: 1, Body: "rated", Rating: &r1})
	if err := engine.OnCreate(ctx, c.MovieID, c.ID, c.Rating); err != nil {
		t.Fatalf("seed: %v", err)
	}

	handler := UpdateComment(cs, engine)
	req := setupReq(http.MethodPut, "/v1/comments/1", `{"rating":null}`,
		map[string]string{"comment_id": "1"}, 7)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	agg, err := st.Get(ctx, 1)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.VoteCount != 0 || agg.VoteAvg != 0 {
		t.Fatalf("expected {0, 0}, got {%d, %v}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestUpdateComment_AuthorOnly(t *testing.T) {
	cs, _, engine := newCommentEnv()
	ctx := context.Background()
	_, _ = cs.Create(ctx, store.Comment{UserID: 7, MovieID: 1, Body: "original"})

	handler := UpdateComment(cs, engine)

	req := setupReq(http.MethodPut, "/v1/comments/1", `{"body":"hijacked"}`,
		map[string]string{"comment_id": "1"}, 8)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author, got %d", rr.Code)
	}

	req = setupReq(http.MethodPut, "/v1/comments/1", `{"body":"edited"}`,
		map[string]string{"comment_id": "1"}, 7)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for author, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDeleteComment_RemovesRating(t *testing.T) {
	cs, st, engine := newCommentEnv()
	ctx := context.Background()
	r1, r2 := 10, 6
	c1, _ := cs.Create(ctx, store.Comment{UserID: 7, MovieID: 1, Body: "ten", Rating: &r1})
	c2, _ := cs.Create(ctx, store.Comment{UserID: 8, MovieID: 1, Body: "six", Rating: &r2})
	_ = engine.OnCreate(ctx, c1.MovieID, c1.ID, c1.Rating)
	_ = engine.OnCreate(ctx, c2.MovieID, c2.ID, c2.Rating)

	handler := DeleteComment(cs, engine)
	req := setupReq(http.MethodDelete, "/v1/comments/1", "",
		map[string]string{"comment_id": "1"}, 7)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	agg, err := st.Get(ctx, 1)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.VoteCount != 1 || agg.VoteAvg != 6 {
		t.Fatalf("expected {1, 6}, got {%d, %v}", agg.VoteCount, agg.VoteAvg)
	}
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	cs, _, engine := newCommentEnv()
	ctx := context.Background()
	_, _ = cs.Create(ctx, store.Comment{UserID: 7, MovieID: 1, Body: "mine"})

	handler := DeleteComment(cs, engine)
	req := setupReq(http.MethodDelete, "/v1/comments/1", "",
		map[string]string{"comment_id": "1"}, 8)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author, got %d", rr.Code)
	}
}

func TestMovieComments_SortedByRating(t *testing.T) {
	cs, _, _ := newCommentEnv()
	ctx := context.Background()
	r1, r2 := 3, 9
	_, _ = cs.Create(ctx, store.Comment{UserID: 7, MovieID: 1, Body: "low", Rating: &r1})
	_, _ = cs.Create(ctx, store.Comment{UserID: 8, MovieID: 1, Body: "high", Rating: &r2})
	_, _ = cs.Create(ctx, store.Comment{UserID: 9, MovieID: 1, Body: "unrated"})

	handler := MovieComments(cs)
	req := setupReq(http.MethodGet, "/v1/movies/1/comments?sort=desc", "",
		map[string]string{"movie_id": "1"}, 0)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var out []store.Comment
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rated comments, got %d", len(out))
	}
	if *out[0].Rating != 9 || *out[1].Rating != 3 {
		t.Fatalf("expected ratings [9 3], got [%d %d]", *out[0].Rating, *out[1].Rating)
	}
}

func TestLikeComment(t *testing.T) {
	cs, _, _ := newCommentEnv()
	ctx := context.Background()
	_, _ = cs.Create(ctx, store.Comment{UserID: 7, MovieID: 1, Body: "likeable"})

	handler := LikeComment(cs)
	req := setupReq(http.MethodPost, "/v1/comments/1/like", "",
		map[string]string{"comment_id": "1"}, 0)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var c store.Comment
	if err := json.NewDecoder(rr.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Likes != 1 {
		t.Fatalf("expected 1 like, got %d", c.Likes)
	}
}
