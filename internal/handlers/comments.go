package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movem/internal/platform/api"
	"github.com/example/movem/internal/platform/auth"
	"github.com/example/movem/internal/stats"
	"github.com/example/movem/internal/store"
)

type createCommentRequest struct {
	MovieID int64  `json:"movie_id"`
	Body    string `json:"body"`
	Rating  *int   `json:"rating,omitempty"`
}

// updateCommentRequest keeps rating as raw JSON so an explicit null (clear
// the rating) is distinguishable from an absent field (leave it alone).
type updateCommentRequest struct {
	Body   *string         `json:"body"`
	Rating json.RawMessage `json:"rating"`
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
	return id, err == nil && id > 0
}

// CreateComment handles POST /comments. After the comment row is durably
// written the rating delta is handed to the engine; an engine failure is the
// engine's to report and never fails the request.
func CreateComment(cs store.CommentStore, engine *stats.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		var req createCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if req.MovieID <= 0 {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			api.BadRequest(w, "EMPTY_BODY", "body must not be empty", "", nil)
			return
		}
		if req.Rating != nil && !stats.ValidRating(*req.Rating) {
			api.BadRequest(w, "INVALID_RATING", "rating must be between 0 and 10", "", nil)
			return
		}

		created, err := cs.Create(r.Context(), store.Comment{
			UserID:  userID,
			MovieID: req.MovieID,
			Body:    req.Body,
			Rating:  req.Rating,
		})
		if err != nil {
			api.Internal(w, "")
			return
		}

		_ = engine.OnCreate(r.Context(), created.MovieID, created.ID, created.Rating)

		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// UpdateComment handles PUT /comments/{comment_id}.
func UpdateComment(cs store.CommentStore, engine *stats.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		id, ok := urlID(r, "comment_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", "", nil)
			return
		}

		var req updateCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}

		patch := store.CommentPatch{Body: req.Body}
		if len(req.Rating) > 0 {
			patch.RatingSet = true
			if string(req.Rating) != "null" {
				var rating int
				if err := json.Unmarshal(req.Rating, &rating); err != nil || !stats.ValidRating(rating) {
					api.BadRequest(w, "INVALID_RATING", "rating must be between 0 and 10 or null", "", nil)
					return
				}
				patch.Rating = &rating
			}
		}
		if patch.Body != nil && strings.TrimSpace(*patch.Body) == "" {
			api.BadRequest(w, "EMPTY_BODY", "body must not be empty", "", nil)
			return
		}

		existing, err := cs.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		if existing.UserID != userID {
			api.Forbidden(w, "FORBIDDEN", "not the author", "")
			return
		}

		old, updated, err := cs.Update(r.Context(), id, patch)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", "")
				return
			}
			api.Internal(w, "")
			return
		}

		_ = engine.OnUpdate(r.Context(), updated.MovieID, updated.ID, old.Rating, updated.Rating)

		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteComment handles DELETE /comments/{comment_id}.
func DeleteComment(cs store.CommentStore, engine *stats.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		id, ok := urlID(r, "comment_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", "", nil)
			return
		}

		existing, err := cs.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		if existing.UserID != userID {
			api.Forbidden(w, "FORBIDDEN", "not the author", "")
			return
		}

		deleted, err := cs.Delete(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", "")
				return
			}
			api.Internal(w, "")
			return
		}

		_ = engine.OnDelete(r.Context(), deleted.MovieID, deleted.ID, deleted.Rating)

		api.WriteJSON(w, http.StatusOK, deleted)
	}
}

// ListComments handles GET /comments.
func ListComments(cs store.CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := cs.List(r.Context())
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetComment handles GET /comments/{comment_id}.
func GetComment(cs store.CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "comment_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", "", nil)
			return
		}
		c, err := cs.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}

// MovieComments handles GET /movies/{movie_id}/comments.
// ?sort=asc|desc orders by rating and implies rated-only, matching the
// original catalog behaviour.
func MovieComments(cs store.CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, ok := urlID(r, "movie_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}

		var f store.MovieCommentsFilter
		switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sort"))) {
		case "asc":
			f = store.MovieCommentsFilter{RatedOnly: true, SortByRating: "asc"}
		case "desc":
			f = store.MovieCommentsFilter{RatedOnly: true, SortByRating: "desc"}
		}

		out, err := cs.ListByMovie(r.Context(), movieID, f)
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// LikeComment handles POST /comments/{comment_id}/like. Likes never touch
// the rating aggregate.
func LikeComment(cs store.CommentStore) http.HandlerFunc {
	return reactionHandler(cs.Like)
}

// DislikeComment handles POST /comments/{comment_id}/dislike.
func DislikeComment(cs store.CommentStore) http.HandlerFunc {
	return reactionHandler(cs.Dislike)
}

func reactionHandler(react func(ctx context.Context, id int64) (store.Comment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "comment_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", "", nil)
			return
		}
		c, err := react(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}
