package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/movem/internal/platform/api"
	"github.com/example/movem/internal/stats"
	"github.com/example/movem/internal/store"
)

type movieRequest struct {
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	Tagline     string `json:"tagline"`
	ReleaseDate string `json:"release_date"`
	PosterFile  string `json:"poster_file"`
	BannerFile  string `json:"banner_file"`
	PlatformID  *int64 `json:"platform_id"`
}

func parseReleaseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListMovies handles GET /movies.
func ListMovies(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ms.List(r.Context())
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetMovie handles GET /movies/{movie_id}.
func GetMovie(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "movie_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}
		m, err := ms.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "movie not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, m)
	}
}

// CreateMovie handles POST /movies.
func CreateMovie(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req movieRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			api.BadRequest(w, "MISSING_TITLE", "title is required", "", nil)
			return
		}
		release, err := parseReleaseDate(req.ReleaseDate)
		if err != nil {
			api.BadRequest(w, "INVALID_DATE", "release_date must be YYYY-MM-DD", "", nil)
			return
		}

		created, err := ms.Create(r.Context(), store.Movie{
			Title:       req.Title,
			Overview:    req.Overview,
			Tagline:     req.Tagline,
			ReleaseDate: release,
			PosterFile:  req.PosterFile,
			BannerFile:  req.BannerFile,
			PlatformID:  req.PlatformID,
		})
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// UpdateMovie handles PUT /movies/{movie_id}.
func UpdateMovie(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "movie_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}

		var req struct {
			Title       *string `json:"title"`
			Overview    *string `json:"overview"`
			Tagline     *string `json:"tagline"`
			ReleaseDate *string `json:"release_date"`
			PosterFile  *string `json:"poster_file"`
			BannerFile  *string `json:"banner_file"`
			PlatformID  *int64  `json:"platform_id"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
			api.BadRequest(w, "MISSING_TITLE", "title must not be empty", "", nil)
			return
		}

		patch := store.MoviePatch{
			Title:      req.Title,
			Overview:   req.Overview,
			Tagline:    req.Tagline,
			PosterFile: req.PosterFile,
			BannerFile: req.BannerFile,
			PlatformID: req.PlatformID,
		}
		if req.ReleaseDate != nil {
			release, err := parseReleaseDate(*req.ReleaseDate)
			if err != nil || release == nil {
				api.BadRequest(w, "INVALID_DATE", "release_date must be YYYY-MM-DD", "", nil)
				return
			}
			patch.ReleaseDate = release
		}

		updated, err := ms.Update(r.Context(), id, patch)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "movie not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteMovie handles DELETE /movies/{movie_id}.
func DeleteMovie(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "movie_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}
		deleted, err := ms.Delete(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "movie not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, deleted)
	}
}

// MovieStats handles GET /movies/{movie_id}/stats. A movie nobody has rated
// yet reports a zero aggregate rather than 404.
func MovieStats(st stats.StatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "movie_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}
		agg, err := st.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, stats.ErrNoAggregate) {
				api.WriteJSON(w, http.StatusOK, stats.Aggregate{MovieID: id})
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, agg)
	}
}

// MovieCast handles GET /movies/{movie_id}/cast.
func MovieCast(ps store.PersonStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "movie_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}
		out, err := ps.CastForMovie(r.Context(), id)
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}
