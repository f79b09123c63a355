package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/movem/internal/platform/api"
	"github.com/example/movem/internal/store"
)

// ListPlatforms handles GET /platforms.
func ListPlatforms(ps store.PlatformStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ps.List(r.Context())
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetPlatform handles GET /platforms/{platform_id}.
func GetPlatform(ps store.PlatformStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "platform_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "platform_id is required", "", nil)
			return
		}
		p, err := ps.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "platform not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// CreatePlatform handles POST /platforms.
func CreatePlatform(ps store.PlatformStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"platform_name"`
			LogoPath string `json:"logo_path"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			api.BadRequest(w, "MISSING_NAME", "platform_name is required", "", nil)
			return
		}
		created, err := ps.Create(r.Context(), store.Platform{Name: req.Name, LogoPath: req.LogoPath})
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// UpdatePlatform handles PUT /platforms/{platform_id}.
func UpdatePlatform(ps store.PlatformStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "platform_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "platform_id is required", "", nil)
			return
		}
		var req struct {
			Name     *string `json:"platform_name"`
			LogoPath *string `json:"logo_path"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			api.BadRequest(w, "MISSING_NAME", "platform_name must not be empty", "", nil)
			return
		}
		updated, err := ps.Update(r.Context(), id, store.PlatformPatch{Name: req.Name, LogoPath: req.LogoPath})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "platform not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeletePlatform handles DELETE /platforms/{platform_id}.
func DeletePlatform(ps store.PlatformStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "platform_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "platform_id is required", "", nil)
			return
		}
		deleted, err := ps.Delete(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "platform not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, deleted)
	}
}
