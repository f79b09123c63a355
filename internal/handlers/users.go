package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/movem/internal/platform/api"
	"github.com/example/movem/internal/platform/auth"
	"github.com/example/movem/internal/store"
)

type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"`
	Password  string `json:"password"`
}

// CreateUser handles POST /users. Registration is open; the stored row
// carries only the bcrypt hash of the password.
func CreateUser(us store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if strings.TrimSpace(req.Username) == "" {
			api.BadRequest(w, "MISSING_USERNAME", "username is required", "", nil)
			return
		}
		if len(req.Password) < 8 {
			api.BadRequest(w, "WEAK_PASSWORD", "password must be at least 8 characters", "", nil)
			return
		}
		birth, err := parseReleaseDate(req.BirthDate)
		if err != nil {
			api.BadRequest(w, "INVALID_DATE", "birth_date must be YYYY-MM-DD", "", nil)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			api.Internal(w, "")
			return
		}

		created, err := us.Create(r.Context(), store.User{
			Username:     req.Username,
			Email:        req.Email,
			BirthDate:    birth,
			PasswordHash: string(hash),
			Role:         "user",
		})
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// ListUsers handles GET /users.
func ListUsers(us store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := us.List(r.Context())
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetUser handles GET /users/{user_id}.
func GetUser(us store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "user_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "user_id is required", "", nil)
			return
		}
		u, err := us.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "user not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, u)
	}
}

// UpdateUser handles PUT /users/{user_id}. A user may edit only their own
// profile unless they hold the admin role.
func UpdateUser(us store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		id, ok := urlID(r, "user_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "user_id is required", "", nil)
			return
		}
		role, _ := auth.RoleFromContext(r.Context())
		if callerID != id && role != "admin" {
			api.Forbidden(w, "FORBIDDEN", "cannot edit another user", "")
			return
		}

		var req struct {
			Username  *string `json:"username"`
			Email     *string `json:"email"`
			BirthDate *string `json:"birth_date"`
			Password  *string `json:"password"`
			GameScore *int64  `json:"game_score"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
			api.BadRequest(w, "MISSING_USERNAME", "username must not be empty", "", nil)
			return
		}

		patch := store.UserPatch{
			Username:  req.Username,
			Email:     req.Email,
			GameScore: req.GameScore,
		}
		if req.BirthDate != nil {
			birth, err := parseReleaseDate(*req.BirthDate)
			if err != nil || birth == nil {
				api.BadRequest(w, "INVALID_DATE", "birth_date must be YYYY-MM-DD", "", nil)
				return
			}
			patch.BirthDate = birth
		}
		if req.Password != nil {
			if len(*req.Password) < 8 {
				api.BadRequest(w, "WEAK_PASSWORD", "password must be at least 8 characters", "", nil)
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				api.Internal(w, "")
				return
			}
			h := string(hash)
			patch.PasswordHash = &h
		}

		updated, err := us.Update(r.Context(), id, patch)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "user not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteUser handles DELETE /users/{user_id}, same ownership rule as update.
func DeleteUser(us store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		id, ok := urlID(r, "user_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "user_id is required", "", nil)
			return
		}
		role, _ := auth.RoleFromContext(r.Context())
		if callerID != id && role != "admin" {
			api.Forbidden(w, "FORBIDDEN", "cannot delete another user", "")
			return
		}
		deleted, err := us.Delete(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "user not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, deleted)
	}
}
