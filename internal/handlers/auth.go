package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/movem/internal/platform/api"
	"github.com/example/movem/internal/platform/auth"
	"github.com/example/movem/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        store.User `json:"user"`
}

// Login handles POST /auth/login. Unknown usernames and wrong passwords get
// the same answer.
func Login(us store.UserStore, issuer auth.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			api.BadRequest(w, "MISSING_CREDENTIALS", "username and password are required", "", nil)
			return
		}

		u, err := us.GetByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.Unauthorized(w, "INVALID_CREDENTIALS", "invalid username or password", "")
				return
			}
			api.Internal(w, "")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			api.Unauthorized(w, "INVALID_CREDENTIALS", "invalid username or password", "")
			return
		}

		tok, exp, err := issuer.NewAccessToken(u.ID, u.Role, time.Time{})
		if err != nil {
			api.Internal(w, "")
			return
		}

		api.WriteJSON(w, http.StatusOK, loginResponse{AccessToken: tok, ExpiresAt: exp, User: u})
	}
}
