package handlers

import (
	"errors"
	"net/http"

	"github.com/example/movem/internal/platform/api"
	"github.com/example/movem/internal/store"
)

// ListPeople handles GET /people.
func ListPeople(ps store.PersonStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ps.List(r.Context())
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetPerson handles GET /people/{person_id}.
func GetPerson(ps store.PersonStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "person_id")
		if !ok {
			api.BadRequest(w, "MISSING_ID", "person_id is required", "", nil)
			return
		}
		p, err := ps.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "person not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}
