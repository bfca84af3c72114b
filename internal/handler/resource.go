package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/blog-api/internal/auth"
)

// ResourceController is a CRUD collection: list and create on the
// collection path, the rest on /{id}. The server mounts any implementation
// the same way.
type ResourceController interface {
	HandleList(w http.ResponseWriter, r *http.Request)
	HandleCreate(w http.ResponseWriter, r *http.Request)
	HandleRetrieve(w http.ResponseWriter, r *http.Request)
	HandleUpdate(w http.ResponseWriter, r *http.Request)
	HandlePartialUpdate(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
}

var (
	_ ResourceController = (*PostHandler)(nil)
	_ ResourceController = (*CommentHandler)(nil)
)

// actor returns the authenticated user ID, or "" when the request did not
// pass through auth.RequireAuth. Services answer "" with 401.
func actor(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func resourceID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
