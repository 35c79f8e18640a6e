package web

import (
	"net/http"

	"studio-console/internal/app"
)

// listUsers handles GET /api/users. Password hashes never serialize; the
// User type drops them from JSON.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, users)
}

// createUser handles POST /api/users.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req app.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, user)
}

// updateUser handles PATCH /api/users/{id}.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), idParam(r), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, user)
}

// deleteUser handles DELETE /api/users/{id}. A user may not delete their
// own account.
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id := idParam(r)
	if claims != nil && claims.UserID == id {
		writeError(w, r, "cannot delete your own account", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
