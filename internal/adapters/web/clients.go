package web

import (
	"net/http"

	"studio-console/internal/app"
)

// listClients handles GET /api/clients. Every client row carries its derived
// financial rollup.
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, clients)
}

// getClient handles GET /api/clients/{id}.
func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.svc.GetClient(r.Context(), idParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, client)
}

// createClient handles POST /api/clients.
func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req app.CreateClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client, err := h.svc.CreateClient(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, client)
}

// updateClient handles PATCH /api/clients/{id}. Absent fields keep their
// stored values.
func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client, err := h.svc.UpdateClient(r.Context(), idParam(r), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, client)
}

// deleteClient handles DELETE /api/clients/{id}.
func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteClient(r.Context(), idParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
