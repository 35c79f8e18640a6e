package web

import (
	"net/http"

	"studio-console/internal/app"
)

// listTemplates handles GET /api/templates.
func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.ListTemplates(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, templates)
}

// getTemplate handles GET /api/templates/{id}.
func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.svc.GetTemplate(r.Context(), idParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, template)
}

// createTemplate handles POST /api/templates.
func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req app.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	template, err := h.svc.CreateTemplate(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, template)
}

// updateTemplate handles PATCH /api/templates/{id}.
func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var req app.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	template, err := h.svc.UpdateTemplate(r.Context(), idParam(r), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, template)
}

// deleteTemplate handles DELETE /api/templates/{id}.
func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTemplate(r.Context(), idParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
