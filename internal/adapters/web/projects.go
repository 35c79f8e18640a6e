package web

import (
	"fmt"
	"net/http"

	"studio-console/internal/app"
)

// listProjects handles GET /api/projects. Rows include the client name and
// the project's payment split.
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, projects)
}

// getProject handles GET /api/projects/{id} with payments and costs attached.
func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.GetProject(r.Context(), idParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, project)
}

// createProject handles POST /api/projects. The response includes the
// pending advance/final payments created alongside the project.
func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req app.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.svc.CreateProject(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, project)
}

// updateProject handles PATCH /api/projects/{id}.
func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.svc.UpdateProject(r.Context(), idParam(r), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, project)
}

// deleteProject handles DELETE /api/projects/{id}.
func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), idParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listProjectCosts handles GET /api/projects/{id}/costs.
func (h *Handler) listProjectCosts(w http.ResponseWriter, r *http.Request) {
	costs, err := h.svc.ListProjectCosts(r.Context(), idParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, costs)
}

// projectInvoicePDF handles GET /api/projects/{id}/invoice.pdf and streams
// the rendered final invoice.
func (h *Handler) projectInvoicePDF(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.svc.RenderFinalInvoice(r.Context(), idParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Filename))
	_, _ = w.Write(invoice.Bytes)
}
