package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"studio-console/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API (401 JSON when unauthenticated) ─────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Document upload is multipart and sized inside the handler.
		r.Post("/api/documents", h.uploadDocument)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)
			r.Post("/api/auth/change-password", h.changePassword)

			r.Get("/api/clients", h.listClients)
			r.Post("/api/clients", h.createClient)
			r.Get("/api/clients/{id}", h.getClient)
			r.Patch("/api/clients/{id}", h.updateClient)
			r.Delete("/api/clients/{id}", h.deleteClient)

			r.Get("/api/projects", h.listProjects)
			r.Post("/api/projects", h.createProject)
			r.Get("/api/projects/{id}", h.getProject)
			r.Patch("/api/projects/{id}", h.updateProject)
			r.Delete("/api/projects/{id}", h.deleteProject)
			r.Get("/api/projects/{id}/costs", h.listProjectCosts)
			r.Get("/api/projects/{id}/invoice.pdf", h.projectInvoicePDF)

			r.Patch("/api/payments/{id}", h.markPaymentPaid)

			r.Get("/api/costs", h.listCosts)
			r.Post("/api/costs", h.addCost)

			r.Get("/api/dashboard/metrics", h.dashboardMetrics)
			r.Get("/api/finance", h.dashboardMetrics)
			r.Get("/api/reports/summary", h.financeSummary)

			r.Get("/api/documents", h.listDocuments)
			r.Get("/api/documents/download", h.downloadDocument)
			r.Delete("/api/documents/{id}", h.deleteDocument)

			r.Get("/api/templates", h.listTemplates)
			r.Post("/api/templates", h.createTemplate)
			r.Get("/api/templates/{id}", h.getTemplate)
			r.Patch("/api/templates/{id}", h.updateTemplate)
			r.Delete("/api/templates/{id}", h.deleteTemplate)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Get("/api/users", h.listUsers)
				r.Post("/api/users", h.createUser)
				r.Patch("/api/users/{id}", h.updateUser)
				r.Delete("/api/users/{id}", h.deleteUser)
			})
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter.
func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
