package web

import (
	"net/http"

	"studio-console/internal/app"
)

// markPaymentPaid handles PATCH /api/payments/{id}. An absent paid_date
// defaults to today. Marking a final payment paid stamps the owning
// project's final payment date.
func (h *Handler) markPaymentPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaidDate string `json:"paid_date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	payment, err := h.svc.MarkPaymentPaid(r.Context(), idParam(r), req.PaidDate)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, payment)
}

// listCosts handles GET /api/costs?project_id=...
func (h *Handler) listCosts(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		writeError(w, r, "project_id query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	costs, err := h.svc.ListProjectCosts(r.Context(), projectID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, costs)
}

// addCost handles POST /api/costs.
func (h *Handler) addCost(w http.ResponseWriter, r *http.Request) {
	var req app.AddCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cost, err := h.svc.AddCost(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, cost)
}

// dashboardMetrics handles GET /api/dashboard/metrics and GET /api/finance.
// The portfolio is recomputed from the stored snapshot on every call.
func (h *Handler) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.svc.GetDashboardMetrics(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, portfolio)
}

// financeSummary handles GET /api/reports/summary.
func (h *Handler) financeSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.SummarizeFinances(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, summary)
}
