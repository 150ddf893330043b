package handler

import (
	"net/http"

	"expirytrack-api/internal/service"
	"expirytrack-api/pkg/response"
)

// DashboardHandler serves the derived expiry-bucket counters.
type DashboardHandler struct {
	dashboard *service.Dashboard
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard *service.Dashboard) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get handles GET /api/v1/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.Counts(r.Context())
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}
	response.OK(w, counts)
}

// Recompute handles POST /api/v1/dashboard/recompute
func (h *DashboardHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.Recompute(r.Context())
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}
	response.OK(w, counts)
}
