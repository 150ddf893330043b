package handler

import (
	"net/http"
	"runtime"
	"time"

	"expirytrack-api/internal/store"
	"expirytrack-api/pkg/response"
)

// Handler contains the shared health and stats endpoints.
type Handler struct {
	store     *store.Store
	dbType    string
	version   string
	startTime time.Time
}

// New creates a new handler.
func New(st *store.Store, dbType, version string) *Handler {
	return &Handler{
		store:     st,
		dbType:    dbType,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
	})
}

// Stats handles GET /api/v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType
	stats["goroutines"] = runtime.NumGoroutine()

	if count, err := h.store.Count(r.Context()); err == nil {
		stats["total_items"] = count
	}

	response.OK(w, stats)
}
