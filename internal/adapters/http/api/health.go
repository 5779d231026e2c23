package api

import (
	"net/http"
	"time"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		Service:   serviceName,
	})
}
