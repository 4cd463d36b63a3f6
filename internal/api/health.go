package api

import (
	"net/http"
	"time"

	"github.com/foodlogr/backend/internal/api/respond"
	"github.com/foodlogr/backend/internal/store"
)

const serviceName = "foodlogr-backend"

// HealthHandler reports liveness and database connectivity.
type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler { return &HealthHandler{store: s} }

// CheckHealth handles GET /health. It pings the database; the status code
// stays 200 so load balancers distinguish "down" from "degraded" by body.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.store.HealthPing(r.Context()); err != nil {
		status = "unhealthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
