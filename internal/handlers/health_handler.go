package handlers

import (
	"net/http"

	"shiritori/internal/database"
	"shiritori/internal/game"
	"shiritori/internal/oracle"
)

// HealthHandler reports service liveness for load balancers and monitors
type HealthHandler struct {
	db      *database.DB
	manager *game.Manager
	oracle  *oracle.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, manager *game.Manager, o *oracle.Service) *HealthHandler {
	return &HealthHandler{db: db, manager: manager, oracle: o}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", "Health check database ping failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"sessions":  h.manager.Count(),
		"aiEnabled": h.oracle.AIEnabled(),
	})
}
