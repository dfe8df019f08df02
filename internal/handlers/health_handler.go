package handlers

import (
	"net/http"
	"time"

	"github.com/photofeed/server/internal/models"
)

// SessionCounter reports how many feed sessions are live
type SessionCounter interface {
	Len() int
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	sessions SessionCounter
}

// NewHealthHandler creates a new HealthHandler. sessions may be nil.
func NewHealthHandler(sessions SessionCounter) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// HealthCheck returns the server health status
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse "Server is healthy"
// @Router /api/health [get]
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}
	if h.sessions != nil {
		response.Sessions = h.sessions.Len()
	}
	respondJSON(w, http.StatusOK, response)
}
