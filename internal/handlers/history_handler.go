package handlers

import (
	"net/http"
	"strconv"

	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
)

// HistoryHandler lists the queries feed sessions were started with
type HistoryHandler struct {
	history repository.SearchHistoryRepo
	logger  *observability.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history repository.SearchHistoryRepo, logger *observability.Logger) *HistoryHandler {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &HistoryHandler{history: history, logger: logger.Named("history_api")}
}

// Recent returns the most recent searches, newest first
// @Summary Recent searches
// @Tags searches
// @Produce json
// @Param limit query int false "Maximum entries (default 20, max 100)"
// @Success 200 {object} models.SearchHistoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/searches/recent [get]
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithContext(r.Context()).Errorf("list search history: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load search history")
		return
	}
	if entries == nil {
		entries = []models.SearchHistoryEntry{}
	}
	respondJSON(w, http.StatusOK, models.SearchHistoryResponse{Searches: entries})
}
