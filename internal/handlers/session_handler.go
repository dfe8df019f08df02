package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/photofeed/server/internal/feed"
	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/services"
)

const flushTimeout = 5 * time.Second

// SessionResponse is returned when a feed session is created
type SessionResponse struct {
	ID   string    `json:"id"`
	View feed.View `json:"view"`
}

// SessionHandler exposes feed sessions over REST
type SessionHandler struct {
	hub    *services.SessionHub
	logger *observability.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(hub *services.SessionHub, logger *observability.Logger) *SessionHandler {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &SessionHandler{hub: hub, logger: logger.Named("sessions_api")}
}

// Create starts a feed session
// @Summary Create a feed session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body models.CreateSessionRequest false "Initial query"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.hub.Create(req.Query)
	if err != nil {
		h.logger.Warnf("create session: %v", err)
		respondError(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}
	view, ok := h.settledView(w, r, s)
	if !ok {
		return
	}
	respondJSON(w, http.StatusCreated, SessionResponse{ID: s.ID, View: view})
}

// Get returns the current view of a session
// @Summary Get feed session view
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} feed.View
// @Failure 404 {object} models.ErrorResponse
// @Router /api/sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Controller.View())
}

// SetQuery replaces the query text of a session
// @Summary Set query text
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body models.SetQueryRequest true "Query"
// @Success 202 {object} feed.View
// @Router /api/sessions/{id}/query [put]
func (h *SessionHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SetQueryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Controller.SetQuery(req.Query)
	h.accepted(w, r, s)
}

// Search submits the current query, starting a fresh feed
// @Summary Submit search
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} feed.View
// @Router /api/sessions/{id}/search [post]
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Controller.SubmitSearch()
	h.accepted(w, r, s)
}

// Scroll reports the visible range of the photo grid
// @Summary Report scroll position
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body models.ScrollRequest true "Visible range"
// @Success 202 {object} feed.View
// @Router /api/sessions/{id}/scroll [post]
func (h *SessionHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.ScrollRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FirstVisibleIndex < 0 || req.LastVisibleIndex < req.FirstVisibleIndex {
		respondError(w, http.StatusBadRequest, "Invalid visible range")
		return
	}

	s.Controller.OnScroll(req.FirstVisibleIndex, req.LastVisibleIndex)
	h.accepted(w, r, s)
}

// LoadMore requests the next page without waiting for the debounce
// @Summary Load next page
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} feed.View
// @Router /api/sessions/{id}/more [post]
func (h *SessionHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Controller.LoadMore()
	h.accepted(w, r, s)
}

// Delete closes a session
// @Summary Close a feed session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /api/sessions/{id} [delete]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Close(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	s, err := h.hub.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) accepted(w http.ResponseWriter, r *http.Request, s *services.Session) {
	view, ok := h.settledView(w, r, s)
	if !ok {
		return
	}
	respondJSON(w, http.StatusAccepted, view)
}

// settledView waits for the calls already made on the session to apply and
// returns the resulting view
func (h *SessionHandler) settledView(w http.ResponseWriter, r *http.Request, s *services.Session) (feed.View, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), flushTimeout)
	defer cancel()

	if err := s.Controller.Flush(ctx); err != nil {
		if errors.Is(err, feed.ErrClosed) {
			respondError(w, http.StatusNotFound, "Session not found")
			return feed.View{}, false
		}
		h.logger.WithContext(r.Context()).WithField("session_id", s.ID).Warnf("flush session: %v", err)
		respondError(w, http.StatusServiceUnavailable, "Session is busy")
		return feed.View{}, false
	}
	return s.Controller.View(), true
}
