package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins, the API key guards the route
		return true
	},
}

// WebSocketHandler streams feed session state over WebSocket
type WebSocketHandler struct {
	hub    *services.SessionHub
	logger *observability.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *services.SessionHub, logger *observability.Logger) *WebSocketHandler {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &WebSocketHandler{hub: hub, logger: logger.Named("websocket")}
}

// HandleConnection upgrades HTTP to WebSocket and attaches the connection to
// the session in the path
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if _, err := h.hub.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	client := h.hub.WS().NewClient(uuid.New().String(), sessionID, conn)
	if err := h.hub.Attach(client); err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session not found"))
		conn.Close()
		return
	}

	h.logger.WithField("session_id", sessionID).Debugf("WebSocket client %s connected", client.ID)

	go client.WritePump()
	client.ReadPump(h.handleMessage)
}

// handleMessage applies a client message to its session
func (h *WebSocketHandler) handleMessage(client *services.WSClient, msg services.WSMessage) {
	if msg.Type == services.WSTypePing {
		pong, _ := services.NewWSMessage(services.WSTypePong, nil)
		h.hub.WS().SendToClient(client, pong)
		return
	}

	s, err := h.hub.Get(client.SessionID)
	if err != nil {
		h.sendError(client, "Session not found")
		return
	}

	switch msg.Type {
	case services.WSTypeSetQuery:
		var payload services.SetQueryPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendError(client, "invalid set_query payload")
			return
		}
		s.Controller.SetQuery(payload.Query)

	case services.WSTypeSubmitSearch:
		s.Controller.SubmitSearch()

	case services.WSTypeScroll:
		var payload services.ScrollPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendError(client, "invalid scroll payload")
			return
		}
		s.Controller.OnScroll(payload.FirstVisibleIndex, payload.LastVisibleIndex)

	case services.WSTypeLoadMore:
		s.Controller.LoadMore()

	default:
		h.logger.Debugf("Unknown WebSocket message type: %s", msg.Type)
		h.sendError(client, "unknown message type")
	}
}

func (h *WebSocketHandler) sendError(client *services.WSClient, message string) {
	msg, err := services.NewWSMessage(services.WSTypeError, services.ErrorPayload{Error: message})
	if err != nil {
		return
	}
	h.hub.WS().SendToClient(client, msg)
}
