package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/photofeed/server/internal/observability"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewWSMessage marshals payload into a message of the given type
func NewWSMessage(msgType string, payload interface{}) (WSMessage, error) {
	if payload == nil {
		return WSMessage{Type: msgType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return WSMessage{}, err
	}
	return WSMessage{Type: msgType, Payload: data}, nil
}

// WSClient is one WebSocket connection watching a feed session
type WSClient struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	hub       *WSHub
	mu        sync.Mutex
	closeOnce sync.Once
}

// WSHub fans feed updates out to the clients of each session
type WSHub struct {
	clients    map[*WSClient]bool
	sessions   map[string]map[*WSClient]bool // sessionID -> clients
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan *broadcastMsg
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	logger     *observability.Logger
}

type broadcastMsg struct {
	sessionID string
	client    *WSClient // if set, only send to this client
	message   []byte
}

// NewWSHub creates a new WebSocket hub
func NewWSHub(logger *observability.Logger) *WSHub {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		sessions:   make(map[string]map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan *broadcastMsg, 256),
		quit:       make(chan struct{}),
		logger:     logger.Named("ws"),
	}
}

// Run starts the hub's main loop; it returns after Stop
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if h.sessions[client.SessionID] == nil {
				h.sessions[client.SessionID] = make(map[*WSClient]bool)
			}
			h.sessions[client.SessionID][client] = true
			h.mu.Unlock()
			h.logger.WithField("session_id", client.SessionID).Infof("WebSocket client connected: %s", client.ID)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[*WSClient]bool)
			h.sessions = make(map[string]map[*WSClient]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *WSHub) remove(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if sessionClients, ok := h.sessions[client.SessionID]; ok {
		delete(sessionClients, client)
		if len(sessionClients) == 0 {
			delete(h.sessions, client.SessionID)
		}
	}
	close(client.Send)
	h.logger.WithField("session_id", client.SessionID).Infof("WebSocket client disconnected: %s", client.ID)
}

func (h *WSHub) deliver(msg *broadcastMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var targets map[*WSClient]bool
	if msg.client != nil {
		if !h.clients[msg.client] {
			return
		}
		targets = map[*WSClient]bool{msg.client: true}
	} else {
		targets = h.sessions[msg.sessionID]
	}

	for client := range targets {
		select {
		case client.Send <- msg.message:
		default:
			// Client buffer full, drop the connection
			go h.Unregister(client)
		}
	}
}

// Stop ends Run and closes every client's send channel
func (h *WSHub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Register adds a client to the hub. Messages queued after Register returns
// reach the client.
func (h *WSHub) Register(client *WSClient) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub
func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

func (h *WSHub) enqueue(msg *broadcastMsg) {
	select {
	case h.broadcast <- msg:
	case <-h.quit:
	}
}

// BroadcastToSession sends a message to every client of a session
func (h *WSHub) BroadcastToSession(sessionID string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	h.enqueue(&broadcastMsg{sessionID: sessionID, message: data})
}

// SendToClient sends a message to one client, ordered with broadcasts
func (h *WSHub) SendToClient(client *WSClient, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	h.enqueue(&broadcastMsg{client: client, message: data})
}

// GetClientCount returns the number of connected clients
func (h *WSHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetSessionClientCount returns the number of clients watching a session
func (h *WSHub) GetSessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// NewClient creates a client for a session. conn may be nil in tests.
func (h *WSHub) NewClient(id, sessionID string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		ID:        id,
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		hub:       h,
	}
}

// Close unregisters the client and closes its connection
func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// WritePump pumps messages from the hub to the websocket connection
func (c *WSClient) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.mu.Lock()
			err := c.Conn.WriteMessage(websocket.TextMessage, message)
			c.mu.Unlock()

			if err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump reads client messages until the connection fails
func (c *WSClient) ReadPump(onMessage func(client *WSClient, msg WSMessage)) {
	defer c.Close()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warnf("WebSocket error: %v", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			errMsg, _ := NewWSMessage(WSTypeError, ErrorPayload{Error: "invalid message"})
			c.hub.SendToClient(c, errMsg)
			continue
		}

		if onMessage != nil {
			onMessage(c, msg)
		}
	}
}

// Message types
const (
	WSTypeFeedState     = "feed_state"
	WSTypeSessionClosed = "session_closed"
	WSTypeError         = "error"
	WSTypePing          = "ping"
	WSTypePong          = "pong"
	WSTypeSetQuery      = "set_query"
	WSTypeSubmitSearch  = "submit_search"
	WSTypeScroll        = "scroll"
	WSTypeLoadMore      = "load_more"
)

// ErrorPayload is sent with WSTypeError
type ErrorPayload struct {
	Error string `json:"error"`
}

// SetQueryPayload is the body of WSTypeSetQuery
type SetQueryPayload struct {
	Query string `json:"query"`
}

// ScrollPayload is the body of WSTypeScroll
type ScrollPayload struct {
	FirstVisibleIndex int `json:"firstVisibleIndex"`
	LastVisibleIndex  int `json:"lastVisibleIndex"`
}
