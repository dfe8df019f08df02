package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/photofeed/server/internal/feed"
	"github.com/photofeed/server/internal/observability"
)

// ErrSessionNotFound is returned for unknown or closed session ids
var ErrSessionNotFound = errors.New("feed session not found")

// ErrHubClosed is returned by Create once the hub has shut down
var ErrHubClosed = errors.New("session hub is shut down")

// Session is one feed session: a controller plus bookkeeping
type Session struct {
	ID         string
	Controller *feed.Controller
	CreatedAt  time.Time
	lastActive atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// LastActive returns when the session was last used
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// SessionHubConfig configures a SessionHub
type SessionHubConfig struct {
	PageSize      int
	DebounceDelay time.Duration
	IdleTimeout   time.Duration
	// JanitorInterval defaults to a minute or the idle timeout, whichever is smaller
	JanitorInterval time.Duration
}

// SessionHub owns the live feed sessions and pushes their state to WebSocket
// clients
type SessionHub struct {
	cfg      SessionHubConfig
	source   feed.PhotoSource
	observer feed.PageObserver
	ws       *WSHub
	metrics  *observability.FeedMetrics
	logger   *observability.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewSessionHub creates a hub. observer and metrics may be nil.
func NewSessionHub(cfg SessionHubConfig, source feed.PhotoSource, observer feed.PageObserver, metrics *observability.FeedMetrics, logger *observability.Logger) *SessionHub {
	if logger == nil {
		logger = observability.GetLogger()
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = time.Minute
		if cfg.IdleTimeout > 0 && cfg.IdleTimeout < cfg.JanitorInterval {
			cfg.JanitorInterval = cfg.IdleTimeout
		}
	}
	return &SessionHub{
		cfg:      cfg,
		source:   source,
		observer: observer,
		ws:       NewWSHub(logger),
		metrics:  metrics,
		logger:   logger.Named("sessions"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// WS returns the WebSocket hub used for session updates
func (h *SessionHub) WS() *WSHub {
	return h.ws
}

// Run runs the WebSocket hub and the idle-session janitor until ctx ends,
// then closes every session
func (h *SessionHub) Run(ctx context.Context) {
	go h.ws.Run()

	ticker := time.NewTicker(h.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-ticker.C:
			h.ExpireIdle()
		}
	}
}

// Create starts a new session with an optional initial query
func (h *SessionHub) Create(query string) (*Session, error) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrHubClosed
	}

	id := uuid.New().String()
	logger := h.logger.WithField("session_id", id)

	opts := []feed.Option{
		feed.WithInitialQuery(query),
		feed.WithLogger(logger),
		feed.WithMetrics(h.metrics),
		feed.WithStateListener(func(_ feed.State, v feed.View) {
			h.pushView(id, v)
		}),
	}
	if h.cfg.PageSize > 0 {
		opts = append(opts, feed.WithPageSize(h.cfg.PageSize))
	}
	if h.cfg.DebounceDelay >= 0 {
		opts = append(opts, feed.WithDebounceDelay(h.cfg.DebounceDelay))
	}
	if h.observer != nil {
		opts = append(opts, feed.WithPageObserver(h.observer))
	}

	s := &Session{
		ID:         id,
		Controller: feed.NewController(h.source, opts...),
		CreatedAt:  h.now(),
	}
	s.touch(s.CreatedAt)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.Controller.Close()
		return nil, ErrHubClosed
	}
	h.sessions[id] = s
	h.mu.Unlock()

	h.metrics.SessionOpened(context.Background())
	logger.Info("Feed session created")
	return s, nil
}

func (h *SessionHub) pushView(sessionID string, v feed.View) {
	msg, err := NewWSMessage(WSTypeFeedState, v)
	if err != nil {
		h.logger.Errorf("marshal feed state: %v", err)
		return
	}
	h.ws.BroadcastToSession(sessionID, msg)
}

// Get returns a live session and marks it active
func (h *SessionHub) Get(id string) (*Session, error) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(h.now())
	return s, nil
}

// Close ends a session and tells its WebSocket clients
func (h *SessionHub) Close(id string) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	h.closeSession(s, "closed")
	return nil
}

func (h *SessionHub) closeSession(s *Session, reason string) {
	s.Controller.Close()
	if msg, err := NewWSMessage(WSTypeSessionClosed, map[string]string{"reason": reason}); err == nil {
		h.ws.BroadcastToSession(s.ID, msg)
	}
	h.metrics.SessionClosed(context.Background())
	h.logger.WithField("session_id", s.ID).Infof("Feed session %s", reason)
}

// Attach registers a WebSocket client on a session and queues the current
// view for it
func (h *SessionHub) Attach(client *WSClient) error {
	s, err := h.Get(client.SessionID)
	if err != nil {
		return err
	}
	h.ws.Register(client)

	err = s.Controller.Replay(func(_ feed.State, v feed.View) {
		msg, err := NewWSMessage(WSTypeFeedState, v)
		if err != nil {
			return
		}
		h.ws.SendToClient(client, msg)
	})
	if err != nil {
		return ErrSessionNotFound
	}
	return nil
}

// ExpireIdle closes sessions idle for longer than the idle timeout that have
// no WebSocket clients. It returns how many were closed.
func (h *SessionHub) ExpireIdle() int {
	if h.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := h.now().Add(-h.cfg.IdleTimeout)

	var expired []*Session
	h.mu.Lock()
	for id, s := range h.sessions {
		if s.LastActive().Before(cutoff) && h.ws.GetSessionClientCount(id) == 0 {
			expired = append(expired, s)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()

	for _, s := range expired {
		h.closeSession(s, "expired")
	}
	return len(expired)
}

// Len returns the number of live sessions
func (h *SessionHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// IDs returns the live session ids, sorted
func (h *SessionHub) IDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown closes every session and stops the WebSocket hub. Later Creates
// fail with ErrHubClosed.
func (h *SessionHub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		h.closeSession(s, "shutdown")
	}
	h.ws.Stop()
}
