// Package session implements the persistent client connection.
//
// A Hub upgrades websocket requests into Sessions and keeps a registry of
// them so confirmation outcomes and status snapshots can be pushed to a
// specific client or to everyone. Each Session is a small actor: one reader,
// one command worker and one writer goroutine.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/dispatch"
	"github.com/nadzzz/jarvis/internal/message"
	"github.com/nadzzz/jarvis/internal/metrics"
)

// Handler processes commands and status requests for a session.
// *dispatch.Dispatcher satisfies it.
type Handler interface {
	Handle(ctx context.Context, req dispatch.Request) *dispatch.Reply
	Status(ctx context.Context) (message.SystemStatusSnapshot, error)
}

// Hub is the registry of live sessions.
type Hub struct {
	handler  Handler
	cfg      config.SessionConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// ctx outlives individual connections so a command that is already
	// running finishes even if its client drops.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub creates a hub. An empty allowedOrigins accepts any origin.
func NewHub(h Handler, cfg config.SessionConfig, allowedOrigins []string) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.MissedHeartbeats <= 0 {
		cfg.MissedHeartbeats = 3
	}
	ctx, cancel := context.WithCancel(context.Background())
	hub := &Hub{
		handler:  h,
		cfg:      cfg,
		logger:   slog.With("component", "session"),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
	hub.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}
	return hub
}

// ServeHTTP upgrades the request and serves the session until it closes.
// A session_id query parameter resumes that session id, replacing any
// connection still registered under it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	id := r.URL.Query().Get("session_id")
	if id == "" {
		id = uuid.New().String()
	}
	s := h.Attach(conn, id)
	s.readLoop()
}

// Attach registers conn under id and starts its writer and worker. The
// caller runs the read loop; Attach is exported for transports that
// upgrade connections themselves.
func (h *Hub) Attach(conn *websocket.Conn, id string) *Session {
	s := newSession(h, conn, id)

	h.wg.Add(2)
	go func() { defer h.wg.Done(); s.writeLoop() }()
	go func() { defer h.wg.Done(); s.workLoop() }()
	s.open()

	h.mu.Lock()
	old := h.sessions[id]
	h.sessions[id] = s
	n := len(h.sessions)
	h.mu.Unlock()

	if old != nil {
		h.logger.Info("session resumed on new connection", "session_id", id)
		old.Close()
	}
	metrics.ActiveSessions.Set(float64(n))

	// The writer may have failed before registration.
	if s.State() == StateClosed {
		h.remove(s)
	}

	h.logger.Info("session opened", "session_id", id, "remote", conn.RemoteAddr().String())
	return s
}

// remove drops s from the registry unless a newer session took its id.
func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	if cur, ok := h.sessions[s.ID]; ok && cur == s {
		delete(h.sessions, s.ID)
	}
	n := len(h.sessions)
	h.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
}

// Get returns the live session registered under id.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// SendTo queues frame for the session id. It reports false when the
// session is not connected or could not take the frame.
func (h *Hub) SendTo(id string, frame message.Outbound) bool {
	s, ok := h.Get(id)
	if !ok {
		return false
	}
	return s.Send(frame) == nil
}

// Notify implements dispatch.Notifier.
func (h *Hub) Notify(sessionID string, frame message.Outbound) bool {
	return h.SendTo(sessionID, frame)
}

// Broadcast queues frame on every open session and returns how many
// accepted it.
func (h *Hub) Broadcast(frame message.Outbound) int {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.State() == StateOpen {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, s := range targets {
		if s.Send(frame) == nil {
			sent++
		}
	}
	return sent
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close disconnects every session and waits for their goroutines.
func (h *Hub) Close() {
	h.cancel()

	h.mu.RLock()
	all := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
	h.wg.Wait()
}
