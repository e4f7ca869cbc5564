package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/jarvis/internal/dispatch"
	"github.com/nadzzz/jarvis/internal/message"
)

const writeWait = 10 * time.Second

var (
	// ErrClosed is returned when sending to a closed session.
	ErrClosed = errors.New("session closed")

	// ErrSlowConsumer is returned when the send buffer is full. The
	// session is disconnected.
	ErrSlowConsumer = errors.New("session send buffer full")
)

// State is the lifecycle state of a session.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Session is one client connection.
type Session struct {
	ID string

	hub    *Hub
	conn   *websocket.Conn
	logger *slog.Logger

	send chan []byte
	work chan message.Inbound
	done chan struct{}

	state         atomic.Int32
	busy          atomic.Bool
	lastHeartbeat atomic.Int64
	closeOnce     sync.Once
}

func newSession(h *Hub, conn *websocket.Conn, id string) *Session {
	s := &Session{
		ID:     id,
		hub:    h,
		conn:   conn,
		logger: h.logger.With("session_id", id),
		send:   make(chan []byte, h.cfg.SendBuffer),
		work:   make(chan message.Inbound, 1),
		done:   make(chan struct{}),
	}
	s.lastHeartbeat.Store(time.Now().UnixNano())
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// LastHeartbeatAt is when the client was last heard from.
func (s *Session) LastHeartbeatAt() time.Time {
	return time.Unix(0, s.lastHeartbeat.Load())
}

// Done is closed once the session has closed.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) open() {
	s.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
}

// Send queues frame for the writer. A full buffer disconnects the session.
func (s *Session) Send(frame message.Outbound) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.send <- b:
		return nil
	case <-s.done:
		return ErrClosed
	default:
		s.logger.Warn("slow consumer, disconnecting", "buffer", cap(s.send))
		s.Close()
		return ErrSlowConsumer
	}
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		s.hub.remove(s)
		s.logger.Info("session closed")
	})
}

func (s *Session) deadline() time.Duration {
	return s.hub.cfg.HeartbeatInterval * time.Duration(s.hub.cfg.MissedHeartbeats)
}

func (s *Session) heard() {
	now := time.Now()
	s.lastHeartbeat.Store(now.UnixNano())
	if d := s.deadline(); d > 0 {
		_ = s.conn.SetReadDeadline(now.Add(d))
	}
}

// readLoop decodes frames until the connection fails or goes silent.
func (s *Session) readLoop() {
	defer s.Close()

	if n := s.hub.cfg.MaxMessageBytes; n > 0 {
		s.conn.SetReadLimit(n)
	}
	s.heard()
	s.conn.SetPongHandler(func(string) error {
		s.heard()
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}
		s.heard()

		in, err := message.DecodeInbound(data)
		if err != nil {
			_ = s.Send(message.NewError("Invalid message: %v", err))
			continue
		}
		s.handle(in)
	}
}

func (s *Session) handle(in message.Inbound) {
	switch in.Type {
	case message.TypePing:
		_ = s.Send(message.NewPong(time.Now().UTC()))

	case message.TypeGetStatus:
		ctx, cancel := context.WithTimeout(s.hub.ctx, writeWait)
		snap, err := s.hub.handler.Status(ctx)
		cancel()
		if err != nil {
			s.logger.Warn("status unavailable", "error", err)
			_ = s.Send(message.NewError("System status unavailable"))
			return
		}
		_ = s.Send(message.NewSystemStatus(snap))

	case message.TypeCommand:
		if !s.busy.CompareAndSwap(false, true) {
			_ = s.Send(message.NewError("previous command still processing"))
			return
		}
		s.work <- in

	default:
		_ = s.Send(message.NewError("Unknown message type: %s", in.Type))
	}
}

// workLoop runs commands one at a time.
func (s *Session) workLoop() {
	for {
		select {
		case in := <-s.work:
			s.process(in)
			s.busy.Store(false)
		case <-s.done:
			return
		}
	}
}

func (s *Session) process(in message.Inbound) {
	reply := s.hub.handler.Handle(s.hub.ctx, dispatch.Request{
		SessionID:    s.ID,
		Source:       "ws",
		Text:         in.Command,
		LanguageHint: in.Language,
	})
	if err := s.Send(message.NewCommandResponse(reply.Response)); err != nil {
		s.logger.Debug("reply dropped", "command_key", reply.Response.CommandKey, "error", err)
		return
	}
	if reply.Confirmation != nil {
		_ = s.Send(message.NewConfirmationRequest(reply.Confirmation))
	}
}

// writeLoop is the only goroutine that writes to the connection.
func (s *Session) writeLoop() {
	interval := s.hub.cfg.HeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case b := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				s.logger.Debug("write failed", "error", err)
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		}
	}
}
