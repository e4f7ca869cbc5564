// Package client is the reconnecting websocket client for a jarvis server.
//
// The client keeps one connection open, sends an application ping every
// heartbeat interval and treats missed_heartbeats silent windows as a dead
// connection. Lost connections are retried with bounded exponential backoff;
// once max_reconnect_attempts is spent the client stays CLOSED until
// Reconnect is called.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/message"
)

var (
	// ErrNotConnected is returned by Send while no connection is open.
	ErrNotConnected = errors.New("not connected")

	// ErrNotFound is returned by Confirm for unknown or resolved ids.
	ErrNotFound = errors.New("confirmation not found")

	errHeartbeat = errors.New("missed heartbeats")
)

// TransportError wraps a failure talking to the server.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// State is the connection state.
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

// Frame is a frame received from the server.
type Frame struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`

	*message.ConfirmationRequest
}

// CommandResponse decodes the payload of a command_response frame.
func (f Frame) CommandResponse() (*message.CommandResponse, error) {
	if f.Type != message.TypeCommandResponse {
		return nil, fmt.Errorf("frame type %q is not %s", f.Type, message.TypeCommandResponse)
	}
	var r message.CommandResponse
	if err := json.Unmarshal(f.Data, &r); err != nil {
		return nil, fmt.Errorf("decoding command response: %w", err)
	}
	return &r, nil
}

// Client maintains a session with the server.
type Client struct {
	cfg     config.ClientConfig
	wsURL   string
	apiBase string
	dialer  *websocket.Dialer
	http    *http.Client
	logger  *slog.Logger

	state    atomic.Int32
	lastSeen atomic.Int64
	frames   chan Frame
	kick     chan struct{}

	writeMu sync.Mutex
	mu      sync.Mutex
	conn    *websocket.Conn
}

// New creates a client. Zero durations and counts take the defaults.
func New(cfg config.ClientConfig) (*Client, error) {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.MissedHeartbeats <= 0 {
		cfg.MissedHeartbeats = 3
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = 30 * cfg.BaseBackoff
	}

	api, err := apiBase(cfg.URL)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:     cfg,
		wsURL:   cfg.URL,
		apiBase: api,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.With("component", "client"),
		frames:  make(chan Frame, 32),
		kick:    make(chan struct{}, 1),
	}, nil
}

// apiBase maps ws://host/ws to http://host.
func apiBase(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing client url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("client url must be ws:// or wss://, got %q", raw)
	}
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/ws")
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}

// State returns the connection state.
func (c *Client) State() State { return State(c.state.Load()) }

// Frames delivers every frame received from the server. Pongs included.
func (c *Client) Frames() <-chan Frame { return c.frames }

// Reconnect restarts connection attempts after the client gave up.
func (c *Client) Reconnect() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Run keeps the connection alive until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	c.state.Store(int32(StateConnecting))
	attempts := 0

	for {
		if ctx.Err() != nil {
			c.state.Store(int32(StateClosed))
			return nil
		}

		conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
		if err != nil {
			attempts++
			if attempts >= c.cfg.MaxReconnectAttempts {
				c.state.Store(int32(StateClosed))
				c.logger.Warn("giving up after reconnect attempts", "attempts", attempts, "error", err)
				select {
				case <-ctx.Done():
					return nil
				case <-c.kick:
					c.logger.Info("reconnect requested")
					attempts = 0
					c.state.Store(int32(StateConnecting))
					continue
				}
			}

			delay := c.backoff(attempts)
			c.logger.Debug("connect failed, retrying", "attempt", attempts, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				c.state.Store(int32(StateClosed))
				return nil
			case <-time.After(delay):
			}
			continue
		}

		attempts = 0
		err = c.serve(ctx, conn)
		if ctx.Err() != nil {
			c.state.Store(int32(StateClosed))
			return nil
		}
		c.state.Store(int32(StateConnecting))
		c.logger.Info("connection lost, reconnecting", "error", err)
	}
}

// backoff returns the wait before the given attempt: BaseBackoff doubled
// per failure, capped at MaxBackoff.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.cfg.BaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= c.cfg.MaxBackoff {
			return c.cfg.MaxBackoff
		}
	}
	return d
}

// serve runs one connection until it fails, goes silent or ctx ends.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
	}()

	c.touch()
	c.state.Store(int32(StateOpen))
	c.logger.Info("connected", "url", c.wsURL)

	done := make(chan struct{})
	defer close(done)
	readErr := make(chan error, 1)
	go func() { readErr <- c.readLoop(conn, done) }()

	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()
	silence := c.cfg.HeartbeatInterval * time.Duration(c.cfg.MissedHeartbeats)

	for {
		select {
		case <-ctx.Done():
			c.writeMu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			c.writeMu.Unlock()
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-ticker.C:
			if time.Since(c.lastHeard()) > silence {
				return errHeartbeat
			}
			if err := c.write(conn, message.Inbound{Type: message.TypePing}); err != nil {
				return err
			}
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn, done <-chan struct{}) error {
	conn.SetPingHandler(func(data string) error {
		c.touch()
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}
		c.touch()

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Warn("dropping undecodable frame", "error", err)
			continue
		}
		select {
		case c.frames <- f:
		case <-done:
			return nil
		}
	}
}

func (c *Client) touch() { c.lastSeen.Store(time.Now().UnixNano()) }

func (c *Client) lastHeard() time.Time { return time.Unix(0, c.lastSeen.Load()) }

func (c *Client) write(conn *websocket.Conn, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(v); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// Send submits a command on the open connection.
func (c *Client) Send(command, lang string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || c.State() != StateOpen {
		return ErrNotConnected
	}
	return c.write(conn, message.Inbound{Type: message.TypeCommand, Command: command, Language: lang})
}

// RequestStatus asks the server for a system_status frame.
func (c *Client) RequestStatus() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return c.write(conn, message.Inbound{Type: message.TypeGetStatus})
}

// Confirm approves or rejects a pending confirmation through the REST API.
func (c *Client) Confirm(ctx context.Context, id string, approved bool) (*message.ConfirmResult, error) {
	body, err := json.Marshal(map[string]bool{"approved": approved})
	if err != nil {
		return nil, err
	}
	endpoint := c.apiBase + "/api/confirm/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "confirm", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &TransportError{Op: "confirm", Err: fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))}
	}

	var out message.ConfirmResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Op: "confirm", Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &out, nil
}
