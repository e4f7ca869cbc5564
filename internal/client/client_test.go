package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/message"
)

// fakeServer accepts websocket connections and answers pings and commands
// unless mute is set.
type fakeServer struct {
	*httptest.Server
	conns  atomic.Int32
	mute   atomic.Bool
	reject atomic.Bool
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		if fs.reject.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fs.conns.Add(1)
		for {
			var in message.Inbound
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			if fs.mute.Load() {
				continue
			}
			switch in.Type {
			case message.TypePing:
				_ = conn.WriteJSON(message.NewPong(time.Now()))
			case message.TypeCommand:
				_ = conn.WriteJSON(message.NewCommandResponse(&message.CommandResponse{
					Success:  true,
					Response: "ok " + in.Command,
					Language: in.Language,
				}))
			}
		}
	})
	mux.HandleFunc("POST /api/confirm/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Approved bool `json:"approved"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.PathValue("id") != "c-1" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(message.ConfirmResult{Success: true, Approved: body.Approved, Message: "done"})
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.URL, "http") + "/ws"
}

func runClient(t *testing.T, cfg config.ClientConfig) *Client {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return c
}

func nextFrame(t *testing.T, c *Client, typ string) Frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f := <-c.Frames():
			if f.Type == typ {
				return f
			}
		case <-timeout:
			t.Fatalf("no %s frame received", typ)
		}
	}
}

func TestSendAndReceive(t *testing.T) {
	fs := newFakeServer(t)
	c := runClient(t, config.ClientConfig{URL: fs.wsURL(), HeartbeatInterval: time.Second})

	require.Eventually(t, func() bool { return c.State() == StateOpen }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Send("open chrome", "en"))

	resp, err := nextFrame(t, c, message.TypeCommandResponse).CommandResponse()
	require.NoError(t, err)
	assert.Equal(t, "ok open chrome", resp.Response)
}

func TestHeartbeatPings(t *testing.T) {
	fs := newFakeServer(t)
	c := runClient(t, config.ClientConfig{URL: fs.wsURL(), HeartbeatInterval: 30 * time.Millisecond})

	f := nextFrame(t, c, message.TypePong)
	assert.NotNil(t, f.Timestamp)
	assert.Equal(t, int32(1), fs.conns.Load())
}

func TestSilentServerTriggersReconnect(t *testing.T) {
	fs := newFakeServer(t)
	fs.mute.Store(true)
	runClient(t, config.ClientConfig{
		URL:               fs.wsURL(),
		HeartbeatInterval: 20 * time.Millisecond,
		MissedHeartbeats:  2,
		BaseBackoff:       10 * time.Millisecond,
	})

	assert.Eventually(t, func() bool { return fs.conns.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestGivesUpAfterMaxAttemptsThenReconnects(t *testing.T) {
	fs := newFakeServer(t)
	fs.reject.Store(true)
	c := runClient(t, config.ClientConfig{
		URL:                  fs.wsURL(),
		HeartbeatInterval:    time.Second,
		MaxReconnectAttempts: 3,
		BaseBackoff:          5 * time.Millisecond,
		MaxBackoff:           20 * time.Millisecond,
	})

	require.Eventually(t, func() bool { return c.State() == StateClosed }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Send("hello", "en"), ErrNotConnected)

	fs.reject.Store(false)
	c.Reconnect()
	assert.Eventually(t, func() bool { return c.State() == StateOpen }, 2*time.Second, 5*time.Millisecond)
}

func TestBackoffIsBounded(t *testing.T) {
	c, err := New(config.ClientConfig{URL: "ws://localhost/ws", BaseBackoff: time.Second, MaxBackoff: 5 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 2*time.Second, c.backoff(2))
	assert.Equal(t, 4*time.Second, c.backoff(3))
	assert.Equal(t, 5*time.Second, c.backoff(4))
	assert.Equal(t, 5*time.Second, c.backoff(10))
}

func TestConfirmOverREST(t *testing.T) {
	fs := newFakeServer(t)
	c, err := New(config.ClientConfig{URL: fs.wsURL()})
	require.NoError(t, err)

	res, err := c.Confirm(context.Background(), "c-1", true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Approved)

	_, err = c.Confirm(context.Background(), "nope", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIBase(t *testing.T) {
	for raw, want := range map[string]string{
		"ws://localhost:8080/ws":      "http://localhost:8080",
		"wss://jarvis.example.com/ws": "https://jarvis.example.com",
		"ws://host/prefix/ws/":        "http://host/prefix",
	} {
		got, err := apiBase(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}

	_, err := apiBase("http://localhost/ws")
	assert.Error(t, err)
}
