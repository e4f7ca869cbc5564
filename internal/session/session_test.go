package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/dispatch"
	"github.com/nadzzz/jarvis/internal/message"
)

type fakeHandler struct {
	block    chan struct{}
	statuses atomic.Int32
	failStat bool
}

func (f *fakeHandler) Handle(_ context.Context, req dispatch.Request) *dispatch.Reply {
	if f.block != nil {
		<-f.block
	}
	resp := &message.CommandResponse{
		Success:    true,
		ActionType: message.ActionCommand,
		Response:   "did " + req.Text,
		CommandKey: "echo",
		Language:   "en",
	}
	if strings.HasPrefix(req.Text, "shutdown") {
		resp.ActionType = message.ActionConfirmation
		resp.RequiresConfirmation = true
		resp.ConfirmationID = "c-1"
		return &dispatch.Reply{
			Response: resp,
			Confirmation: &message.ConfirmationRequest{
				ConfirmationID: "c-1",
				CommandKey:     "shutdown",
				CommandText:    req.Text,
				Language:       "en",
				Timeout:        30,
			},
		}
	}
	return &dispatch.Reply{Response: resp}
}

func (f *fakeHandler) Status(context.Context) (message.SystemStatusSnapshot, error) {
	f.statuses.Add(1)
	if f.failStat {
		return nil, errors.New("host down")
	}
	return message.SystemStatusSnapshot{"cpu_percent": 3.5}, nil
}

// frame is the decoded shape of an outbound frame.
type frame struct {
	Type           string          `json:"type"`
	Data           json.RawMessage `json:"data"`
	Message        string          `json:"message"`
	ConfirmationID string          `json:"confirmation_id"`
	CommandText    string          `json:"command_text"`
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		HeartbeatInterval: time.Second,
		MissedHeartbeats:  3,
		SendBuffer:        16,
		MaxMessageBytes:   4096,
	}
}

func startHub(t *testing.T, h Handler, cfg config.SessionConfig) (*Hub, string) {
	t.Helper()
	hub := NewHub(h, cfg, nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestPingAndStatus(t *testing.T) {
	hub, url := startHub(t, &fakeHandler{}, testConfig())
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypePing}))
	assert.Equal(t, message.TypePong, readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypeGetStatus}))
	f := readFrame(t, conn)
	assert.Equal(t, message.TypeSystemStatus, f.Type)
	assert.JSONEq(t, `{"cpu_percent":3.5}`, string(f.Data))

	assert.Equal(t, 1, hub.Count())
}

func TestStatusFailureIsAnErrorFrame(t *testing.T) {
	_, url := startHub(t, &fakeHandler{failStat: true}, testConfig())
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypeGetStatus}))
	f := readFrame(t, conn)
	assert.Equal(t, message.TypeError, f.Type)
	assert.Equal(t, "System status unavailable", f.Message)
}

func TestUnknownAndMalformedFrames(t *testing.T) {
	_, url := startHub(t, &fakeHandler{}, testConfig())
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	f := readFrame(t, conn)
	assert.Equal(t, message.TypeError, f.Type)
	assert.Equal(t, "Unknown message type: dance", f.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	f = readFrame(t, conn)
	assert.Equal(t, message.TypeError, f.Type)
	assert.Contains(t, f.Message, "Invalid message")

	// The session survives bad frames.
	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypePing}))
	assert.Equal(t, message.TypePong, readFrame(t, conn).Type)
}

func TestCommandThenConfirmationInOrder(t *testing.T) {
	_, url := startHub(t, &fakeHandler{}, testConfig())
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypeCommand, Command: "open chrome"}))
	f := readFrame(t, conn)
	require.Equal(t, message.TypeCommandResponse, f.Type)
	var resp message.CommandResponse
	require.NoError(t, json.Unmarshal(f.Data, &resp))
	assert.Equal(t, "did open chrome", resp.Response)

	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypeCommand, Command: "shutdown computer"}))
	f = readFrame(t, conn)
	require.Equal(t, message.TypeCommandResponse, f.Type)
	require.NoError(t, json.Unmarshal(f.Data, &resp))
	assert.True(t, resp.RequiresConfirmation)

	f = readFrame(t, conn)
	assert.Equal(t, message.TypeConfirmationRequest, f.Type)
	assert.Equal(t, "c-1", f.ConfirmationID)
	assert.Equal(t, "shutdown computer", f.CommandText)
}

func TestSecondCommandWhileBusy(t *testing.T) {
	h := &fakeHandler{block: make(chan struct{})}
	_, url := startHub(t, h, testConfig())
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypeCommand, Command: "first"}))
	require.NoError(t, conn.WriteJSON(message.Inbound{Type: message.TypeCommand, Command: "second"}))

	f := readFrame(t, conn)
	assert.Equal(t, message.TypeError, f.Type)
	assert.Equal(t, "previous command still processing", f.Message)

	close(h.block)
	f = readFrame(t, conn)
	require.Equal(t, message.TypeCommandResponse, f.Type)
	var resp message.CommandResponse
	require.NoError(t, json.Unmarshal(f.Data, &resp))
	assert.Equal(t, "did first", resp.Response)
}

func TestNotifyAndBroadcast(t *testing.T) {
	hub, url := startHub(t, &fakeHandler{}, testConfig())
	a := dial(t, url+"?session_id=alpha")
	b := dial(t, url+"?session_id=beta")
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	assert.True(t, hub.Notify("alpha", message.NewError("for alpha")))
	assert.False(t, hub.Notify("gamma", message.NewError("nobody")))
	assert.Equal(t, "for alpha", readFrame(t, a).Message)

	assert.Equal(t, 2, hub.Broadcast(message.NewSystemStatus(message.SystemStatusSnapshot{"ok": true})))
	assert.Equal(t, message.TypeSystemStatus, readFrame(t, a).Type)
	assert.Equal(t, message.TypeSystemStatus, readFrame(t, b).Type)
}

func TestResumeReplacesOldConnection(t *testing.T) {
	hub, url := startHub(t, &fakeHandler{}, testConfig())
	_ = dial(t, url+"?session_id=same")
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	first, _ := hub.Get("same")

	second := dial(t, url+"?session_id=same")
	require.Eventually(t, func() bool {
		s, ok := hub.Get("same")
		return ok && s != first
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, StateClosed, first.State())
	assert.Equal(t, 1, hub.Count())
	assert.True(t, hub.Notify("same", message.NewError("hello again")))
	assert.Equal(t, "hello again", readFrame(t, second).Message)
}

func TestSilentClientIsDropped(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 50 * time.Millisecond
	cfg.MissedHeartbeats = 2
	hub, url := startHub(t, &fakeHandler{}, cfg)

	// Never reading means server pings are never answered.
	_ = dial(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestSendAfterCloseAndCloseTwice(t *testing.T) {
	hub, url := startHub(t, &fakeHandler{}, testConfig())
	_ = dial(t, url+"?session_id=x")
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	s, ok := hub.Get("x")
	require.True(t, ok)
	assert.Equal(t, StateOpen, s.State())

	s.Close()
	s.Close()
	assert.Equal(t, StateClosed, s.State())
	assert.ErrorIs(t, s.Send(message.NewPong(time.Now())), ErrClosed)
	assert.Equal(t, 0, hub.Count())
}

func TestBroadcasterTick(t *testing.T) {
	h := &fakeHandler{}
	hub, url := startHub(t, h, testConfig())
	b := NewBroadcaster(hub, h, time.Second)

	assert.Equal(t, 0, b.Tick(context.Background()))
	assert.Equal(t, int32(0), h.statuses.Load(), "no fetch without sessions")

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, b.Tick(context.Background()))
	assert.Equal(t, message.TypeSystemStatus, readFrame(t, conn).Type)

	h.failStat = true
	assert.Equal(t, 0, b.Tick(context.Background()))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
}
