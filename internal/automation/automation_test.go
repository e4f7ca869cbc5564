package automation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/jarvis/internal/config"
)

func TestHTTPHostInvoke(t *testing.T) {
	var got Call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoke", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"chars": 42}})
	}))
	defer srv.Close()

	h := NewHTTPHost(config.AutomationConfig{URL: srv.URL + "/", Token: "secret"})
	res, err := h.Invoke(context.Background(), Call{CommandKey: "ocr_image", Args: map[string]string{"path": "a.png"}, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, float64(42), res.Data["chars"])
	assert.Equal(t, "ocr_image", got.CommandKey)
	assert.Equal(t, "a.png", got.Args["path"])
}

func TestHTTPHostReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "app not installed"})
	}))
	defer srv.Close()

	h := NewHTTPHost(config.AutomationConfig{URL: srv.URL})
	_, err := h.Invoke(context.Background(), Call{CommandKey: "open_app"})

	var he *HostError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "app not installed", he.Message)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPHostUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewHTTPHost(config.AutomationConfig{URL: srv.URL})
	_, err := h.Invoke(context.Background(), Call{CommandKey: "mute"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = h.Status(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	srv.Close()
	_, err = h.Invoke(context.Background(), Call{CommandKey: "mute"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPHostStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"cpu": 12.5})
	}))
	defer srv.Close()

	snap, err := NewHTTPHost(config.AutomationConfig{URL: srv.URL}).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.5, snap["cpu"])
}

func TestSimulator(t *testing.T) {
	s := NewSimulator()
	res, err := s.Invoke(context.Background(), Call{CommandKey: "battery"})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Data["percent"])

	boom := errors.New("boom")
	s.FailWith("mute", boom)
	_, err = s.Invoke(context.Background(), Call{CommandKey: "mute"})
	assert.ErrorIs(t, err, boom)

	assert.Len(t, s.Calls(), 2)

	snap, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, snap["simulated"])
}

func TestSimulatorDelayHonoursContext(t *testing.T) {
	s := NewSimulator()
	s.Delay = time.Second
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Invoke(ctx, Call{CommandKey: "mute"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, s.Calls())
}
