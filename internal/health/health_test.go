package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/jarvis/internal/metrics"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestReadiness(t *testing.T) {
	s := New(0)
	h := s.Handler()

	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "not_ready")

	s.SetReady(true)
	for _, path := range []string{"/healthz", "/readyz"} {
		code, body = get(t, h, path)
		assert.Equal(t, http.StatusOK, code, path)
		assert.JSONEq(t, `{"status":"ok"}`, body)
	}
}

func TestMetricsExposed(t *testing.T) {
	metrics.CommandsTotal.WithLabelValues("time", "en", "success").Inc()

	code, body := get(t, New(0).Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "jarvis_commands_total")
}
