package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Transports.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Session.HeartbeatInterval)
	assert.Equal(t, 5*time.Second, cfg.Session.StatusInterval)
	assert.Equal(t, 3, cfg.Session.MissedHeartbeats)
	assert.Equal(t, 30*time.Second, cfg.Confirmation.Timeout)
	assert.True(t, cfg.Confirmation.EnableDangerous)
	assert.Equal(t, "simulated", cfg.Automation.Mode)
	assert.False(t, cfg.Interpreter.Enabled)
	assert.Equal(t, 5, cfg.Client.MaxReconnectAttempts)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jarvis.yaml")
	yaml := `
automation:
  mode: http
  url: http://agent:9000
  token: ${JARVIS_TEST_TOKEN}
confirmation:
  dangerous_commands: [shutdown, restart]
directories:
  contacts:
    Rahul: "+91-98"
schedules:
  - name: morning
    spec: "0 9 * * *"
    command: what time is it
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("JARVIS_TEST_TOKEN", "s3cret")
	t.Setenv("JARVIS_CONFIRMATION_TIMEOUT", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://agent:9000", cfg.Automation.URL)
	assert.Equal(t, "s3cret", cfg.Automation.Token)
	assert.Equal(t, 10*time.Second, cfg.Confirmation.Timeout)
	assert.Equal(t, []string{"shutdown", "restart"}, cfg.Confirmation.DangerousCommands)
	assert.Equal(t, "+91-98", cfg.Directories.Contacts["rahul"], "viper lower-cases map keys")
	require.Len(t, cfg.Schedules, 1)
	assert.Equal(t, "what time is it", cfg.Schedules[0].Command)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jarvis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("automation:\n  mode: carrier-pigeon\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "automation.mode")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("JARVIS_REF", "value")
	assert.Equal(t, "value", resolveEnvRef("${JARVIS_REF}"))
	assert.Equal(t, "${JARVIS_UNSET_REF}", resolveEnvRef("${JARVIS_UNSET_REF}"))
	assert.Equal(t, "plain", resolveEnvRef("plain"))
}
