package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/intent"
	"github.com/nadzzz/jarvis/internal/message"
	grpctransport "github.com/nadzzz/jarvis/internal/transport/grpc"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "jarvis dev\n", out.String())
}

func TestParseLocal(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, parseLocal(context.Background(), &out, defaultConfig(t), "Chrome kholo", ""))

	var reply grpctransport.DispatchReply
	require.NoError(t, json.Unmarshal(out.Bytes(), &reply))
	assert.Equal(t, "hi", reply.Response.Language)
	assert.Equal(t, message.ActionCommand, reply.Response.ActionType)
	assert.Nil(t, reply.Confirmation)
}

func TestParseLocalParksDangerousCommands(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, parseLocal(context.Background(), &out, defaultConfig(t), "shutdown computer", ""))

	var reply grpctransport.DispatchReply
	require.NoError(t, json.Unmarshal(out.Bytes(), &reply))
	require.NotNil(t, reply.Confirmation)
	assert.Equal(t, intent.Shutdown, reply.Confirmation.CommandKey)
}

func TestBuildPipelineRejectsUnknownDangerKey(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Confirmation.DangerousCommands = []string{"shutdown", "launch_missiles"}

	_, err := buildPipeline(cfg, false)
	assert.ErrorContains(t, err, "launch_missiles")
}

func TestBuildPipelineRejectsUnknownBackend(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Interpreter.Enabled = true
	cfg.Interpreter.Backend = "telepathy"

	_, err := buildPipeline(cfg, false)
	assert.ErrorContains(t, err, "telepathy")
}

func TestSchedulerJobs(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.History.Path = ":memory:"
	cfg.Schedules = []config.ScheduleConfig{{Name: "morning", Spec: "0 9 * * *", Command: "what time is it"}}

	p, err := buildPipeline(cfg, true)
	require.NoError(t, err)
	defer p.Close()

	sched, err := newScheduler(cfg, p, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"command:morning", "confirmation-sweep", "history-prune", "status-broadcast"}, sched.Jobs())
	assert.True(t, sched.Run("command:morning"))
	assert.True(t, sched.Run("history-prune"))
}

func TestAnswer(t *testing.T) {
	for _, s := range []string{"yes", "Haan", "हाँ"} {
		approved, ok := answer(s)
		assert.True(t, ok, s)
		assert.True(t, approved, s)
	}
	for _, s := range []string{"no", "NAHI", "नहीं"} {
		approved, ok := answer(s)
		assert.True(t, ok, s)
		assert.False(t, approved, s)
	}
	_, ok := answer("open chrome")
	assert.False(t, ok)
}
