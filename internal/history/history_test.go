package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := s.Record(ctx, Entry{SessionID: "a", Command: "open chrome", CommandKey: "open_app",
		Language: "en", ActionType: "COMMAND", Success: true, Response: "Opening Chrome.", CreatedAt: base})
	require.NoError(t, err)
	_, err = s.Record(ctx, Entry{SessionID: "b", Command: "shutdown", CommandKey: "shutdown",
		Language: "en", ActionType: "CONFIRMATION_REQUIRED", Success: true, CreatedAt: base.Add(time.Second)})
	require.NoError(t, err)
	_, err = s.Record(ctx, Entry{SessionID: "a", Command: "xyz", CommandKey: "unknown",
		Language: "en", ActionType: "UNKNOWN", ErrorKind: "parse_error", CreatedAt: base.Add(1500 * time.Millisecond)})
	require.NoError(t, err)

	all, err := s.Recent(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "unknown", all[0].CommandKey, "newest first")
	assert.Equal(t, "parse_error", all[0].ErrorKind)
	assert.Equal(t, "", all[2].ErrorKind)
	assert.True(t, all[2].Success)
	assert.True(t, all[2].CreatedAt.Equal(base))

	mine, err := s.Recent(ctx, Query{SessionID: "a", Limit: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "xyz", mine[0].Command)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := s.Record(ctx, Entry{SessionID: "a", Command: "old", CommandKey: "time", Language: "en",
		ActionType: "COMMAND", CreatedAt: now.Add(-48 * time.Hour)})
	require.NoError(t, err)
	_, err = s.Record(ctx, Entry{SessionID: "a", Command: "new", CommandKey: "time", Language: "en",
		ActionType: "COMMAND"})
	require.NoError(t, err)

	n, err := s.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := s.Recent(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "new", left[0].Command)
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Entry{SessionID: "a", Command: "hi", CommandKey: "greeting",
		Language: "en", ActionType: "COMMAND", Success: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Recent(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
