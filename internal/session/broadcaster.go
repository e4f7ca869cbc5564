package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/nadzzz/jarvis/internal/message"
	"github.com/nadzzz/jarvis/internal/metrics"
)

// StatusSource provides the system status snapshot.
type StatusSource interface {
	Status(ctx context.Context) (message.SystemStatusSnapshot, error)
}

// Broadcaster pushes system_status frames to every open session. It is
// driven by the scheduler; Tick is one round.
type Broadcaster struct {
	hub     *Hub
	source  StatusSource
	timeout time.Duration
}

// NewBroadcaster creates a broadcaster. Each fetch is bounded by timeout.
func NewBroadcaster(hub *Hub, source StatusSource, timeout time.Duration) *Broadcaster {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Broadcaster{hub: hub, source: source, timeout: timeout}
}

// Tick fetches one snapshot and broadcasts it. Nothing is fetched while no
// session is connected. It returns how many sessions received the frame.
func (b *Broadcaster) Tick(ctx context.Context) int {
	if b.hub.Count() == 0 {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	snap, err := b.source.Status(ctx)
	if err != nil {
		slog.Debug("status broadcast skipped", "error", err)
		return 0
	}

	n := b.hub.Broadcast(message.NewSystemStatus(snap))
	metrics.StatusBroadcasts.Inc()
	return n
}
