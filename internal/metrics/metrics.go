// Package metrics holds the daemon's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jarvis_commands_total",
			Help: "Total number of processed commands",
		},
		[]string{"command_key", "language", "outcome"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "jarvis_command_duration_seconds",
			Help: "Command processing duration in seconds",
		},
		[]string{"command_key"},
	)

	SecurityBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jarvis_security_blocks_total",
			Help: "Total number of utterances blocked by the security filter",
		},
		[]string{"reason"},
	)

	Confirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jarvis_confirmations_total",
			Help: "Confirmation requests by final state",
		},
		[]string{"state"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jarvis_active_sessions",
			Help: "Number of open client sessions",
		},
	)

	StatusBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jarvis_status_broadcasts_total",
			Help: "Total number of system status pushes",
		},
	)

	HostErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jarvis_host_errors_total",
			Help: "Automation host call failures",
		},
		[]string{"command_key"},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jarvis_host_breaker_open",
			Help: "1 while the automation host circuit breaker is open",
		},
	)
)
