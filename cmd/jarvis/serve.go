package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/nadzzz/jarvis/docs" // swagger spec for /swagger/
	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/health"
	"github.com/nadzzz/jarvis/internal/scheduler"
	"github.com/nadzzz/jarvis/internal/session"
	"github.com/nadzzz/jarvis/internal/transport"
	grpctransport "github.com/nadzzz/jarvis/internal/transport/grpc"
	httptransport "github.com/nadzzz/jarvis/internal/transport/http"
)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logStartup("serve")

			// Create root context with signal handling for graceful shutdown.
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	p, err := buildPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	hub := session.NewHub(p.dispatcher, cfg.Session, cfg.Transports.HTTP.AllowedOrigins)
	p.dispatcher.SetNotifier(hub)

	sched, err := newScheduler(cfg, p, hub)
	if err != nil {
		return err
	}

	// Initialize enabled transports.
	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(httptransport.Options{
			Port:         cfg.Transports.HTTP.Port,
			Service:      p.dispatcher,
			Sessions:     hub,
			History:      historyReader(p),
			HistoryLimit: cfg.History.Limit,
		}))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, p.dispatcher))
	}
	if len(transports) == 0 {
		return fmt.Errorf("no transports enabled, enable at least one in config")
	}

	healthServer := health.New(cfg.Server.HealthPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx); err != nil {
				return fmt.Errorf("%s transport: %w", t.Name(), err)
			}
			return nil
		})
	}

	sched.Start()
	healthServer.SetReady(true)
	slog.Info("jarvis ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort,
		"jobs", sched.Jobs())

	<-gctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	sched.Stop()
	hub.Close()
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	err = g.Wait()
	slog.Info("jarvis stopped")
	return err
}

// newScheduler registers the periodic jobs.
func newScheduler(cfg *config.Config, p *pipeline, hub *session.Hub) (*scheduler.Scheduler, error) {
	sched := scheduler.New()

	broadcaster := session.NewBroadcaster(hub, p.dispatcher, cfg.Session.StatusInterval)
	if err := sched.Every("status-broadcast", cfg.Session.StatusInterval, func(ctx context.Context) {
		broadcaster.Tick(ctx)
	}); err != nil {
		return nil, err
	}

	if err := sched.Every("confirmation-sweep", time.Minute, func(context.Context) {
		if n := p.gate.Sweep(cfg.Confirmation.Retention); n > 0 {
			slog.Debug("swept resolved confirmations", "count", n)
		}
	}); err != nil {
		return nil, err
	}

	if p.history != nil && cfg.History.Retention > 0 {
		if err := sched.Every("history-prune", time.Hour, func(ctx context.Context) {
			n, err := p.history.Prune(ctx, time.Now().Add(-cfg.History.Retention))
			if err != nil {
				slog.Warn("pruning history failed", "error", err)
				return
			}
			if n > 0 {
				slog.Info("pruned command history", "rows", n)
			}
		}); err != nil {
			return nil, err
		}
	}

	if err := sched.AddCommands(cfg.Schedules, p.dispatcher); err != nil {
		return nil, err
	}
	return sched, nil
}

// historyReader avoids handing the transport a typed nil.
func historyReader(p *pipeline) httptransport.HistoryReader {
	if p.history == nil {
		return nil
	}
	return p.history
}
