// Package scheduler runs periodic jobs on a cron clock: the status
// broadcast, housekeeping sweeps and configured commands.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/dispatch"
)

// JobFunc is one run of a job. ctx is cancelled when the scheduler stops.
type JobFunc func(ctx context.Context)

// CommandHandler runs a scheduled command. *dispatch.Dispatcher satisfies it.
type CommandHandler interface {
	Handle(ctx context.Context, req dispatch.Request) *dispatch.Reply
}

// Scheduler manages named cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	jobs    map[string]JobFunc
	entries map[string]cron.EntryID
}

// New creates a stopped scheduler. A job still running when its next tick
// arrives skips that tick.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]JobFunc),
		entries: make(map[string]cron.EntryID),
	}
}

// Add schedules fn under name with a standard cron spec or descriptor
// ("0 9 * * *", "@hourly", "@every 5s"). Re-adding a name replaces it.
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[name]; ok {
		s.cron.Remove(old)
	}
	id, err := s.cron.AddFunc(spec, func() { s.execute(name, fn) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.jobs[name] = fn
	s.entries[name] = id
	return nil
}

// Every schedules fn under name at a fixed interval. Intervals under a
// second are rounded up by cron.
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	return s.Add(name, "@every "+interval.String(), fn)
}

// AddCommands schedules each configured command. Scheduled commands run
// unattended, so dangerous ones are refused by the pipeline.
func (s *Scheduler) AddCommands(schedules []config.ScheduleConfig, h CommandHandler) error {
	for _, sc := range schedules {
		name := "command:" + sc.Name
		text := sc.Command
		err := s.Add(name, sc.Spec, func(ctx context.Context) {
			reply := h.Handle(ctx, dispatch.Request{
				SessionID:  "scheduler-" + sc.Name,
				Source:     "scheduler",
				Text:       text,
				Unattended: true,
			})
			resp := reply.Response
			if !resp.Success {
				slog.Warn("scheduled command failed", "job", name, "command_key", resp.CommandKey, "error", resp.Error)
				return
			}
			slog.Info("scheduled command ran", "job", name, "command_key", resp.CommandKey)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Run executes the named job now, outside its schedule.
func (s *Scheduler) Run(name string) bool {
	s.mu.RLock()
	fn, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	s.execute(name, fn)
	return true
}

// Jobs returns the registered job names in order.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for n := range s.jobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) execute(name string, fn JobFunc) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("scheduled job panicked", "job", name, "panic", p)
		}
	}()
	start := time.Now()
	fn(s.ctx)
	slog.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.Jobs()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}
