package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nadzzz/jarvis/internal/automation"
	"github.com/nadzzz/jarvis/internal/compose"
	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/intent"
	"github.com/nadzzz/jarvis/internal/message"
	"github.com/nadzzz/jarvis/internal/metrics"
)

// Result is what a handler produced for a successful command.
type Result struct {
	// Vars fill the reply template.
	Vars compose.Vars

	// Data is passed through to the client in CommandResponse.Data.
	Data map[string]any
}

// HandlerFunc executes one command key.
type HandlerFunc func(ctx context.Context, in intent.Intent) (*Result, error)

// ExecutionError wraps any failure while running a handler.
type ExecutionError struct {
	CommandKey string
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %s: %v", e.CommandKey, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ConfigError reports command keys the resolver can emit but the router
// cannot handle. It is fatal at startup.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "no handler for command keys: " + strings.Join(e.Missing, ", ")
}

// hostKeys are carried out entirely by the automation host.
var hostKeys = []string{
	intent.SendMessage, intent.OpenWhatsApp, intent.SearchYouTube, intent.OpenYouTube,
	intent.GoogleSearch, intent.OpenBrowser, intent.OpenWebsite,
	intent.MediaPlay, intent.MediaNext, intent.MediaPrevious,
	intent.TakeScreenshot, intent.OCRImage, intent.OCRPDF,
	intent.ShowDesktop, intent.MinimizeWindow, intent.MaximizeWindow, intent.CloseWindow,
	intent.SnapLeft, intent.SnapRight, intent.OpenApp, intent.CloseApp,
	intent.CreateFolder, intent.DeleteFile, intent.EmptyRecycleBin, intent.SearchFiles,
	intent.OpenFolder, intent.TypeText,
	intent.Shutdown, intent.Restart, intent.Sleep, intent.Hibernate,
	intent.VolumeUp, intent.VolumeDown, intent.Mute, intent.Battery,
}

// Router maps command keys to handlers.
type Router struct {
	handlers map[string]HandlerFunc
	host     automation.Host
	breaker  *gobreaker.CircuitBreaker
	now      func() time.Time
}

// NewRouter creates a router with a handler for every built-in command key.
func NewRouter(host automation.Host, cfg config.BreakerConfig) *Router {
	r := &Router{
		handlers: make(map[string]HandlerFunc),
		host:     host,
		breaker:  newBreaker(cfg),
		now:      time.Now,
	}

	r.Register(intent.Greeting, r.reply)
	r.Register(intent.Identity, r.reply)
	r.Register(intent.Help, r.reply)
	r.Register(intent.Unknown, r.reply)
	r.Register(intent.Time, r.clock)
	r.Register(intent.Date, r.calendar)
	r.Register(intent.SystemStatus, r.systemStatus)
	for _, key := range hostKeys {
		r.Register(key, r.invoke)
	}
	return r
}

func newBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "automation-host",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A capability that fails (app not installed) says nothing about
		// the host's health; only outages count.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, automation.ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				metrics.BreakerState.Set(1)
			} else {
				metrics.BreakerState.Set(0)
			}
		},
	})
}

// Register sets the handler for key, replacing any existing one.
func (r *Router) Register(key string, h HandlerFunc) {
	r.handlers[key] = h
}

// Validate checks that every key in keys has a handler.
func (r *Router) Validate(keys []string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := r.handlers[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ConfigError{Missing: missing}
	}
	return nil
}

// Route runs the handler for in.CommandKey. Handler panics are recovered
// into an ExecutionError.
func (r *Router) Route(ctx context.Context, in intent.Intent) (res *Result, err error) {
	h, ok := r.handlers[in.CommandKey]
	if !ok {
		return nil, &ExecutionError{CommandKey: in.CommandKey, Err: errors.New("no handler")}
	}

	defer func() {
		if p := recover(); p != nil {
			slog.Error("handler panic", "command_key", in.CommandKey, "panic", p, "stack", string(debug.Stack()))
			res, err = nil, &ExecutionError{CommandKey: in.CommandKey, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	res, err = h(ctx, in)
	if err != nil {
		metrics.HostErrors.WithLabelValues(in.CommandKey).Inc()
		return nil, &ExecutionError{CommandKey: in.CommandKey, Err: err}
	}
	if res == nil {
		res = &Result{}
	}
	return res, nil
}

// Status fetches the host snapshot through the breaker.
func (r *Router) Status(ctx context.Context) (message.SystemStatusSnapshot, error) {
	v, err := r.execute(func() (any, error) { return r.host.Status(ctx) })
	if err != nil {
		return nil, err
	}
	return v.(message.SystemStatusSnapshot), nil
}

func (r *Router) execute(fn func() (any, error)) (any, error) {
	v, err := r.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", automation.ErrUnavailable, err)
	}
	return v, err
}

// --- Handlers ---

func (r *Router) reply(context.Context, intent.Intent) (*Result, error) {
	return &Result{}, nil
}

func (r *Router) clock(context.Context, intent.Intent) (*Result, error) {
	now := r.now()
	return &Result{
		Vars: compose.Vars{"time": now.Format("3:04 PM")},
		Data: map[string]any{"time": now.Format(time.RFC3339)},
	}, nil
}

func (r *Router) calendar(context.Context, intent.Intent) (*Result, error) {
	now := r.now()
	return &Result{
		Vars: compose.Vars{"date": now.Format("Monday, January 02, 2006")},
		Data: map[string]any{"date": now.Format(time.DateOnly)},
	}, nil
}

func (r *Router) systemStatus(ctx context.Context, _ intent.Intent) (*Result, error) {
	snap, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{
		Vars: compose.Vars{"summary": summarize(snap)},
		Data: map[string]any(snap),
	}, nil
}

// invoke hands the command to the automation host. Slots and scalar
// result fields both become template vars.
func (r *Router) invoke(ctx context.Context, in intent.Intent) (*Result, error) {
	call := automation.Call{
		CommandKey: in.CommandKey,
		Args:       in.Slots,
		Language:   string(in.Language),
	}
	v, err := r.execute(func() (any, error) { return r.host.Invoke(ctx, call) })
	if err != nil {
		return nil, err
	}
	hr, _ := v.(*automation.Result)
	if hr == nil {
		hr = &automation.Result{}
	}

	vars := make(compose.Vars, len(in.Slots)+len(hr.Data))
	for k, s := range in.Slots {
		vars[k] = s
	}
	data := make(map[string]any, len(hr.Data)+1)
	for k, val := range hr.Data {
		data[k] = val
		if s, ok := scalar(val); ok {
			vars[k] = s
		}
	}
	if u := in.Slot("url"); u != "" {
		data["url"] = u
	}
	if len(data) == 0 {
		data = nil
	}
	return &Result{Vars: vars, Data: data}, nil
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return fmt.Sprint(t), true
	case int, int32, int64, uint64:
		return fmt.Sprint(t), true
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprint(int64(t)), true
		}
		return fmt.Sprintf("%.1f", t), true
	default:
		return "", false
	}
}

// summarize renders a snapshot as "key value, key value" in key order.
// A "summary" field wins when the host provides one.
func summarize(snap message.SystemStatusSnapshot) string {
	if s, ok := snap["summary"].(string); ok && s != "" {
		return s
	}
	keys := make([]string, 0, len(snap))
	for k := range snap {
		if k == "timestamp" {
			continue
		}
		if _, ok := scalar(snap[k]); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		s, _ := scalar(snap[k])
		parts = append(parts, strings.ReplaceAll(k, "_", " ")+" "+s)
	}
	return strings.Join(parts, ", ")
}
