// Package dispatch implements the command pipeline.
//
// The dispatcher takes one utterance through the security filter, language
// detection and intent resolution. Dangerous commands are parked in the
// confirmation gate; everything else is routed to its handler at once. The
// caller always receives a well-formed CommandResponse in the utterance's
// language; no failure escapes as a raw error.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/jarvis/internal/automation"
	"github.com/nadzzz/jarvis/internal/compose"
	"github.com/nadzzz/jarvis/internal/confirm"
	"github.com/nadzzz/jarvis/internal/history"
	"github.com/nadzzz/jarvis/internal/intent"
	"github.com/nadzzz/jarvis/internal/interpreter"
	"github.com/nadzzz/jarvis/internal/language"
	"github.com/nadzzz/jarvis/internal/message"
	"github.com/nadzzz/jarvis/internal/metrics"
	"github.com/nadzzz/jarvis/internal/security"
)

// Request is one utterance to process.
type Request struct {
	// SessionID owns any confirmation the command opens.
	SessionID string

	// Source names the entry point ("ws", "http", "grpc", "scheduler", "cli").
	Source string

	// Text is the raw utterance.
	Text string

	// LanguageHint is the client's guess. Only used when Text is empty.
	LanguageHint string

	// Unattended requests have nobody to confirm them, so dangerous
	// commands are refused instead of parked.
	Unattended bool
}

// Reply is the outcome of Handle.
type Reply struct {
	Response *message.CommandResponse

	// Confirmation is set when the command awaits approval.
	Confirmation *message.ConfirmationRequest
}

// Notifier pushes a frame to a live session. It reports false when the
// session is gone.
type Notifier interface {
	Notify(sessionID string, frame message.Outbound) bool
}

// Recorder stores processed commands.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Options wires a Dispatcher. Resolver, Router and Gate are required.
type Options struct {
	Resolver    *intent.Resolver
	Router      *Router
	Gate        *confirm.Gate
	Filter      *security.Filter
	Interpreter interpreter.Interpreter // nil disables the conversational fallback
	History     Recorder                // nil disables history
	// EnableDangerous false refuses dangerous commands outright.
	EnableDangerous bool
}

// Dispatcher is the command pipeline.
type Dispatcher struct {
	resolver        *intent.Resolver
	router          *Router
	gate            *confirm.Gate
	filter          *security.Filter
	interp          interpreter.Interpreter
	history         Recorder
	enableDangerous bool
	now             func() time.Time

	mu       sync.RWMutex
	notifier Notifier
}

// New creates a Dispatcher and registers it for gate expiry notifications.
func New(opts Options) *Dispatcher {
	filter := opts.Filter
	if filter == nil {
		filter = security.NewFilter()
	}
	d := &Dispatcher{
		resolver:        opts.Resolver,
		router:          opts.Router,
		gate:            opts.Gate,
		filter:          filter,
		interp:          opts.Interpreter,
		history:         opts.History,
		enableDangerous: opts.EnableDangerous,
		now:             time.Now,
	}
	d.gate.OnExpire(d.expired)
	return d
}

// SetNotifier sets where confirmation outcomes are pushed.
func (d *Dispatcher) SetNotifier(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifier = n
}

// Handle processes a single utterance through the full pipeline.
func (d *Dispatcher) Handle(ctx context.Context, req Request) *Reply {
	start := d.now()
	logger := slog.With("session_id", req.SessionID, "source", req.Source)
	raw := strings.TrimSpace(req.Text)

	if raw == "" {
		lang := language.EN
		if hint, ok := language.Parse(req.LanguageHint); ok {
			lang = hint
		}
		resp := d.failure(intent.Unknown, lang, message.ErrParse, compose.Text(compose.MsgEmptyCommand, lang, nil))
		d.finish(ctx, req, "", resp, start)
		return &Reply{Response: resp}
	}

	lang := language.Detect(raw)

	// Screen before anything logs or stores the text.
	if v := d.filter.Check(raw); v.Blocked {
		for _, r := range v.Reasons {
			metrics.SecurityBlocks.WithLabelValues(string(r)).Inc()
		}
		logger.Warn("utterance blocked by security filter", "reasons", v.Reasons, "language", lang)
		resp := d.response(intent.SecurityAlert, lang)
		resp.ActionType = message.ActionSecurity
		resp.Error = message.ErrSecurityAlert
		resp.Response = compose.Compose(intent.SecurityAlert, lang, compose.Outcome{Success: true})
		d.finish(ctx, req, security.Redact(raw), resp, start)
		return &Reply{Response: resp}
	}

	redacted := security.Redact(raw)
	in := d.resolver.Resolve(language.Normalize(raw), lang)
	logger = logger.With("command_key", in.CommandKey, "language", lang)
	logger.Info("command resolved", "text", redacted, "dangerous", in.IsDangerous)

	var reply *Reply
	switch {
	case in.Invalid != nil:
		reply = &Reply{Response: d.invalid(in)}
	case in.CommandKey == intent.Unknown:
		reply = &Reply{Response: d.unknown(ctx, in, redacted)}
	case in.IsDangerous:
		reply = d.park(in, req)
	default:
		reply = &Reply{Response: d.execute(ctx, in)}
	}

	d.finish(ctx, req, redacted, reply.Response, start)
	return reply
}

// Confirm resolves a pending confirmation. Approval dispatches the parked
// command and pushes the result to the owning session if it is still
// connected. Unknown and already resolved ids return the gate's errors.
func (d *Dispatcher) Confirm(ctx context.Context, id string, approved bool) (*message.ConfirmResult, error) {
	start := d.now()
	r, err := d.gate.Resolve(id, approved)
	if err != nil {
		return nil, err
	}

	in := r.Intent
	logger := slog.With("confirmation_id", id, "session_id", r.SessionID, "command_key", in.CommandKey)

	if !r.Approved() {
		metrics.Confirmations.WithLabelValues("rejected").Inc()
		msg := compose.Text(compose.MsgCancelled, in.Language, nil)
		resp := d.response(in.CommandKey, in.Language)
		resp.Success = true
		resp.ActionType = message.ActionCommand
		resp.ConfirmationID = id
		resp.Response = msg
		resp.Data = map[string]any{"approved": false}
		d.notify(r.SessionID, message.NewCommandResponse(resp))
		logger.Info("confirmation rejected")
		return &message.ConfirmResult{Success: true, Approved: false, Message: msg}, nil
	}

	metrics.Confirmations.WithLabelValues("approved").Inc()
	logger.Info("confirmation approved, dispatching")

	resp := d.execute(ctx, in)
	resp.ConfirmationID = id
	d.finish(ctx, Request{SessionID: r.SessionID, Source: "confirm"}, security.Redact(in.Text), resp, start)

	if !d.notify(r.SessionID, message.NewCommandResponse(resp)) {
		logger.Info("owning session gone, result not pushed")
	}
	return &message.ConfirmResult{Success: resp.Success, Approved: true, Result: resp}, nil
}

// Status returns the automation host's snapshot.
func (d *Dispatcher) Status(ctx context.Context) (message.SystemStatusSnapshot, error) {
	return d.router.Status(ctx)
}

func (d *Dispatcher) expired(r *confirm.Request) {
	metrics.Confirmations.WithLabelValues("expired").Inc()
	lang := r.Intent.Language
	resp := d.failure(r.Intent.CommandKey, lang, message.ErrConfirmationExpired, compose.Text(compose.MsgExpired, lang, nil))
	resp.ConfirmationID = r.ID
	d.notify(r.SessionID, message.NewCommandResponse(resp))
	slog.Info("confirmation expired", "confirmation_id", r.ID, "session_id", r.SessionID, "command_key", r.Intent.CommandKey)
}

func (d *Dispatcher) invalid(in intent.Intent) *message.CommandResponse {
	msg := compose.MsgInvalidDefault
	if in.Invalid.Slot == "contact" {
		msg = compose.MsgInvalidContact
	}
	text := compose.Text(msg, in.Language, compose.Vars{in.Invalid.Slot: in.Invalid.Value})
	resp := d.failure(in.CommandKey, in.Language, message.ErrValidation, text)
	resp.Data = map[string]any{"slot": in.Invalid.Slot, "reason": in.Invalid.Reason}
	return resp
}

func (d *Dispatcher) unknown(ctx context.Context, in intent.Intent, redacted string) *message.CommandResponse {
	if d.interp != nil {
		reply, err := d.interp.Reply(ctx, redacted, in.Language)
		if err == nil {
			resp := d.response(intent.Unknown, in.Language)
			resp.Success = true
			resp.ActionType = message.ActionConversation
			resp.Response = reply
			return resp
		}
		slog.Warn("conversational fallback failed", "backend", d.interp.Name(), "error", err)
	}
	resp := d.failure(intent.Unknown, in.Language, message.ErrParse,
		compose.Compose(intent.Unknown, in.Language, compose.Outcome{Success: true}))
	resp.ActionType = message.ActionUnknown
	return resp
}

// park opens a confirmation for a dangerous intent.
func (d *Dispatcher) park(in intent.Intent, req Request) *Reply {
	if !d.enableDangerous || req.Unattended {
		return &Reply{Response: d.failure(in.CommandKey, in.Language, message.ErrDangerousDisabled,
			compose.Text(compose.MsgDangerousDisabled, in.Language, nil))}
	}

	r, err := d.gate.Open(in, req.SessionID, 0)
	if err != nil {
		return &Reply{Response: d.failure(in.CommandKey, in.Language, message.ErrConfirmationInProgress,
			compose.Text(compose.MsgConfirmationInProgress, in.Language, nil))}
	}

	prompt := compose.Confirm(in.CommandKey, in.Language, compose.Vars(in.Slots))
	timeout := int(r.Timeout / time.Second)

	resp := d.response(in.CommandKey, in.Language)
	resp.Success = true
	resp.ActionType = message.ActionConfirmation
	resp.RequiresConfirmation = true
	resp.ConfirmationID = r.ID
	resp.Response = prompt
	resp.Data = map[string]any{"timeout": timeout}

	return &Reply{
		Response: resp,
		Confirmation: &message.ConfirmationRequest{
			ConfirmationID: r.ID,
			CommandKey:     in.CommandKey,
			CommandText:    in.Text,
			Language:       string(in.Language),
			Response:       prompt,
			Timeout:        timeout,
		},
	}
}

func (d *Dispatcher) execute(ctx context.Context, in intent.Intent) *message.CommandResponse {
	res, err := d.router.Route(ctx, in)
	if err != nil {
		kind, msg := message.ErrExecution, compose.MsgExecutionFailed
		if errors.Is(err, automation.ErrUnavailable) {
			kind, msg = message.ErrHostUnavailable, compose.MsgHostUnavailable
		}
		slog.Error("command failed", "command_key", in.CommandKey, "error", err)
		return d.failure(in.CommandKey, in.Language, kind,
			compose.Compose(in.CommandKey, in.Language, compose.Outcome{Failure: msg, Vars: compose.Vars(in.Slots)}))
	}

	resp := d.response(in.CommandKey, in.Language)
	resp.Success = true
	resp.ActionType = message.ActionCommand
	resp.Response = compose.Compose(in.CommandKey, in.Language, compose.Outcome{Success: true, Vars: res.Vars})
	resp.Data = res.Data
	return resp
}

func (d *Dispatcher) response(key string, lang language.Language) *message.CommandResponse {
	return &message.CommandResponse{
		CommandKey: key,
		Language:   string(lang),
		Timestamp:  d.now().UTC(),
	}
}

func (d *Dispatcher) failure(key string, lang language.Language, kind, text string) *message.CommandResponse {
	resp := d.response(key, lang)
	resp.ActionType = message.ActionError
	resp.Error = kind
	resp.Response = text
	return resp
}

func (d *Dispatcher) notify(sessionID string, frame message.Outbound) bool {
	d.mu.RLock()
	n := d.notifier
	d.mu.RUnlock()
	if n == nil {
		return false
	}
	return n.Notify(sessionID, frame)
}

// finish records metrics and history for a processed command.
func (d *Dispatcher) finish(ctx context.Context, req Request, text string, resp *message.CommandResponse, start time.Time) {
	dur := d.now().Sub(start)

	outcome := "success"
	if !resp.Success {
		outcome = resp.Error
	}
	metrics.CommandsTotal.WithLabelValues(resp.CommandKey, resp.Language, outcome).Inc()
	metrics.CommandDuration.WithLabelValues(resp.CommandKey).Observe(dur.Seconds())

	if d.history != nil {
		_, err := d.history.Record(context.WithoutCancel(ctx), history.Entry{
			SessionID:  req.SessionID,
			Source:     req.Source,
			Command:    text,
			CommandKey: resp.CommandKey,
			Language:   resp.Language,
			ActionType: resp.ActionType,
			Success:    resp.Success,
			Response:   resp.Response,
			ErrorKind:  resp.Error,
			DurationMS: dur.Milliseconds(),
			CreatedAt:  start,
		})
		if err != nil {
			slog.Warn("recording history failed", "error", err)
		}
	}

	slog.Info("dispatch complete",
		"session_id", req.SessionID,
		"command_key", resp.CommandKey,
		"success", resp.Success,
		"error", resp.Error,
		"duration", dur)
}
