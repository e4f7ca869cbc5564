// Package confirm implements the confirmation gate for dangerous commands.
//
// A dangerous intent is parked in a Request until the user approves or
// rejects it, or until its timeout passes. Each request leaves the Pending
// state exactly once: resolve and expiry race on a single compare-and-swap,
// and whichever wins clears the session's pending slot. A session holds at
// most one pending request.
package confirm

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/jarvis/internal/intent"
)

// DefaultTimeout applies when Open is called with a non-positive timeout.
const DefaultTimeout = 30 * time.Second

var (
	// ErrConfirmationInProgress is returned by Open when the session
	// already has a pending request.
	ErrConfirmationInProgress = errors.New("confirmation already in progress")

	// ErrNotFound is returned for an unknown confirmation id.
	ErrNotFound = errors.New("confirmation not found")

	// ErrAlreadyResolved is returned when the request already left Pending.
	ErrAlreadyResolved = errors.New("confirmation already resolved")
)

// State is the lifecycle state of a Request.
type State int32

const (
	Pending State = iota
	Approved
	Rejected
	Expired
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Approved:
		return "APPROVED"
	case Rejected:
		return "REJECTED"
	case Expired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Request is one dangerous intent awaiting a decision.
type Request struct {
	ID        string
	Intent    intent.Intent
	SessionID string
	CreatedAt time.Time
	Timeout   time.Duration

	state      atomic.Int32
	resolvedAt atomic.Int64
	timer      *time.Timer
}

// State returns the current state.
func (r *Request) State() State {
	return State(r.state.Load())
}

// Approved reports whether the request was approved. Only an approved
// request's Intent may be dispatched.
func (r *Request) Approved() bool {
	return r.State() == Approved
}

// transition moves the request out of Pending. It returns false if another
// transition already happened.
func (r *Request) transition(to State, at time.Time) bool {
	if !r.state.CompareAndSwap(int32(Pending), int32(to)) {
		return false
	}
	r.resolvedAt.Store(at.UnixNano())
	return true
}

// ExpireFunc is called once for each request that times out.
type ExpireFunc func(*Request)

// Gate owns every confirmation request in the process.
type Gate struct {
	mu       sync.Mutex
	byID     map[string]*Request
	pending  map[string]string // session id -> request id
	timeout  time.Duration
	onExpire ExpireFunc
	now      func() time.Time
}

// NewGate creates a gate whose requests default to timeout.
func NewGate(timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gate{
		byID:    make(map[string]*Request),
		pending: make(map[string]string),
		timeout: timeout,
		now:     time.Now,
	}
}

// OnExpire registers fn to run when a request times out. It must be set
// before the first Open.
func (g *Gate) OnExpire(fn ExpireFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onExpire = fn
}

// Timeout returns the gate's default timeout.
func (g *Gate) Timeout() time.Duration {
	return g.timeout
}

// Open parks in for sessionID. A zero timeout uses the gate default.
func (g *Gate) Open(in intent.Intent, sessionID string, timeout time.Duration) (*Request, error) {
	if timeout <= 0 {
		timeout = g.timeout
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.pending[sessionID]; ok {
		if r := g.byID[id]; r != nil && r.State() == Pending {
			return nil, ErrConfirmationInProgress
		}
		delete(g.pending, sessionID)
	}

	r := &Request{
		ID:        uuid.NewString(),
		Intent:    in,
		SessionID: sessionID,
		CreatedAt: g.now(),
		Timeout:   timeout,
	}
	g.byID[r.ID] = r
	g.pending[sessionID] = r.ID
	r.timer = time.AfterFunc(timeout, func() { g.expire(r) })

	slog.Debug("confirmation opened",
		"confirmation_id", r.ID, "session_id", sessionID,
		"command_key", in.CommandKey, "timeout", timeout)
	return r, nil
}

// Resolve approves or rejects a pending request. The returned request's
// Intent is dispatchable only when Approved() is true. A request past its
// deadline expires here even if its timer has not run yet.
func (g *Gate) Resolve(id string, approved bool) (*Request, error) {
	g.mu.Lock()
	r, ok := g.byID[id]
	if !ok {
		g.mu.Unlock()
		return nil, ErrNotFound
	}

	now := g.now()
	if now.After(r.CreatedAt.Add(r.Timeout)) {
		expired := r.transition(Expired, now)
		if expired {
			r.timer.Stop()
			g.clearSlot(r)
		}
		fn := g.onExpire
		g.mu.Unlock()

		if expired {
			slog.Debug("confirmation expired on late resolve", "confirmation_id", id, "session_id", r.SessionID)
			if fn != nil {
				fn(r)
			}
		}
		return r, ErrAlreadyResolved
	}
	defer g.mu.Unlock()

	to := Rejected
	if approved {
		to = Approved
	}
	if !r.transition(to, now) {
		return r, ErrAlreadyResolved
	}
	r.timer.Stop()
	g.clearSlot(r)

	slog.Debug("confirmation resolved", "confirmation_id", id, "state", to)
	return r, nil
}

func (g *Gate) expire(r *Request) {
	g.mu.Lock()
	fired := r.transition(Expired, g.now())
	if fired {
		g.clearSlot(r)
	}
	fn := g.onExpire
	g.mu.Unlock()

	if !fired {
		return
	}
	slog.Debug("confirmation expired", "confirmation_id", r.ID, "session_id", r.SessionID)
	if fn != nil {
		fn(r)
	}
}

func (g *Gate) clearSlot(r *Request) {
	if g.pending[r.SessionID] == r.ID {
		delete(g.pending, r.SessionID)
	}
}

// Get returns the request with the given id.
func (g *Gate) Get(id string) (*Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.byID[id]
	return r, ok
}

// Pending returns the session's pending request, if any.
func (g *Gate) Pending(sessionID string) (*Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.pending[sessionID]
	if !ok {
		return nil, false
	}
	r := g.byID[id]
	return r, r != nil
}

// Len returns the number of tracked requests, resolved ones included.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.byID)
}

// Sweep forgets requests that were resolved or expired more than
// retention ago. Pending requests are never swept. It returns the number
// of requests removed.
func (g *Gate) Sweep(retention time.Duration) int {
	cutoff := g.now().Add(-retention).UnixNano()

	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for id, r := range g.byID {
		if r.State() == Pending {
			continue
		}
		if r.resolvedAt.Load() <= cutoff {
			delete(g.byID, id)
			n++
		}
	}
	return n
}

// Close stops every live timer. Pending requests stay pending.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.byID {
		if r.State() == Pending {
			r.timer.Stop()
		}
	}
}
