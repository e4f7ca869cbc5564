// Package automation is the boundary to the execution host that actually
// drives the desktop: launching apps, pressing media keys, moving files.
//
// The daemon never touches the OS itself. Every resolved command becomes a
// Call that a Host carries out, either a remote agent reached over HTTP or
// the in-process simulator used for dry runs and tests.
package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/nadzzz/jarvis/internal/message"
)

// ErrUnavailable is returned when the host cannot be reached at all.
var ErrUnavailable = errors.New("automation host unavailable")

// Call is one capability invocation.
type Call struct {
	// CommandKey names the capability (e.g. "open_app").
	CommandKey string `json:"command_key"`

	// Args are the resolved slots plus any derived values such as a URL.
	Args map[string]string `json:"args,omitempty"`

	// Language lets the host localize anything it shows on screen.
	Language string `json:"language"`
}

// Result is what the host reports back for a successful call.
type Result struct {
	// Data is capability specific (e.g. {"chars": 120} for OCR).
	Data map[string]any `json:"data,omitempty"`
}

// Host executes capability calls.
type Host interface {
	// Name returns the host identifier ("http", "simulated").
	Name() string

	// Invoke runs one capability. A returned error means the capability
	// failed; it never means the command was not understood.
	Invoke(ctx context.Context, call Call) (*Result, error)

	// Status returns a snapshot of the host machine for status pushes.
	Status(ctx context.Context) (message.SystemStatusSnapshot, error)
}

// HostError is a failure reported by the host for a specific call.
type HostError struct {
	CommandKey string
	Message    string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("%s: %s", e.CommandKey, e.Message)
}
