// Package transport defines the contract shared by the request/response
// transports.
//
// The HTTP and gRPC adapters both drive the same command pipeline. They
// differ only in framing: each one decodes a request, hands it to the
// Service and encodes what comes back. The persistent websocket session
// lives in package session and is mounted by the HTTP transport.
package transport

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nadzzz/jarvis/internal/confirm"
	"github.com/nadzzz/jarvis/internal/dispatch"
	"github.com/nadzzz/jarvis/internal/message"
)

// Service is the command pipeline as the transports see it.
// *dispatch.Dispatcher satisfies it.
type Service interface {
	Handle(ctx context.Context, req dispatch.Request) *dispatch.Reply
	Confirm(ctx context.Context, id string, approved bool) (*message.ConfirmResult, error)
	Status(ctx context.Context) (message.SystemStatusSnapshot, error)
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier ("grpc", "http").
	Name() string

	// Listen serves requests until the context is cancelled.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}

// Request turns a stateless command submission into a pipeline request.
// Callers that omit a session id get a fresh one, so any confirmation the
// command opens is reachable only through its confirmation id.
func Request(source string, in message.CommandRequest) dispatch.Request {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = source + "-" + uuid.New().String()
	}
	return dispatch.Request{
		SessionID:    sessionID,
		Source:       source,
		Text:         in.Command,
		LanguageHint: in.Language,
	}
}

// IsGone reports whether a confirmation error means the id cannot be
// resolved any more: it never existed or was already decided.
func IsGone(err error) bool {
	return errors.Is(err, confirm.ErrNotFound) || errors.Is(err, confirm.ErrAlreadyResolved)
}
