// Package message defines the frames and payloads exchanged with clients.
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound frame types.
const (
	TypeCommand   = "command"
	TypePing      = "ping"
	TypeGetStatus = "get_status"
)

// Outbound frame types.
const (
	TypeCommandResponse     = "command_response"
	TypeSystemStatus        = "system_status"
	TypeConfirmationRequest = "confirmation_request"
	TypePong                = "pong"
	TypeError               = "error"
)

// Action types carried in CommandResponse.ActionType.
const (
	ActionCommand      = "COMMAND"
	ActionConfirmation = "CONFIRMATION_REQUIRED"
	ActionConversation = "CONVERSATION"
	ActionSecurity     = "SECURITY_ALERT"
	ActionUnknown      = "UNKNOWN"
	ActionError        = "ERROR"
)

// Error kinds carried in CommandResponse.Error.
const (
	ErrParse                  = "parse_error"
	ErrValidation             = "validation_error"
	ErrConfirmationInProgress = "confirmation_in_progress"
	ErrNotFound               = "not_found"
	ErrAlreadyResolved        = "already_resolved"
	ErrConfirmationExpired    = "confirmation_expired"
	ErrExecution              = "execution_error"
	ErrHostUnavailable        = "host_unavailable"
	ErrSecurityAlert          = "security_alert"
	ErrDangerousDisabled      = "dangerous_disabled"
	ErrBusy                   = "busy"
)

// Inbound is a frame received from a client.
type Inbound struct {
	// Type is one of TypeCommand, TypePing, TypeGetStatus.
	Type string `json:"type"`

	// Command is the utterance for a command frame.
	Command string `json:"command,omitempty"`

	// Language is the client's language hint ("en" or "hi"). The detected
	// language of Command always decides the reply language.
	Language string `json:"language,omitempty"`
}

// Outbound is a frame sent to a client. Exactly the fields relevant to
// Type are populated.
type Outbound struct {
	Type string `json:"type"`

	// Data carries a CommandResponse or a SystemStatusSnapshot.
	Data any `json:"data,omitempty"`

	// Message is the text of an error frame.
	Message string `json:"message,omitempty"`

	// Timestamp is set on pong frames.
	Timestamp *time.Time `json:"timestamp,omitempty"`

	*ConfirmationRequest
}

// CommandRequest is a stateless command submission (REST or gRPC).
type CommandRequest struct {
	// Command is the utterance text.
	Command string `json:"command"`

	// Language is an optional hint; see Inbound.Language.
	Language string `json:"language,omitempty"`

	// SessionID ties a dangerous command's confirmation to a caller.
	// Empty means a per-request anonymous session.
	SessionID string `json:"session_id,omitempty"`
}

// CommandResponse is the result of processing one command.
type CommandResponse struct {
	Success              bool           `json:"success"`
	ActionType           string         `json:"action_type"`
	Response             string         `json:"response"`
	CommandKey           string         `json:"command_key"`
	Language             string         `json:"language"`
	RequiresConfirmation bool           `json:"requires_confirmation,omitempty"`
	ConfirmationID       string         `json:"confirmation_id,omitempty"`
	Data                 map[string]any `json:"data,omitempty"`
	Error                string         `json:"error,omitempty"`
	Timestamp            time.Time      `json:"timestamp"`
}

// ConfirmationRequest asks the client to approve a dangerous command.
type ConfirmationRequest struct {
	ConfirmationID string `json:"confirmation_id"`
	CommandKey     string `json:"command_key"`
	CommandText    string `json:"command_text"`
	Language       string `json:"language"`
	Response       string `json:"response"`
	Timeout        int    `json:"timeout"`
}

// ConfirmRequest is the body of the stateless confirmation endpoint.
type ConfirmRequest struct {
	ConfirmationID string `json:"confirmation_id"`
	Approved       bool   `json:"approved"`
}

// ConfirmResult is the reply of the stateless confirmation endpoint.
type ConfirmResult struct {
	Success  bool             `json:"success"`
	Approved bool             `json:"approved"`
	Result   *CommandResponse `json:"result,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// SystemStatusSnapshot is opaque monitoring data passed through to clients.
type SystemStatusSnapshot map[string]any

// NewCommandResponse wraps r in a command_response frame.
func NewCommandResponse(r *CommandResponse) Outbound {
	return Outbound{Type: TypeCommandResponse, Data: r}
}

// NewSystemStatus wraps s in a system_status frame.
func NewSystemStatus(s SystemStatusSnapshot) Outbound {
	return Outbound{Type: TypeSystemStatus, Data: s}
}

// NewConfirmationRequest wraps c in a confirmation_request frame.
func NewConfirmationRequest(c *ConfirmationRequest) Outbound {
	return Outbound{Type: TypeConfirmationRequest, ConfirmationRequest: c}
}

// NewPong returns a pong frame stamped with now.
func NewPong(now time.Time) Outbound {
	return Outbound{Type: TypePong, Timestamp: &now}
}

// NewError returns an error frame.
func NewError(format string, args ...any) Outbound {
	return Outbound{Type: TypeError, Message: fmt.Sprintf(format, args...)}
}

// DecodeInbound parses a client frame. Unknown types decode successfully;
// the caller answers them with an error frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("decoding frame: %w", err)
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("decoding frame: missing type")
	}
	return in, nil
}
