package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/message"
)

// HTTPHost talks to a remote execution agent.
//
//	POST {url}/invoke  body: Call        reply: {"success", "data", "error"}
//	GET  {url}/status  reply: SystemStatusSnapshot
type HTTPHost struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPHost creates a host client from config.
func NewHTTPHost(cfg config.AutomationConfig) *HTTPHost {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPHost{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the host identifier.
func (h *HTTPHost) Name() string { return "http" }

type invokeResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Invoke posts the call to the agent.
func (h *HTTPHost) Invoke(ctx context.Context, call Call) (*Result, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("marshalling call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/invoke", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	h.authorize(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, h.transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, respBody)
	}

	var out invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding invoke response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("failed with status %d", resp.StatusCode)
		}
		return nil, &HostError{CommandKey: call.CommandKey, Message: msg}
	}

	slog.Debug("automation call complete", "command_key", call.CommandKey, "status", resp.StatusCode)
	return &Result{Data: out.Data}, nil
}

// Status fetches the agent's system snapshot.
func (h *HTTPHost) Status(ctx context.Context) (message.SystemStatusSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	h.authorize(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, h.transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, respBody)
	}

	var snap message.SystemStatusSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}
	return snap, nil
}

func (h *HTTPHost) authorize(req *http.Request) {
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

func (h *HTTPHost) transportErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
