// Package openai implements the conversational fallback using OpenAI's
// Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/interpreter"
	"github.com/nadzzz/jarvis/internal/language"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Interpreter uses the OpenAI chat API for fallback replies.
type Interpreter struct {
	apiKey          string
	chatURL         string
	completionModel string
	client          *http.Client
}

// New creates a new OpenAI interpreter from config.
func New(cfg config.OpenAIConfig) *Interpreter {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Interpreter{
		apiKey:          cfg.APIKey,
		chatURL:         base + "/chat/completions",
		completionModel: cfg.CompletionModel,
		client:          &http.Client{Timeout: 20 * time.Second},
	}
}

// Name returns the backend identifier.
func (i *Interpreter) Name() string { return "openai" }

// Reply asks the chat model for a short answer in lang.
func (i *Interpreter) Reply(ctx context.Context, text string, lang language.Language) (string, error) {
	reqBody := chatRequest{
		Model: i.completionModel,
		Messages: []chatMessage{
			{Role: "system", Content: interpreter.SystemPrompt(lang)},
			{Role: "user", Content: text},
		},
		Temperature: 0.4,
		MaxTokens:   120,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.chatURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+i.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("chat failed (status %d): %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from chat API")
	}

	reply := interpreter.Clean(chatResp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("empty reply from chat API")
	}

	slog.Debug("fallback reply complete", "backend", "openai", "reply_length", len(reply))
	return reply, nil
}

// Close is a no-op for the OpenAI interpreter.
func (i *Interpreter) Close() error { return nil }

// --- Internal types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
