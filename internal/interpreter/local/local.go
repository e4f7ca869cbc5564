// Package local implements the conversational fallback using a self-hosted
// model. It speaks both Ollama's /api/generate and any OpenAI-compatible
// chat endpoint (Ollama, vLLM, llama.cpp server).
package local

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

// Interpreter uses a self-hosted model for fallback replies.
type Interpreter struct {
	llmEndpoint string
	llmModel    string
	client      *http.Client
}

// New creates a new local interpreter from config.
func New(cfg config.LocalConfig) *Interpreter {
	model := cfg.LLMModel
	if model == "" {
		model = "llama3"
	}
	return &Interpreter{
		llmEndpoint: cfg.LLMEndpoint,
		llmModel:    model,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the backend identifier.
func (i *Interpreter) Name() string { return "local" }

// Reply sends text to the local LLM endpoint.
func (i *Interpreter) Reply(ctx context.Context, text string, lang language.Language) (string, error) {
	systemPrompt := interpreter.SystemPrompt(lang)

	reqBody := map[string]any{
		"model": i.llmModel,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": text},
		},
		"temperature": 0.4,
		"stream":      false,
	}

	// An endpoint ending in /api/generate takes Ollama's native format.
	endpoint := i.llmEndpoint
	if strings.HasSuffix(endpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  i.llmModel,
			"system": systemPrompt,
			"prompt": text,
			"stream": false,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	reply := interpreter.Clean(extractContent(respData))
	if reply == "" {
		return "", fmt.Errorf("empty response from local LLM")
	}

	slog.Debug("fallback reply complete", "backend", "local", "reply_length", len(reply))
	return reply, nil
}

// Close is a no-op for the local interpreter.
func (i *Interpreter) Close() error { return nil }

func extractContent(data []byte) string {
	// OpenAI-compatible: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Ollama: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return ""
}
