// Package interpreter defines the conversational fallback used when no
// command rule matches an utterance.
//
// A fallback only ever produces a short spoken-style reply. It never
// chooses a command: command resolution stays with the rule table, so an
// LLM can not trigger an action on its own. Jarvis ships with two backends:
// OpenAI (cloud) and Local (self-hosted via Ollama or any OpenAI-compatible
// server).
package interpreter

import (
	"context"
	"strings"

	"github.com/nadzzz/jarvis/internal/language"
)

// Interpreter produces a conversational reply for an unrecognized utterance.
type Interpreter interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Reply answers text in lang. The text is already redacted.
	Reply(ctx context.Context, text string, lang language.Language) (string, error)

	// Close releases any resources held by the interpreter.
	Close() error
}

// SystemPrompt is the instruction both backends send with every request.
func SystemPrompt(lang language.Language) string {
	var sb strings.Builder
	sb.WriteString("You are Jarvis, a friendly desktop voice assistant.\n")
	sb.WriteString("The user said something that is not one of your desktop commands.\n")
	sb.WriteString("Answer in one or two short sentences suitable for text-to-speech.\n")
	sb.WriteString("Never claim to have opened, closed, deleted or changed anything.\n")
	sb.WriteString("Never ask for passwords, OTPs, PINs or card numbers.\n")
	if lang == language.HI {
		sb.WriteString("Reply in Hindi written in Devanagari script.\n")
	} else {
		sb.WriteString("Reply in English.\n")
	}
	return sb.String()
}

// Clean trims model output to a single plain reply.
func Clean(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.Trim(reply, "\"")
	return strings.Join(strings.Fields(reply), " ")
}
