// Package intent maps a normalized utterance to a command key and its slots.
//
// Resolution walks a static, ordered rule table and stops at the first rule
// whose matcher fires. Specific rules come before general ones, so "open
// youtube" never reaches the website rule and "computer band karo" never
// reaches close-app. The same input always yields the same Intent.
package intent

import (
	"errors"
	"fmt"

	"github.com/nadzzz/jarvis/internal/language"
)

// Intent is the resolved meaning of one utterance.
type Intent struct {
	// CommandKey names the capability to invoke (e.g. "open_app", "shutdown").
	CommandKey string `json:"command_key"`

	// Slots are the typed parameters extracted from the utterance.
	Slots map[string]string `json:"slots,omitempty"`

	// Language is the utterance language; every reply uses it.
	Language language.Language `json:"language"`

	// IsDangerous is set when CommandKey is in the danger set.
	IsDangerous bool `json:"is_dangerous"`

	// Text is the normalized utterance the rules were matched against.
	Text string `json:"text"`

	// Invalid is set when a rule matched but a slot failed validation.
	// Such an intent is answered with an error and never dispatched.
	Invalid *ValidationError `json:"invalid,omitempty"`
}

// Slot returns the named slot or "".
func (in Intent) Slot(name string) string {
	return in.Slots[name]
}

// ValidationError reports a slot that could not be filled or resolved.
type ValidationError struct {
	Slot   string `json:"slot"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Slot, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Slot, e.Value, e.Reason)
}

// Resolver evaluates the rule table against normalized text.
type Resolver struct {
	rules  []Rule
	env    *Env
	danger DangerSet
}

// Env carries the directories slot extractors validate against.
type Env struct {
	Contacts *Directory
	Apps     *Directory
}

// NewResolver builds a resolver over the default rule table.
// Nil directories are treated as empty.
func NewResolver(contacts, apps *Directory, danger DangerSet) *Resolver {
	if contacts == nil {
		contacts = NewDirectory(nil)
	}
	if apps == nil {
		apps = NewDirectory(nil)
	}
	if danger == nil {
		danger = DefaultDangerSet()
	}
	return &Resolver{
		rules:  DefaultRules(),
		env:    &Env{Contacts: contacts, Apps: apps},
		danger: danger,
	}
}

// Resolve returns the intent for text. text must already be normalized
// (see language.Normalize). An empty utterance resolves to Unknown.
func (r *Resolver) Resolve(text string, lang language.Language) Intent {
	in := Intent{CommandKey: Unknown, Language: lang, Text: text}
	if text == "" {
		return in
	}

	for _, rule := range r.rules {
		m := rule.Match(text, r.env)
		if m == nil {
			continue
		}
		in.CommandKey = rule.Key
		if rule.Slots != nil {
			slots, err := rule.Slots(m, r.env)
			if err != nil {
				in.Invalid = asValidation(err)
			}
			in.Slots = slots
		}
		break
	}

	in.IsDangerous = r.danger.Contains(in.CommandKey)
	return in
}

// Keys returns every command key the resolver can emit, Unknown included.
func (r *Resolver) Keys() []string {
	seen := map[string]bool{Unknown: true}
	keys := []string{Unknown}
	for _, rule := range r.rules {
		if !seen[rule.Key] {
			seen[rule.Key] = true
			keys = append(keys, rule.Key)
		}
	}
	return keys
}

// IsDangerous reports whether key requires confirmation.
func (r *Resolver) IsDangerous(key string) bool {
	return r.danger.Contains(key)
}

func asValidation(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return &ValidationError{Reason: err.Error()}
}
