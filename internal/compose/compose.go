// Package compose renders user-facing replies from bilingual templates.
//
// Every command key and every failure kind has one English and one Hindi
// template. Templates take named placeholders ("{app}", "{query}") filled
// from slots or handler data. Composition is pure: the same key, language
// and outcome always give the same string.
package compose

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"

	"github.com/nadzzz/jarvis/internal/language"
)

// MsgKey identifies a template. Command keys are valid MsgKeys.
type MsgKey string

// Non-command templates.
const (
	MsgDone                   MsgKey = "done"
	MsgConfirmDefault         MsgKey = "confirm.default"
	MsgCancelled              MsgKey = "cancelled"
	MsgExpired                MsgKey = "confirmation_expired"
	MsgConfirmationInProgress MsgKey = "confirmation_in_progress"
	MsgDangerousDisabled      MsgKey = "dangerous_disabled"
	MsgExecutionFailed        MsgKey = "execution_error"
	MsgHostUnavailable        MsgKey = "host_unavailable"
	MsgInvalidContact         MsgKey = "validation.contact"
	MsgInvalidDefault         MsgKey = "validation.default"
	MsgBusy                   MsgKey = "busy"
	MsgEmptyCommand           MsgKey = "empty_command"
)

// Vars are the placeholder values for one reply.
type Vars map[string]string

// Outcome is what happened to a command, as far as the reply cares.
type Outcome struct {
	Success bool
	Vars    Vars

	// Failure selects the template when Success is false.
	// Empty means MsgExecutionFailed.
	Failure MsgKey
}

// Compose renders the reply for a command key.
func Compose(key string, lang language.Language, o Outcome) string {
	if !o.Success {
		f := o.Failure
		if f == "" {
			f = MsgExecutionFailed
		}
		return Text(f, lang, o.Vars)
	}
	if _, ok := messages[MsgKey(key)]; !ok {
		return Text(MsgDone, lang, o.Vars)
	}
	return Text(MsgKey(key), lang, o.Vars)
}

// Confirm renders the confirmation prompt for a dangerous command.
func Confirm(key string, lang language.Language, vars Vars) string {
	msg := MsgKey("confirm." + key)
	if _, ok := messages[msg]; !ok {
		msg = MsgConfirmDefault
	}
	return Text(msg, lang, vars)
}

// Text renders msg in lang. A language without its own template falls
// back to English; an unknown key renders as the key itself. When vars
// lack a placeholder the template needs, the key's plain variant is used,
// or MsgDone when it has none.
func Text(msg MsgKey, lang language.Language, vars Vars) string {
	byLang, ok := messages[msg]
	if !ok {
		return string(msg)
	}
	tmpl := pick(byLang, lang)
	if missing(tmpl, vars) {
		tmpl = pick(messages[MsgDone], lang)
		if alt, ok := plain[msg]; ok && !missing(pick(alt, lang), vars) {
			tmpl = pick(alt, lang)
		}
	}
	return fill(tmpl, vars)
}

func pick(byLang map[language.Language]string, lang language.Language) string {
	if tmpl, ok := byLang[lang]; ok {
		return tmpl
	}
	return byLang[language.EN]
}

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// missing reports whether tmpl names a placeholder absent from vars.
func missing(tmpl string, vars Vars) bool {
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if v, ok := vars[m[1]]; !ok || v == "" {
			return true
		}
	}
	return false
}

// Has reports whether a template exists for msg.
func Has(msg MsgKey) bool {
	_, ok := messages[msg]
	return ok
}

func fill(tmpl string, vars Vars) string {
	if len(vars) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		if k == "app" {
			// Casers are stateful; one per use.
			v = cases.Title(xlang.Und).String(v)
		}
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
