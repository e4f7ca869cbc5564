// Package security screens raw utterances for credential leaks and
// phishing language before anything else touches them.
//
// The filter runs on the raw text, ahead of normalization and logging, so a
// spoken password or OTP never reaches the resolver, the history store, or a
// log line. A blocked utterance produces a security alert and nothing else.
package security

import (
	"regexp"
	"strings"
)

// Reason identifies why an utterance was blocked.
type Reason string

const (
	ReasonCredential Reason = "credential"
	ReasonOTP        Reason = "otp"
	ReasonPhishing   Reason = "phishing"
	ReasonCardNumber Reason = "card_number"
)

// Verdict is the outcome of screening one utterance.
type Verdict struct {
	Blocked bool
	Reasons []Reason
}

// sensitiveKeywords name a secret the user is about to read out.
var sensitiveKeywords = []string{
	"password", "passwd", "passcode", "pass code", "otp", "one time password",
	"pin code", "atm pin", "upi pin", "cvv", "card number", "bank details",
	"account number", "secret code", "security code",
	"पासवर्ड", "ओटीपी", "पिन", "सीवीवी", "कार्ड नंबर",
}

// phishingPhrases are scam scripts commonly spoken to victims.
var phishingPhrases = []string{
	"share your otp", "share the otp", "tell me your otp", "verify your account",
	"account will be blocked", "account blocked", "kyc update", "update your kyc",
	"otp batao", "otp bolo", "password batao", "password bolo",
	"ओटीपी बताओ", "पासवर्ड बताओ",
}

var (
	// otpDigits matches a standalone 4–8 digit run.
	otpDigits = regexp.MustCompile(`(?:^|\D)\d{4,8}(?:\D|$)`)

	// cardDigits matches 13–19 digits, optionally grouped by spaces or dashes.
	cardDigits = regexp.MustCompile(`(?:\d[ -]?){12,18}\d`)
)

// Filter screens utterances. The zero value is ready to use.
type Filter struct{}

// NewFilter returns a Filter.
func NewFilter() *Filter { return &Filter{} }

// Check classifies raw. It never mutates or logs its input.
func (f *Filter) Check(raw string) Verdict {
	lower := strings.ToLower(raw)
	var v Verdict

	for _, p := range phishingPhrases {
		if strings.Contains(lower, p) {
			v.add(ReasonPhishing)
			break
		}
	}

	keyword := false
	for _, k := range sensitiveKeywords {
		if containsWord(lower, k) {
			keyword = true
			v.add(ReasonCredential)
			break
		}
	}

	if cardDigits.MatchString(lower) && countDigits(lower) >= 13 {
		v.add(ReasonCardNumber)
	}

	if keyword && otpDigits.MatchString(lower) {
		v.add(ReasonOTP)
	}

	return v
}

func (v *Verdict) add(r Reason) {
	v.Blocked = true
	for _, have := range v.Reasons {
		if have == r {
			return
		}
	}
	v.Reasons = append(v.Reasons, r)
}

// containsWord reports whether phrase occurs in s on word boundaries.
// Boundaries are spaces or the ends of s, which works for Devanagari where
// regexp \b does not.
func containsWord(s, phrase string) bool {
	padded := " " + strings.Join(strings.FieldsFunc(s, isSeparator), " ") + " "
	return strings.Contains(padded, " "+phrase+" ")
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', ',', '.', '!', '?', ':', ';', '"', '\'', '(', ')', '।':
		return true
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

const placeholder = "[REDACTED]"

var (
	longDigits = regexp.MustCompile(`\d{4,}`)
	afterKey   = regexp.MustCompile(`(?i)(password|passcode|otp|pin|cvv|पासवर्ड|ओटीपी)(\s+(?:is|hai|है)?\s*)(\S+)`)
)

// Redact masks digit runs of four or more and the token following a
// sensitive keyword. Use it on any user text headed for a log line or the
// history store.
func Redact(s string) string {
	s = afterKey.ReplaceAllString(s, "${1}${2}"+placeholder)
	return longDigits.ReplaceAllString(s, placeholder)
}
