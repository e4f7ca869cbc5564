// Package language classifies an utterance as English or Hindi and
// normalizes text for rule matching.
//
// Detection is deterministic: any Devanagari rune selects Hindi outright;
// otherwise romanized Hindi markers are counted against English function
// words and Hindi wins only on a strict majority. Ties, including the
// zero-marker case, resolve to English.
package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Language is a supported response language.
type Language string

const (
	// EN is English.
	EN Language = "en"

	// HI is Hindi, written either in Devanagari or romanized (Hinglish).
	HI Language = "hi"
)

// String returns the ISO-639-1 code.
func (l Language) String() string { return string(l) }

// Parse accepts an ISO-639-1 code. Anything other than "en" or "hi" is rejected.
func Parse(code string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en":
		return EN, true
	case "hi":
		return HI, true
	}
	return "", false
}

// Devanagari block.
const (
	devanagariStart = 'ऀ'
	devanagariEnd   = 'ॿ'
)

// hindiMarkers are romanized Hindi words that rarely occur in English speech.
var hindiMarkers = toSet(
	"kholo", "band", "karo", "kar", "chalao", "bhejo", "kaun", "kya", "hai",
	"samay", "tareekh", "din", "aaj", "kal", "suno", "sun", "raha", "mujhe",
	"tum", "aap", "namaste", "shukriya", "dhanyavad", "kaise", "madad",
	"sakte", "ho", "btao", "batao", "bataao", "dekhna", "ruko", "dheere", "tez",
	"badhao", "kam", "aawaz", "awaz", "par", "pe", "ko", "mein", "se", "ka", "ki",
	"ke", "aur", "kahan", "kab", "kyu", "mausam", "tapman", "garmi", "sardi",
	"hisab", "jodo", "ghatao", "guna", "bhag", "kitna", "kitne", "baje",
	"bolo", "kaho", "likho", "dhoondo", "khojo", "hatao", "banao", "naya",
	"wala", "wali", "abhi", "zara", "jao", "lo", "do", "karna",
)

// englishMarkers are English function words and common command verbs.
// The set is disjoint from hindiMarkers.
var englishMarkers = toSet(
	"the", "a", "an", "to", "is", "are", "was", "what", "please", "open",
	"close", "my", "of", "in", "on", "for", "and", "it", "this", "that",
	"with", "can", "you", "i", "your", "how", "who", "show", "turn", "set",
	"from", "at", "up", "down", "search", "send", "play", "tell", "me",
	"take", "go", "find", "start", "stop", "saying", "message", "time",
	"date", "today", "now", "computer", "volume", "off", "hello", "hey",
)

// Detect returns the language of text.
func Detect(text string) Language {
	for _, r := range text {
		if r >= devanagariStart && r <= devanagariEnd {
			return HI
		}
	}

	var hindi, english int
	for _, tok := range Tokens(text) {
		if _, ok := hindiMarkers[tok]; ok {
			hindi++
		}
		if _, ok := englishMarkers[tok]; ok {
			english++
		}
	}
	if hindi > english {
		return HI
	}
	return EN
}

// Tokens lower-cases text, strips punctuation and splits on whitespace.
func Tokens(text string) []string {
	return strings.Fields(stripPunct(strings.ToLower(text), false))
}

// Normalize returns text in NFC form, lower-cased, with punctuation
// removed (dots between word characters are kept) and whitespace collapsed.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	return strings.Join(strings.Fields(stripPunct(strings.ToLower(text), true)), " ")
}

// stripPunct replaces punctuation with spaces. When keepDots is set, a dot
// surrounded by letters or digits is preserved so "hackerone.com" survives.
func stripPunct(s string, keepDots bool) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		switch {
		case r == '.' && keepDots && i > 0 && i < len(rs)-1 && isWordRune(rs[i-1]) && isWordRune(rs[i+1]):
			b.WriteRune(r)
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
