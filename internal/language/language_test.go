package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"devanagari wins outright", "क्रोम खोलो", HI},
		{"single devanagari rune in english text", "open the browser अभी", HI},
		{"romanized hindi", "Chrome kholo", HI},
		{"hinglish question", "time kya hai", HI},
		{"english command", "open the downloads folder", EN},
		{"no markers defaults to english", "shutdown", EN},
		{"empty defaults to english", "", EN},
		{"tie defaults to english", "open kholo", EN},
		{"punctuation ignored", "Chrome, kholo!", HI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	for _, text := range []string{"Chrome kholo", "what time is it", "volume badhao", "xyz"} {
		first := Detect(text)
		for range 50 {
			assert.Equal(t, first, Detect(text), text)
		}
	}
}

func TestMarkerSetsAreDisjoint(t *testing.T) {
	for w := range hindiMarkers {
		_, dup := englishMarkers[w]
		assert.False(t, dup, "marker %q is in both sets", w)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "open hackerone.com", Normalize("  Open   HackerOne.com! "))
	assert.Equal(t, "chrome kholo", Normalize("Chrome, kholo."))
	assert.Equal(t, "what time is it", Normalize("What time is it?"))
	assert.Equal(t, "क्रोम खोलो", Normalize("क्रोम खोलो।"))
}

func TestParse(t *testing.T) {
	l, ok := Parse("HI")
	assert.True(t, ok)
	assert.Equal(t, HI, l)

	l, ok = Parse("en")
	assert.True(t, ok)
	assert.Equal(t, EN, l)

	_, ok = Parse("fr")
	assert.False(t, ok)
}
