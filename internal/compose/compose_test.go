package compose

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/jarvis/internal/intent"
	"github.com/nadzzz/jarvis/internal/language"
)

func hasDevanagari(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Devanagari) {
			return true
		}
	}
	return false
}

func TestEveryCommandKeyHasBothLanguages(t *testing.T) {
	keys := append(intent.NewResolver(nil, nil, nil).Keys(), intent.SecurityAlert)
	for _, key := range keys {
		byLang, ok := messages[MsgKey(key)]
		if !assert.True(t, ok, "no template for %s", key) {
			continue
		}
		assert.NotEmpty(t, byLang[language.EN], key)
		assert.True(t, hasDevanagari(byLang[language.HI]), "hindi template for %s is not in Devanagari", key)
	}
}

func TestComposeOpenAppHindi(t *testing.T) {
	got := Compose(intent.OpenApp, language.HI, Outcome{Success: true, Vars: Vars{"app": "chrome"}})
	assert.Equal(t, "Chrome खोल रहा हूँ।", got)
}

func TestComposeOpenWebsiteEnglish(t *testing.T) {
	got := Compose(intent.OpenWebsite, language.EN, Outcome{Success: true, Vars: Vars{"site": "hackerone.com"}})
	assert.Equal(t, "Opening hackerone.com.", got)
}

func TestComposeFailure(t *testing.T) {
	assert.Equal(t, "Sorry, I couldn't complete that.", Compose(intent.OpenApp, language.EN, Outcome{}))
	assert.Equal(t, "मुझे आपके संपर्कों में priya नहीं मिला।",
		Compose(intent.SendMessage, language.HI, Outcome{Failure: MsgInvalidContact, Vars: Vars{"contact": "priya"}}))
}

func TestConfirm(t *testing.T) {
	assert.Equal(t, "Are you sure you want to shut down the computer?", Confirm(intent.Shutdown, language.EN, nil))
	assert.Equal(t, "क्या आप वाकई Chrome बंद करना चाहते हैं?", Confirm(intent.CloseApp, language.HI, Vars{"app": "chrome"}))
	assert.Equal(t, Text(MsgConfirmDefault, language.EN, nil), Confirm(intent.OpenApp, language.EN, nil))
}

func TestComposeIsPure(t *testing.T) {
	o := Outcome{Success: true, Vars: Vars{"query": "lofi", "url": "https://x"}}
	first := Compose(intent.SearchYouTube, language.EN, o)
	for range 20 {
		assert.Equal(t, first, Compose(intent.SearchYouTube, language.EN, o))
	}
}

func TestTextFallbacks(t *testing.T) {
	assert.Equal(t, "nope", Text("nope", language.EN, nil))
	assert.Equal(t, Text(MsgDone, language.EN, nil), Compose("custom_key", language.EN, Outcome{Success: true}))
}

func TestComposeWithoutHostValues(t *testing.T) {
	tests := []struct {
		key  string
		lang language.Language
		vars Vars
		want string
	}{
		{intent.OCRImage, language.EN, nil, "Text extracted."},
		{intent.OCRPDF, language.HI, Vars{"path": "a.pdf"}, "पीडीएफ से टेक्स्ट निकाल लिया गया।"},
		{intent.SearchFiles, language.EN, Vars{"query": "report"}, "Searched files for report."},
		{intent.Battery, language.EN, Vars{"percent": ""}, "Battery level is not available."},
		{intent.Mute, language.EN, nil, "Toggled mute."},
		{intent.SystemStatus, language.HI, nil, "हो गया।"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := Compose(tt.key, tt.lang, Outcome{Success: true, Vars: tt.vars})
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "{")
		})
	}

	assert.Equal(t, "Extracted 42 characters.", Compose(intent.OCRImage, language.EN, Outcome{Success: true, Vars: Vars{"chars": "42"}}))
	assert.Equal(t, "I couldn't find that contact.", Text(MsgInvalidContact, language.EN, nil))
}
