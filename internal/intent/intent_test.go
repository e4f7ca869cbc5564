package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/jarvis/internal/language"
)

func newTestResolver() *Resolver {
	contacts := NewDirectory(map[string]string{"Rahul": "+919876543210", "Mom": "+919812345678"})
	return NewResolver(contacts, NewDirectory(DefaultApps()), DefaultDangerSet())
}

func resolve(r *Resolver, text string) Intent {
	return r.Resolve(language.Normalize(text), language.Detect(text))
}

func TestResolveCommandKeys(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		text string
		key  string
	}{
		{"hello", Greeting},
		{"Namaste Jarvis", Greeting},
		{"who are you?", Identity},
		{"tum kaun ho", Identity},
		{"what can you do", Help},
		{"open whatsapp", OpenWhatsApp},
		{"open youtube", OpenYouTube},
		{"youtube kholo", OpenYouTube},
		{"search lofi beats on youtube", SearchYouTube},
		{"next song", MediaNext},
		{"gaana chalao", MediaPlay},
		{"take a screenshot", TakeScreenshot},
		{"extract text from image", OCRImage},
		{"read pdf", OCRPDF},
		{"show desktop", ShowDesktop},
		{"minimize", MinimizeWindow},
		{"close this window", CloseWindow},
		{"create folder projects", CreateFolder},
		{"empty recycle bin", EmptyRecycleBin},
		{"delete file notes.txt", DeleteFile},
		{"search file quarterly report", SearchFiles},
		{"open downloads", OpenFolder},
		{"downloads kholo", OpenFolder},
		{"search for golang generics", GoogleSearch},
		{"mausam dhoondo", GoogleSearch},
		{"close chrome", CloseApp},
		{"open browser", OpenBrowser},
		{"Chrome kholo", OpenApp},
		{"open calculator", OpenApp},
		{"open hackerone", OpenWebsite},
		{"go to github dot com", OpenWebsite},
		{"shutdown", Shutdown},
		{"computer band karo", Shutdown},
		{"कंप्यूटर बंद करो", Shutdown},
		{"restart", Restart},
		{"hibernate", Hibernate},
		{"aawaz badhao", VolumeUp},
		{"volume down", VolumeDown},
		{"aawaz band karo", Mute},
		{"system status", SystemStatus},
		{"what time is it", Time},
		{"time kya hai", Time},
		{"what is the date", Date},
		{"battery kitni hai", Battery},
		{"type hello world", TypeText},
		{"blah blah unknown words", Unknown},
		{"", Unknown},
		{"   ", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := resolve(r, tt.text)
			assert.Equal(t, tt.key, in.CommandKey)
			assert.Nil(t, in.Invalid)
		})
	}
}

func TestResolveOpenAppHinglish(t *testing.T) {
	in := resolve(newTestResolver(), "Chrome kholo")
	assert.Equal(t, OpenApp, in.CommandKey)
	assert.Equal(t, "chrome", in.Slot("app"))
	assert.Equal(t, language.HI, in.Language)
	assert.False(t, in.IsDangerous)
}

func TestResolveOpenWebsite(t *testing.T) {
	in := resolve(newTestResolver(), "open hackerone")
	require.Equal(t, OpenWebsite, in.CommandKey)
	assert.Equal(t, "hackerone.com", in.Slot("site"))
	assert.Equal(t, "https://www.hackerone.com", in.Slot("url"))
	assert.Equal(t, language.EN, in.Language)
}

func TestResolveWebsiteGuards(t *testing.T) {
	r := newTestResolver()
	assert.Equal(t, OpenYouTube, resolve(r, "open youtube").CommandKey)
	assert.Equal(t, OpenWhatsApp, resolve(r, "open whatsapp").CommandKey)
	assert.NotEqual(t, OpenWebsite, resolve(r, "start music").CommandKey)
}

func TestResolveShutdownIsDangerous(t *testing.T) {
	in := resolve(newTestResolver(), "shutdown")
	assert.Equal(t, Shutdown, in.CommandKey)
	assert.True(t, in.IsDangerous)
	assert.Equal(t, language.EN, in.Language)
}

func TestResolveYouTubeQueryBothOrders(t *testing.T) {
	r := newTestResolver()

	in := resolve(r, "play arijit singh songs on youtube")
	require.Equal(t, SearchYouTube, in.CommandKey)
	assert.Equal(t, "arijit singh songs", in.Slot("query"))

	in = resolve(r, "youtube par arijit singh songs chalao")
	require.Equal(t, SearchYouTube, in.CommandKey)
	assert.Equal(t, "arijit singh songs", in.Slot("query"))
	assert.Equal(t, "https://www.youtube.com/results?search_query=arijit+singh+songs", in.Slot("url"))
}

func TestResolveSendMessage(t *testing.T) {
	r := newTestResolver()

	for _, text := range []string{
		"send message to rahul saying running late",
		"message Rahul saying running late",
		"rahul ko message bhejo running late",
		"rahul ko kaho running late",
	} {
		t.Run(text, func(t *testing.T) {
			in := resolve(r, text)
			require.Equal(t, SendMessage, in.CommandKey)
			require.Nil(t, in.Invalid)
			assert.Equal(t, "Rahul", in.Slot("contact"))
			assert.Equal(t, "+919876543210", in.Slot("phone"))
			assert.Equal(t, "running late", in.Slot("message"))
		})
	}
}

func TestResolveSendMessageUnknownContact(t *testing.T) {
	in := resolve(newTestResolver(), "send message to priya saying hi")
	assert.Equal(t, SendMessage, in.CommandKey)
	require.NotNil(t, in.Invalid)
	assert.Equal(t, "contact", in.Invalid.Slot)
	assert.Equal(t, "priya", in.Invalid.Value)
}

func TestResolveCreateFolderWithoutName(t *testing.T) {
	in := resolve(newTestResolver(), "create a new folder")
	assert.Equal(t, CreateFolder, in.CommandKey)
	require.NotNil(t, in.Invalid)
	assert.Equal(t, "name", in.Invalid.Slot)
}

func TestResolveIsDeterministic(t *testing.T) {
	r := newTestResolver()
	for _, text := range []string{"Chrome kholo", "open hackerone", "shutdown", "xyz"} {
		first := resolve(r, text)
		for range 20 {
			assert.Equal(t, first, resolve(r, text))
		}
	}
}

func TestDangerMembershipOnly(t *testing.T) {
	r := NewResolver(nil, NewDirectory(DefaultApps()), NewDangerSet(OpenApp))
	assert.True(t, resolve(r, "open chrome").IsDangerous)
	assert.False(t, resolve(r, "shutdown").IsDangerous)
}

func TestKeysCoverTable(t *testing.T) {
	keys := newTestResolver().Keys()
	assert.Contains(t, keys, Unknown)
	for _, rule := range DefaultRules() {
		assert.Contains(t, keys, rule.Key, rule.Name)
	}
	assert.NotContains(t, keys, SecurityAlert)
}

func TestResolveMessageBodyMentioningHelp(t *testing.T) {
	r := newTestResolver()

	in := resolve(r, "send message to mom saying please help me")
	require.Equal(t, SendMessage, in.CommandKey)
	assert.Equal(t, "Mom", in.Slot("contact"))
	assert.Equal(t, "please help me", in.Slot("message"))

	in = resolve(r, "mom ko kaho madad chahiye")
	require.Equal(t, SendMessage, in.CommandKey)
	assert.Equal(t, "madad chahiye", in.Slot("message"))

	for _, text := range []string{"help", "help me", "madad karo", "मदद", "aap kya kar sakte ho"} {
		assert.Equal(t, Help, resolve(r, text).CommandKey, text)
	}
	assert.NotEqual(t, Help, resolve(r, "search for help desk software").CommandKey)
}

func TestResolveDictationIsNotACommand(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		text string
		want string
	}{
		{"type i am going to sleep", "i am going to sleep"},
		{"write restart the server later", "restart the server later"},
		{"type what time is it", "what time is it"},
		{"shutdown ho gaya likho", "shutdown ho gaya"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := resolve(r, tt.text)
			require.Equal(t, TypeText, in.CommandKey)
			assert.False(t, in.IsDangerous)
			assert.Equal(t, tt.want, in.Slot("text"))
		})
	}
}

func TestResolveCloseYouTube(t *testing.T) {
	r := newTestResolver()
	for _, text := range []string{"close youtube", "exit youtube", "youtube band karo"} {
		t.Run(text, func(t *testing.T) {
			in := resolve(r, text)
			require.Equal(t, CloseApp, in.CommandKey)
			assert.Equal(t, "youtube", in.Slot("app"))
		})
	}
	assert.Equal(t, OpenYouTube, resolve(r, "open youtube").CommandKey)
}
