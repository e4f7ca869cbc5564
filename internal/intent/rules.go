package intent

import (
	"regexp"
	"strings"
)

// Command keys. Every key here has exactly one handler in the dispatch router.
const (
	Greeting = "greeting"
	Identity = "identity"
	Help     = "help"

	SendMessage   = "send_message"
	OpenWhatsApp  = "open_whatsapp"
	SearchYouTube = "search_youtube"
	OpenYouTube   = "open_youtube"
	GoogleSearch  = "google_search"
	OpenBrowser   = "open_browser"
	OpenWebsite   = "open_website"

	MediaPlay      = "media_play"
	MediaNext      = "media_next"
	MediaPrevious  = "media_previous"
	TakeScreenshot = "take_screenshot"
	OCRImage       = "ocr_image"
	OCRPDF         = "ocr_pdf"

	ShowDesktop    = "show_desktop"
	MinimizeWindow = "minimize_window"
	MaximizeWindow = "maximize_window"
	CloseWindow    = "close_window"
	SnapLeft       = "snap_left"
	SnapRight      = "snap_right"
	OpenApp        = "open_app"
	CloseApp       = "close_app"

	CreateFolder    = "create_folder"
	DeleteFile      = "delete_file"
	EmptyRecycleBin = "empty_recycle_bin"
	SearchFiles     = "search_files"
	OpenFolder      = "open_folder"
	TypeText        = "type_text"

	Shutdown     = "shutdown"
	Restart      = "restart"
	Sleep        = "sleep"
	Hibernate    = "hibernate"
	VolumeUp     = "volume_up"
	VolumeDown   = "volume_down"
	Mute         = "mute"
	Time         = "time"
	Date         = "date"
	Battery      = "battery"
	SystemStatus = "system_status"

	// Unknown is emitted when no rule matches.
	Unknown = "unknown"

	// SecurityAlert is emitted by the security filter, never by a rule.
	SecurityAlert = "security_alert"
)

// Rule is one row of the resolution table.
type Rule struct {
	// Name is a stable identifier used in logs and tests.
	Name string

	// Key is the command key the rule emits.
	Key string

	// Match returns the submatches when the rule applies, nil otherwise.
	// Phrase matchers return the whole text as the only element.
	Match func(text string, env *Env) []string

	// Slots extracts parameters from the submatches. Nil means no slots.
	Slots func(m []string, env *Env) (map[string]string, error)
}

// systemTargets are never valid app or website targets; "computer band
// karo" is a shutdown request, not a close-app one.
var systemTargets = toSet(
	"computer", "the computer", "pc", "the pc", "system", "laptop", "window",
	"this window", "the window", "aawaz", "awaz", "volume", "sound", "music",
	"gaana", "video", "wifi", "bluetooth", "internet", "screen", "everything", "sab",
	"कंप्यूटर", "सिस्टम", "पीसी", "आवाज़", "आवाज", "विंडो",
)

// genericTargets would otherwise turn into bogus domains ("music.com").
var genericTargets = toSet(
	"music", "song", "songs", "video", "videos", "file", "files", "folder",
	"app", "application", "it", "this", "that", "something", "timer", "tab",
)

// closeRequest leaves "close youtube" to the close-app rule.
var closeRequest = regexp.MustCompile(`^(?:close|quit|exit|kill) |(?:band karo|band kar do|bandh karo|close karo|close kar do|बंद करो|बंद कर दो)$`)

// DefaultRules returns the ordered resolution table. Anchored greeting and
// help rules come first, then messaging and dictation, then navigation,
// media and window rules with their guards, then system, volume, time and
// date. Unknown is implicit at the end.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "greeting", Key: Greeting,
			Match: patterns(`^(?:hello|hi|hey|namaste|namaskar|good (?:morning|afternoon|evening)|नमस्ते|नमस्कार)(?: jarvis| जार्विस)?$`),
		},
		{
			Name: "identity", Key: Identity,
			Match: phrases("who are you", "what is your name", "what s your name", "tum kaun ho",
				"aap kaun ho", "kaun ho tum", "tumhara naam kya hai", "aapka naam kya hai",
				"तुम कौन हो", "आप कौन हो"),
		},
		{
			Name: "help", Key: Help,
			Match: patterns(
				`^(?:please )?(?:help|madad|मदद)(?: me| karo| kijiye| chahiye| करो| चाहिए)?(?: jarvis)?$`,
				`^(?:jarvis )?(?:what (?:all )?can you do|(?:tum |aap )?kya kar sakte ho|(?:तुम |आप )?क्या कर सकते हो)(?: jarvis)?$`,
			),
		},

		// Messaging.
		{
			Name: "send-message", Key: SendMessage,
			Match: patterns(
				`^(?:send (?:a )?(?:whatsapp )?(?:message|msg|text) to|whatsapp|message|text) (.+?) (?:saying|that) (.+)$`,
				`^(.+?) ko (?:whatsapp )?(?:message|msg|sandesh) (?:bhejo|bhej do|karo)(?: ki)? (.+)$`,
				`^(.+?) ko (?:kaho|bolo|bol do|keh do)(?: ki)? (.+)$`,
				`^(.+?) को (?:मैसेज|संदेश) भेजो (.+)$`,
			),
			Slots: messageSlots,
		},
		{
			Name: "open-whatsapp", Key: OpenWhatsApp,
			Match: patterns(`^(?:open whatsapp|whatsapp (?:kholo|khol do|open karo|chalu karo)|व्हाट्सएप खोलो)$`),
		},

		// Dictation. The dictated words can contain any phrase below.
		{
			Name: "type-text", Key: TypeText,
			Match: patterns(`^(?:type|write) (.+)$`, `^(.+?) (?:likho|type karo|लिखो)$`),
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				return map[string]string{"text": m[1]}, nil
			},
		},

		// YouTube, before any generic open or search rule.
		{
			Name: "search-youtube", Key: SearchYouTube,
			Match: func(text string, _ *Env) []string {
				if (!containsWord(text, "youtube") && !containsWord(text, "यूट्यूब")) || closeRequest.MatchString(text) {
					return nil
				}
				q := YouTubeQuery(text)
				if q == "" {
					return nil
				}
				return []string{text, q}
			},
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				return map[string]string{"query": m[1], "url": YouTubeSearchURL(m[1])}, nil
			},
		},
		{
			Name: "open-youtube", Key: OpenYouTube,
			Match: guarded(phrases("youtube", "यूट्यूब"), func(m []string, _ *Env) bool {
				return !closeRequest.MatchString(m[0])
			}),
			Slots: func([]string, *Env) (map[string]string, error) {
				return map[string]string{"url": "https://www.youtube.com"}, nil
			},
		},

		// Media keys.
		{
			Name: "media-next", Key: MediaNext,
			Match: phrases("next track", "next song", "skip song", "skip track", "skip this song",
				"agla gaana", "agla song", "अगला गाना"),
		},
		{
			Name: "media-previous", Key: MediaPrevious,
			Match: phrases("previous track", "previous song", "last song", "pichla gaana", "पिछला गाना"),
		},
		{
			Name: "media-play", Key: MediaPlay,
			Match: phrases("play music", "play song", "play media", "pause music", "pause media",
				"pause song", "resume music", "resume media", "play pause", "pause", "resume",
				"start music", "stop music", "music chalao", "gaana chalao", "gaane chalao",
				"म्यूजिक चलाओ", "गाना चलाओ"),
		},

		// Screen capture and OCR.
		{
			Name: "ocr-pdf", Key: OCRPDF,
			Match: patterns(
				`^(?:extract text from|read|ocr) (?:the |this )?pdf(?: (.+))?$`,
				`^(?:(.+?) )?pdf (?:padho|se text nikalo)$`,
				`^(?:(.+?) )?पीडीएफ पढ़ो$`,
			),
			Slots: optionalPath,
		},
		{
			Name: "ocr-image", Key: OCRImage,
			Match: patterns(
				`^(?:extract|read|get|copy) text from (?:the |this |an? )?(?:image|photo|picture|screenshot)(?: (.+))?$`,
				`^(?:(.+?) )?(?:image|photo) se text nikalo$`,
				`^ocr(?: (.+))?$`,
			),
			Slots: optionalPath,
		},
		{
			Name: "take-screenshot", Key: TakeScreenshot,
			Match: phrases("screenshot", "screen capture", "स्क्रीनशॉट"),
		},

		// Window management.
		{
			Name: "show-desktop", Key: ShowDesktop,
			Match: phrases("show desktop", "show the desktop", "minimize all", "desktop dikhao", "डेस्कटॉप दिखाओ"),
		},
		{
			Name: "minimize-window", Key: MinimizeWindow,
			Match: phrases("minimize", "minimise", "chhota karo", "मिनिमाइज", "छोटा करो"),
		},
		{
			Name: "maximize-window", Key: MaximizeWindow,
			Match: phrases("maximize", "maximise", "full screen", "fullscreen", "bada karo", "मैक्सिमाइज", "बड़ा करो"),
		},
		{
			Name: "close-window", Key: CloseWindow,
			Match: phrases("close window", "close this window", "close the window", "window band karo",
				"window band", "विंडो बंद करो"),
		},
		{
			Name: "snap-left", Key: SnapLeft,
			Match: phrases("snap left", "snap window left", "move window left", "bayan taraf", "बाईं तरफ"),
		},
		{
			Name: "snap-right", Key: SnapRight,
			Match: phrases("snap right", "snap window right", "move window right", "dayan taraf", "दाईं तरफ"),
		},

		// Files and folders. Create and delete precede the catch-all folder pattern.
		{
			Name: "create-folder", Key: CreateFolder,
			Match: patterns(
				`^(?:create|make) (?:a )?(?:new )?folder(?: named| called)? (.+)$`,
				`^(?:naya folder|new folder) (.+?)(?: banao)?$`,
				`^(.+?) (?:naam ka |name ka )?(?:naya )?folder banao$`,
				`^(?:create|make) (?:a )?(?:new )?folder$`,
			),
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				if len(m) < 2 || strings.TrimSpace(m[1]) == "" {
					return nil, &ValidationError{Slot: "name", Reason: "folder name is required"}
				}
				return map[string]string{"name": strings.TrimSpace(m[1])}, nil
			},
		},
		{
			Name: "empty-recycle-bin", Key: EmptyRecycleBin,
			Match: phrases("empty recycle bin", "empty the recycle bin", "empty trash", "empty the trash",
				"recycle bin khali karo", "trash saaf karo", "kachra saaf karo",
				"रीसायकल बिन खाली करो", "कचरा साफ करो"),
		},
		{
			Name: "delete-file", Key: DeleteFile,
			Match: patterns(
				`^(?:delete|remove) (?:the )?(?:file )?(.+)$`,
				`^(.+?) (?:file )?(?:delete karo|delete kar do|hatao|hata do)$`,
				`^(.+?) (?:फाइल )?(?:डिलीट करो|हटाओ)$`,
			),
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				return map[string]string{"path": strings.TrimSpace(m[1])}, nil
			},
		},
		{
			Name: "search-files", Key: SearchFiles,
			Match: patterns(
				`^(?:search|find|look) (?:for )?(?:the |a )?(?:file|files) (?:named |called )?(.+)$`,
				`^(.+?) (?:file|files|फाइल) (?:dhoondo|dhundo|khojo|search karo|ढूंढो|खोजो)$`,
				`^(?:file|files) (?:dhoondo|dhundo|khojo) (.+)$`,
			),
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				return map[string]string{"query": strings.TrimSpace(m[1])}, nil
			},
		},
		{
			Name: "open-folder", Key: OpenFolder,
			Match: patterns(
				`^open (?:the |my )?(downloads?|documents?|docs|desktop|pictures?|photos|videos?|movies|music|home)(?: folder| directory)?$`,
				`^(?:the |my )?(downloads?|documents?|docs|desktop|pictures?|photos|videos?|movies|music|home)(?: folder| directory)? (?:kholo|khol do|open karo|dikhao)$`,
				`^(?:open (?:the )?folder|folder kholo) (.+)$`,
				`^(?:open )?(?:the |my )?(.+?) folder(?: kholo| open karo)?$`,
				`^(डाउनलोड्स?|डॉक्युमेंट्स|डेस्कटॉप|फोटो|वीडियो|म्यूजिक)(?: फोल्डर)? खोलो$`,
			),
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				return map[string]string{"folder": CanonicalFolder(strings.TrimSpace(m[1]))}, nil
			},
		},

		// Web search after YouTube and file search.
		{
			Name: "google-search", Key: GoogleSearch,
			Match: patterns(
				`^(?:google search|search google for|google|search for|search|look up)(?: for)? (.+?)(?: on google| google par| google pe)?$`,
				`^(.+?) (?:google (?:karo|search karo|par search karo|pe search karo|par dhoondo)|search karo|dhoondo|dhundo|khojo|pata karo)$`,
				`^(.+?) (?:गूगल करो|सर्च करो|खोजो|ढूंढो)$`,
			),
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				q := strings.TrimSpace(m[1])
				return map[string]string{"query": q, "url": GoogleSearchURL(q)}, nil
			},
		},

		// Applications and websites.
		{
			Name: "close-app", Key: CloseApp,
			Match: guarded(patterns(
				`^(?:close|quit|exit|kill) (?:the |my )?(.+?)(?: app| application)?$`,
				`^(.+?)(?: app)? (?:band karo|band kar do|bandh karo|close karo|close kar do)$`,
				`^(.+?) बंद करो$`,
			), func(m []string, _ *Env) bool {
				return !isSystemTarget(m[1])
			}),
			Slots: appSlots,
		},
		{
			Name: "open-browser", Key: OpenBrowser,
			Match: phrases("open browser", "open the browser", "browser kholo", "open a new tab",
				"new tab", "naya tab", "internet kholo", "ब्राउज़र खोलो", "नया टैब"),
		},
		{
			Name: "open-app", Key: OpenApp,
			Match: guarded(patterns(openPatterns...), func(m []string, env *Env) bool {
				return env.Apps.Contains(strings.TrimSpace(m[1]))
			}),
			Slots: appSlots,
		},
		{
			Name: "open-website", Key: OpenWebsite,
			Match: guarded(patterns(append([]string{
				`^(?:go to|visit|browse) (?:the )?(.+)$`,
				`^(.+?) (?:par jao|pe jao|पर जाओ)$`,
			}, openPatterns...)...), func(m []string, _ *Env) bool {
				raw := strings.TrimSpace(m[1])
				if isSystemTarget(raw) || isGenericTarget(raw) {
					return false
				}
				if strings.Contains(raw, "youtube") || strings.Contains(raw, "whatsapp") || strings.Contains(raw, "यूट्यूब") {
					return false
				}
				return NavigationTarget(raw) != ""
			}),
			Slots: func(m []string, _ *Env) (map[string]string, error) {
				target := NavigationTarget(m[1])
				return map[string]string{"site": target, "url": ExternalURL(target)}, nil
			},
		},

		// Power.
		{
			Name: "shutdown", Key: Shutdown,
			Match: phrases("shutdown", "shut down", "power off", "turn off the computer", "turn off computer",
				"turn off the pc", "switch off the computer", "computer band karo", "computer band kar do",
				"pc band karo", "system band karo", "laptop band karo", "computer band", "pc band",
				"शटडाउन", "कंप्यूटर बंद करो", "सिस्टम बंद करो", "पीसी बंद करो"),
		},
		{
			Name: "restart", Key: Restart,
			Match: phrases("restart", "reboot", "dobara shuru karo", "fir se chalu karo", "रीस्टार्ट", "रिबूट", "दोबारा शुरू करो"),
		},
		{
			Name: "hibernate", Key: Hibernate,
			Match: phrases("hibernate", "हाइबरनेट"),
		},
		{
			Name: "sleep", Key: Sleep,
			Match: phrases("sleep", "go to sleep", "sone do", "so jao", "suspend", "स्लीप", "सो जाओ"),
		},

		// Volume.
		{
			Name: "mute", Key: Mute,
			Match: phrases("mute", "unmute", "silent", "khamosh", "aawaz band karo", "awaz band karo",
				"volume band karo", "sound band karo", "म्यूट", "खामोश", "आवाज़ बंद करो", "आवाज बंद करो"),
		},
		{
			Name: "volume-up", Key: VolumeUp,
			Match: phrases("volume up", "increase volume", "increase the volume", "turn up the volume",
				"turn up volume", "raise volume", "louder", "sound up", "aawaz badhao", "awaz badhao",
				"volume badhao", "sound badhao", "tez karo", "आवाज़ बढ़ाओ", "आवाज बढ़ाओ", "वॉल्यूम बढ़ाओ"),
		},
		{
			Name: "volume-down", Key: VolumeDown,
			Match: phrases("volume down", "decrease volume", "decrease the volume", "turn down the volume",
				"turn down volume", "lower volume", "reduce volume", "quieter", "sound down",
				"aawaz kam karo", "awaz kam karo", "volume kam karo", "volume ghatao", "dheere karo",
				"आवाज़ कम करो", "आवाज कम करो", "वॉल्यूम कम करो"),
		},

		// Status queries.
		{
			Name: "system-status", Key: SystemStatus,
			Match: phrases("system status", "pc status", "computer status", "system check", "system info", "सिस्टम स्टेटस"),
		},
		{
			Name: "time", Key: Time,
			Match: phrases("time", "samay", "kitne baje", "baje kya hue", "समय", "कितने बजे", "टाइम"),
		},
		{
			Name: "date", Key: Date,
			Match: phrases("date", "what day", "today s date", "tareekh", "aaj kya din hai", "aaj ka din",
				"तारीख", "आज कौन सा दिन है", "दिन क्या है"),
		},
		{
			Name: "battery", Key: Battery,
			Match: phrases("battery", "charge kitna hai", "kitni charge hai", "बैटरी"),
		},

	}
}

// openPatterns capture the target of an "open X" / "X kholo" request.
var openPatterns = []string{
	`^(?:open|launch|start|run) (?:the |my )?(.+?)(?: app| application)?$`,
	`^(?:the )?(.+?)(?: app)? (?:kholo|khol do|open karo|chalu karo|start karo|chalao|launch karo)$`,
	`^(.+?) (?:खोलो|चालू करो|चलाओ|ओपन करो)$`,
}

func messageSlots(m []string, env *Env) (map[string]string, error) {
	name, body := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	slots := map[string]string{"contact": name, "message": body}
	if body == "" {
		return slots, &ValidationError{Slot: "message", Reason: "message is empty"}
	}
	canon, phone, err := env.Contacts.Lookup(name)
	if err != nil {
		return slots, &ValidationError{Slot: "contact", Value: name, Reason: "unknown contact"}
	}
	slots["contact"] = canon
	slots["phone"] = phone
	return slots, nil
}

func appSlots(m []string, env *Env) (map[string]string, error) {
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil, &ValidationError{Slot: "app", Reason: "app name is required"}
	}
	if canon, id, err := env.Apps.Lookup(name); err == nil {
		return map[string]string{"app": canon, "target": id}, nil
	}
	return map[string]string{"app": name, "target": name}, nil
}

func optionalPath(m []string, _ *Env) (map[string]string, error) {
	if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		return map[string]string{"path": strings.TrimSpace(m[1])}, nil
	}
	return nil, nil
}

// phrases matches when any phrase occurs in text on word boundaries.
func phrases(ps ...string) func(string, *Env) []string {
	return func(text string, _ *Env) []string {
		for _, p := range ps {
			if containsWord(text, p) {
				return []string{text}
			}
		}
		return nil
	}
}

// patterns returns the submatches of the first expression that matches.
func patterns(exprs ...string) func(string, *Env) []string {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return func(text string, _ *Env) []string {
		for _, re := range res {
			if m := re.FindStringSubmatch(text); m != nil {
				return m
			}
		}
		return nil
	}
}

// guarded wraps a matcher with a predicate on its submatches.
func guarded(match func(string, *Env) []string, ok func([]string, *Env) bool) func(string, *Env) []string {
	return func(text string, env *Env) []string {
		m := match(text, env)
		if m == nil || !ok(m, env) {
			return nil
		}
		return m
	}
}

func containsWord(text, phrase string) bool {
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

func isSystemTarget(s string) bool {
	_, ok := systemTargets[strings.TrimSpace(s)]
	return ok
}

func isGenericTarget(s string) bool {
	_, ok := genericTargets[strings.TrimSpace(s)]
	return ok
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
