package compose

import (
	"github.com/nadzzz/jarvis/internal/intent"
	"github.com/nadzzz/jarvis/internal/language"
)

const (
	en = language.EN
	hi = language.HI
)

var messages = map[MsgKey]map[language.Language]string{
	intent.Greeting: {
		en: "Hello! How can I help you?",
		hi: "नमस्ते! मैं आपकी क्या मदद कर सकता हूँ?",
	},
	intent.Identity: {
		en: "I am Jarvis, your desktop assistant.",
		hi: "मैं जार्विस हूँ, आपका डेस्कटॉप सहायक।",
	},
	intent.Help: {
		en: "I can open apps and websites, search Google and YouTube, send WhatsApp messages, manage files and windows, control the volume, and tell you the time.",
		hi: "मैं ऐप और वेबसाइट खोल सकता हूँ, गूगल और यूट्यूब पर खोज सकता हूँ, व्हाट्सएप संदेश भेज सकता हूँ, फाइलें और विंडो संभाल सकता हूँ, आवाज़ नियंत्रित कर सकता हूँ और समय बता सकता हूँ।",
	},

	intent.SendMessage: {
		en: "Message sent to {contact}.",
		hi: "{contact} को संदेश भेज दिया गया है।",
	},
	intent.OpenWhatsApp: {
		en: "Opening WhatsApp.",
		hi: "व्हाट्सएप खोल रहा हूँ।",
	},
	intent.SearchYouTube: {
		en: "Searching YouTube for {query}.",
		hi: "यूट्यूब पर {query} खोज रहा हूँ।",
	},
	intent.OpenYouTube: {
		en: "Opening YouTube.",
		hi: "यूट्यूब खोल रहा हूँ।",
	},
	intent.GoogleSearch: {
		en: "Searching Google for {query}.",
		hi: "गूगल पर {query} खोज रहा हूँ।",
	},
	intent.OpenBrowser: {
		en: "Opening the browser.",
		hi: "ब्राउज़र खोल रहा हूँ।",
	},
	intent.OpenWebsite: {
		en: "Opening {site}.",
		hi: "{site} खोल रहा हूँ।",
	},

	intent.MediaPlay: {
		en: "Toggled playback.",
		hi: "मीडिया चला या रोक दिया गया है।",
	},
	intent.MediaNext: {
		en: "Playing the next track.",
		hi: "अगला गाना चला रहा हूँ।",
	},
	intent.MediaPrevious: {
		en: "Playing the previous track.",
		hi: "पिछला गाना चला रहा हूँ।",
	},
	intent.TakeScreenshot: {
		en: "Screenshot saved.",
		hi: "स्क्रीनशॉट सेव हो गया।",
	},
	intent.OCRImage: {
		en: "Extracted {chars} characters.",
		hi: "{chars} अक्षर निकाले गए।",
	},
	intent.OCRPDF: {
		en: "Extracted {chars} characters from the PDF.",
		hi: "पीडीएफ से {chars} अक्षर निकाले गए।",
	},

	intent.ShowDesktop: {
		en: "Showing desktop.",
		hi: "डेस्कटॉप दिखा रहा हूँ।",
	},
	intent.MinimizeWindow: {
		en: "Minimized window.",
		hi: "विंडो छोटी कर दी गई है।",
	},
	intent.MaximizeWindow: {
		en: "Maximized window.",
		hi: "विंडो बड़ी कर दी गई है।",
	},
	intent.CloseWindow: {
		en: "Closed the window.",
		hi: "विंडो बंद कर दी गई है।",
	},
	intent.SnapLeft: {
		en: "Window snapped left.",
		hi: "विंडो बाईं ओर कर दी गई है।",
	},
	intent.SnapRight: {
		en: "Window snapped right.",
		hi: "विंडो दाईं ओर कर दी गई है।",
	},
	intent.OpenApp: {
		en: "Opening {app}.",
		hi: "{app} खोल रहा हूँ।",
	},
	intent.CloseApp: {
		en: "Closed {app}.",
		hi: "{app} बंद कर दिया गया है।",
	},

	intent.CreateFolder: {
		en: "Created folder {name}.",
		hi: "फोल्डर {name} बना दिया गया है।",
	},
	intent.DeleteFile: {
		en: "File moved to trash: {path}.",
		hi: "फाइल ट्रैश में डाल दी गई: {path}।",
	},
	intent.EmptyRecycleBin: {
		en: "Recycle bin emptied.",
		hi: "रीसायकल बिन खाली कर दिया गया है।",
	},
	intent.SearchFiles: {
		en: "Found {count} files matching {query}.",
		hi: "{query} से मिलती {count} फाइलें मिलीं।",
	},
	intent.OpenFolder: {
		en: "Opened folder: {folder}.",
		hi: "फोल्डर खोला गया: {folder}।",
	},
	intent.TypeText: {
		en: "Text entered.",
		hi: "टेक्स्ट एंटर कर दिया गया है।",
	},

	intent.Shutdown: {
		en: "Shutting down the system.",
		hi: "सिस्टम बंद हो रहा है।",
	},
	intent.Restart: {
		en: "Restarting the system.",
		hi: "सिस्टम दोबारा शुरू हो रहा है।",
	},
	intent.Sleep: {
		en: "Putting the system to sleep.",
		hi: "सिस्टम स्लीप मोड में जा रहा है।",
	},
	intent.Hibernate: {
		en: "Hibernating the system.",
		hi: "सिस्टम हाइबरनेट हो रहा है।",
	},
	intent.VolumeUp: {
		en: "Volume increased.",
		hi: "आवाज़ बढ़ा दी गई है।",
	},
	intent.VolumeDown: {
		en: "Volume decreased.",
		hi: "आवाज़ कम कर दी गई है।",
	},
	intent.Mute: {
		en: "Toggled mute.",
		hi: "म्यूट बदल दिया गया है।",
	},
	intent.Time: {
		en: "The current time is {time}.",
		hi: "अभी का समय {time} है।",
	},
	intent.Date: {
		en: "Today is {date}.",
		hi: "आज {date} है।",
	},
	intent.Battery: {
		en: "Battery is at {percent}%.",
		hi: "बैटरी {percent}% है।",
	},
	intent.SystemStatus: {
		en: "System status: {summary}.",
		hi: "सिस्टम स्थिति: {summary}।",
	},

	intent.Unknown: {
		en: "I'm sorry, I didn't understand that command.",
		hi: "क्षमा करें, मुझे यह समझ नहीं आया।",
	},
	intent.SecurityAlert: {
		en: "For your safety I won't handle passwords, OTPs or card numbers. Never share them with anyone.",
		hi: "आपकी सुरक्षा के लिए मैं पासवर्ड, ओटीपी या कार्ड नंबर नहीं संभालूँगा। इन्हें कभी किसी से साझा न करें।",
	},

	// Confirmation prompts.
	"confirm." + intent.Shutdown: {
		en: "Are you sure you want to shut down the computer?",
		hi: "क्या आप वाकई कंप्यूटर बंद करना चाहते हैं?",
	},
	"confirm." + intent.Restart: {
		en: "Are you sure you want to restart the computer?",
		hi: "क्या आप वाकई कंप्यूटर दोबारा शुरू करना चाहते हैं?",
	},
	"confirm." + intent.Sleep: {
		en: "Are you sure you want to put the computer to sleep?",
		hi: "क्या आप वाकई कंप्यूटर को स्लीप मोड में डालना चाहते हैं?",
	},
	"confirm." + intent.Hibernate: {
		en: "Are you sure you want to hibernate the computer?",
		hi: "क्या आप वाकई कंप्यूटर को हाइबरनेट करना चाहते हैं?",
	},
	"confirm." + intent.DeleteFile: {
		en: "Are you sure you want to delete {path}?",
		hi: "क्या आप वाकई {path} हटाना चाहते हैं?",
	},
	"confirm." + intent.EmptyRecycleBin: {
		en: "Are you sure you want to empty the recycle bin?",
		hi: "क्या आप वाकई रीसायकल बिन खाली करना चाहते हैं?",
	},
	"confirm." + intent.CloseApp: {
		en: "Are you sure you want to close {app}?",
		hi: "क्या आप वाकई {app} बंद करना चाहते हैं?",
	},
	"confirm." + intent.SendMessage: {
		en: "Send message to {contact}?",
		hi: "{contact} को संदेश भेजें?",
	},
	MsgConfirmDefault: {
		en: "Are you sure you want to continue?",
		hi: "क्या आप वाकई आगे बढ़ना चाहते हैं?",
	},

	// Outcomes and failures.
	MsgDone: {
		en: "Done.",
		hi: "हो गया।",
	},
	MsgCancelled: {
		en: "Command cancelled by user.",
		hi: "आपके कहने पर कमांड रद्द कर दी गई।",
	},
	MsgExpired: {
		en: "Confirmation timed out. Action cancelled.",
		hi: "पुष्टि का समय समाप्त हो गया। कार्य रद्द कर दिया गया है।",
	},
	MsgConfirmationInProgress: {
		en: "Please answer the pending confirmation first.",
		hi: "कृपया पहले लंबित पुष्टि का उत्तर दें।",
	},
	MsgDangerousDisabled: {
		en: "Dangerous commands are disabled.",
		hi: "खतरनाक कमांड बंद हैं।",
	},
	MsgExecutionFailed: {
		en: "Sorry, I couldn't complete that.",
		hi: "क्षमा करें, मैं यह पूरा नहीं कर सका।",
	},
	MsgHostUnavailable: {
		en: "The automation service is unavailable right now.",
		hi: "ऑटोमेशन सेवा अभी उपलब्ध नहीं है।",
	},
	MsgInvalidContact: {
		en: "I couldn't find {contact} in your contacts.",
		hi: "मुझे आपके संपर्कों में {contact} नहीं मिला।",
	},
	MsgInvalidDefault: {
		en: "I need a few more details to do that.",
		hi: "इसके लिए मुझे थोड़ी और जानकारी चाहिए।",
	},
	MsgBusy: {
		en: "Still working on your previous command.",
		hi: "मैं अभी आपकी पिछली कमांड पर काम कर रहा हूँ।",
	},
	MsgEmptyCommand: {
		en: "Please say a command.",
		hi: "कृपया कोई कमांड बोलें।",
	},
}

// plain are the variants used when the host leaves out a reply value.
var plain = map[MsgKey]map[language.Language]string{
	intent.OCRImage: {
		en: "Text extracted.",
		hi: "टेक्स्ट निकाल लिया गया।",
	},
	intent.OCRPDF: {
		en: "Text extracted from the PDF.",
		hi: "पीडीएफ से टेक्स्ट निकाल लिया गया।",
	},
	intent.SearchFiles: {
		en: "Searched files for {query}.",
		hi: "{query} के लिए फाइलें खोजी गईं।",
	},
	intent.Battery: {
		en: "Battery level is not available.",
		hi: "बैटरी की जानकारी उपलब्ध नहीं है।",
	},
	MsgInvalidContact: {
		en: "I couldn't find that contact.",
		hi: "मुझे वह संपर्क नहीं मिला।",
	},
}
