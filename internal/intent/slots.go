package intent

import (
	"net/url"
	"regexp"
	"strings"
)

var dotWord = regexp.MustCompile(`\s+(?:dot|डॉट)\s+`)

// navPrefixes and navSuffixes are stripped from a spoken website target.
var (
	navPrefixes = []string{"the ", "website ", "site ", "https ", "http ", "www "}
	navSuffixes = []string{
		" kholo", " khol do", " open karo", " open", " par jao", " pe jao",
		" chalu karo", " kar do", " karo", " website", " site", " खोलो", " वेबसाइट",
	}
)

// NavigationTarget turns a spoken site name into a host: "hacker one" and
// "hackerone dot com" both become "hackerone.com". A target without a dot
// gets ".com". A leading "www." is dropped; ExternalURL adds it back.
func NavigationTarget(spoken string) string {
	s := strings.TrimSpace(spoken)
	s = trimAffixes(s, navPrefixes, navSuffixes)
	s = dotWord.ReplaceAllString(" "+s+" ", ".")
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(s, "www.")
	s = strings.Trim(s, ".")
	if s != "" && !strings.Contains(s, ".") {
		s += ".com"
	}
	return s
}

// ExternalURL returns the https URL for a navigation target.
func ExternalURL(target string) string {
	if strings.HasPrefix(target, "www.") {
		return "https://" + target
	}
	return "https://www." + target
}

// youtubeMarkers are removed wherever they appear in a YouTube request.
var youtubeMarkers = []string{
	"on youtube", "in youtube", "from youtube", "youtube par", "youtube pe",
	"youtube mein", "youtube me", "youtube ka", "youtube", "यूट्यूब पर", "यूट्यूब पे", "यूट्यूब",
}

var (
	queryPrefixes = []string{
		"search for ", "search ", "play ", "find ", "look up ", "open ", "watch ",
		"show me ", "show ", "put on ", "please ",
	}
	querySuffixes = []string{
		" search karo", " search kar do", " search", " chalao", " chala do", " lagao",
		" bajao", " dikhao", " play karo", " kholo", " dhoondo", " khojo",
		" par", " pe", " चलाओ", " लगाओ", " दिखाओ", " खोजो",
	}
)

// YouTubeQuery removes the platform keyword and trigger verbs on either
// side of a request, so "search lofi on youtube" and "youtube par lofi
// chalao" both give "lofi". The result is empty when no query remains.
func YouTubeQuery(text string) string {
	s := " " + text + " "
	for _, m := range youtubeMarkers {
		s = strings.ReplaceAll(s, " "+m+" ", " ")
	}
	s = strings.Join(strings.Fields(s), " ")
	return trimAffixes(s, queryPrefixes, querySuffixes)
}

// YouTubeSearchURL returns the results page for query.
func YouTubeSearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}

// GoogleSearchURL returns the results page for query.
func GoogleSearchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// trimAffixes strips any listed prefix or suffix until none applies. A
// lone trigger word ("search", "chalao") trims to the empty string.
func trimAffixes(s string, prefixes, suffixes []string) string {
	for {
		before := s
		for _, p := range prefixes {
			if padded := s + " "; strings.HasPrefix(padded, p) {
				s = strings.TrimSpace(padded[len(p):])
			}
		}
		for _, suf := range suffixes {
			if padded := " " + s; strings.HasSuffix(padded, suf) {
				s = strings.TrimSpace(padded[:len(padded)-len(suf)])
			}
		}
		if s == before {
			return s
		}
	}
}

// folderAliases canonicalizes well-known user folders.
var folderAliases = map[string]string{
	"download": "downloads", "downloads": "downloads", "डाउनलोड": "downloads", "डाउनलोड्स": "downloads",
	"document": "documents", "documents": "documents", "docs": "documents", "डॉक्युमेंट्स": "documents",
	"desktop": "desktop", "डेस्कटॉप": "desktop",
	"picture": "pictures", "pictures": "pictures", "photos": "pictures", "फोटो": "pictures",
	"video": "videos", "videos": "videos", "movies": "videos", "वीडियो": "videos",
	"music": "music", "songs": "music", "म्यूजिक": "music",
	"home": "home",
}

// CanonicalFolder maps a spoken folder to its well-known name, or returns
// the input unchanged.
func CanonicalFolder(name string) string {
	if c, ok := folderAliases[name]; ok {
		return c
	}
	return name
}
