package intent

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotInDirectory is returned when a name has no directory entry.
var ErrNotInDirectory = errors.New("not in directory")

// Directory maps spoken names to identifiers: contacts to phone numbers,
// app aliases to launch identifiers. Lookup tries an exact match first and
// falls back to a case-insensitive one. It is read-only after construction.
type Directory struct {
	entries map[string]string
	folded  map[string]string // lower(name) -> name
}

// NewDirectory copies entries into a Directory.
func NewDirectory(entries map[string]string) *Directory {
	d := &Directory{
		entries: make(map[string]string, len(entries)),
		folded:  make(map[string]string, len(entries)),
	}
	// Sorted so the case-insensitive winner is stable when two names fold together.
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.entries[name] = entries[name]
		lower := strings.ToLower(name)
		if _, dup := d.folded[lower]; !dup {
			d.folded[lower] = name
		}
	}
	return d
}

// LoadDirectory reads a YAML mapping of name to identifier from path and
// merges it over base. A missing file is not an error.
func LoadDirectory(path string, base map[string]string) (*Directory, error) {
	merged := make(map[string]string, len(base))
	for k, v := range base {
		merged[k] = v
	}
	if path == "" {
		return NewDirectory(merged), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDirectory(merged), nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}

	var fromFile map[string]string
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parsing directory %s: %w", path, err)
	}
	for k, v := range fromFile {
		merged[k] = v
	}
	return NewDirectory(merged), nil
}

// Lookup returns the canonical name and identifier for name.
func (d *Directory) Lookup(name string) (canonical, value string, err error) {
	name = strings.TrimSpace(name)
	if v, ok := d.entries[name]; ok {
		return name, v, nil
	}
	if canon, ok := d.folded[strings.ToLower(name)]; ok {
		return canon, d.entries[canon], nil
	}
	return "", "", fmt.Errorf("%q: %w", name, ErrNotInDirectory)
}

// Contains reports whether name resolves.
func (d *Directory) Contains(name string) bool {
	_, _, err := d.Lookup(name)
	return err == nil
}

// Len returns the number of entries.
func (d *Directory) Len() int { return len(d.entries) }

// DefaultApps is the built-in app alias table. Config entries are merged over it.
func DefaultApps() map[string]string {
	return map[string]string{
		"chrome":             "chrome",
		"google chrome":      "chrome",
		"क्रोम":              "chrome",
		"firefox":            "firefox",
		"edge":               "msedge",
		"microsoft edge":     "msedge",
		"brave":              "brave",
		"notepad":            "notepad",
		"नोटपैड":             "notepad",
		"calculator":         "calc",
		"calc":               "calc",
		"कैलकुलेटर":          "calc",
		"paint":              "mspaint",
		"vs code":            "code",
		"vscode":             "code",
		"visual studio code": "code",
		"terminal":           "terminal",
		"command prompt":     "cmd",
		"cmd":                "cmd",
		"powershell":         "powershell",
		"explorer":           "explorer",
		"file explorer":      "explorer",
		"settings":           "settings",
		"सेटिंग्स":           "settings",
		"control panel":      "control",
		"task manager":       "taskmgr",
		"word":               "winword",
		"excel":              "excel",
		"powerpoint":         "powerpnt",
		"outlook":            "outlook",
		"spotify":            "spotify",
		"vlc":                "vlc",
		"telegram":           "telegram",
		"discord":            "discord",
		"zoom":               "zoom",
		"teams":              "teams",
		"slack":              "slack",
		"steam":              "steam",
	}
}
