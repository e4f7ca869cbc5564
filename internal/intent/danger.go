package intent

import "sort"

// DangerSet is the set of command keys that must pass the confirmation gate.
// Membership is the only test; no rule can override it.
type DangerSet map[string]struct{}

// NewDangerSet builds a set from keys.
func NewDangerSet(keys ...string) DangerSet {
	d := make(DangerSet, len(keys))
	for _, k := range keys {
		d[k] = struct{}{}
	}
	return d
}

// DefaultDangerSet covers power state changes, destructive file operations
// and closing applications.
func DefaultDangerSet() DangerSet {
	return NewDangerSet(Shutdown, Restart, Sleep, Hibernate, DeleteFile, EmptyRecycleBin, CloseApp)
}

// Contains reports whether key is dangerous.
func (d DangerSet) Contains(key string) bool {
	_, ok := d[key]
	return ok
}

// Keys returns the members in sorted order.
func (d DangerSet) Keys() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
