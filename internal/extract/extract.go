// Package extract pulls candidate handles out of free-form feed text.
package extract

import (
	"regexp"
	"timesniper/lib/textutil"
)

var mentionRegex = regexp.MustCompile(`@(\w+)`)

// Candidate is a normalized handle proposed for an acquisition attempt.
type Candidate struct {
	Identifier string
}

// Extractor finds mention-style handles in text. It is a pure function
// of its input: no side effects, no network access.
type Extractor struct {
	// handles that are never candidates, e.g. the feed's own
	// promotional account. Compared case-insensitively.
	Exclude []string
}

// Handles returns the ordered, de-duplicated candidate handles found in
// the text, with the excluded accounts removed.
func (e Extractor) Handles(text string) []Candidate {
	var out []Candidate
	seen := map[string]bool{}

	for _, m := range mentionRegex.FindAllStringSubmatch(text, -1) {
		handle := textutil.NormalizeHandle(m[1])
		if handle == "" || seen[handle] {
			continue
		}
		seen[handle] = true
		if textutil.MatchHandle(handle, e.Exclude) {
			continue
		}
		out = append(out, Candidate{Identifier: handle})
	}
	return out
}
