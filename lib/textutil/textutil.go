package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeHandle lowercases a social handle and strips the leading @
// and any whitespace, so handles compare by identity rather than by
// how the feed happened to render them.
func NormalizeHandle(handle string) string {
	handle = strings.ToLower(handle)
	handle = strings.Trim(handle, " \n\t")
	handle = strings.TrimPrefix(handle, "@")
	handle = whitespaceRegex.ReplaceAllString(handle, "")
	return handle
}

// MatchHandle reports whether the handle is one of the given matchers,
// comparing normalized forms.
func MatchHandle(handle string, matchers []string) bool {
	handle = NormalizeHandle(handle)
	for _, m := range matchers {
		if handle == NormalizeHandle(m) {
			return true
		}
	}
	return false
}
