package selector

import (
	"strings"

	"github.com/go-rod/rod"
)

// LabelPattern matches a control by its visible label. The platform
// does not expose stable identifiers for its action controls; the label
// text is the only part of the markup that has stayed put.
type LabelPattern struct {
	// every substring must appear in the label
	Contains []string
}

func (p LabelPattern) Matches(label string) bool {
	if len(p.Contains) == 0 {
		return false
	}
	for _, part := range p.Contains {
		if !strings.Contains(label, part) {
			return false
		}
	}
	return true
}

// ResolveByLabel enumerates every element matching tag and returns the
// first whose visible label matches the pattern.
func ResolveByLabel(page *rod.Page, tag string, pattern LabelPattern) (*rod.Element, error) {
	els, err := page.Elements(tag)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		label, err := el.Text()
		if err != nil {
			continue
		}
		if pattern.Matches(label) {
			return el, nil
		}
	}
	return nil, ErrNotFound
}
