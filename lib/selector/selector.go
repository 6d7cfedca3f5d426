// Package selector implements ranked-fallback element lookup. The
// target pages change markup and class names without notice, so every
// lookup goes through an ordered list of locators, from the most
// specific to the most general, instead of hard-failing on the first
// structural change.
package selector

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
)

var ErrNotFound = errors.New("no locator resolved to an interactable element")

type Kind int

const (
	CSS Kind = iota
	XPath
)

type Locator struct {
	Kind Kind
	Expr string
}

func Css(expr string) Locator   { return Locator{Kind: CSS, Expr: expr} }
func Xpath(expr string) Locator { return Locator{Kind: XPath, Expr: expr} }

// Resolution reports which locator won, for diagnostics.
type Resolution struct {
	Element *rod.Element
	Index   int
	Locator Locator
}

// Resolve tries each locator in order, splitting the timeout budget
// evenly between them, until one resolves to a live, interactable
// element. Individual locator failures are not errors; only exhausting
// the whole list is.
func Resolve(page *rod.Page, locators []Locator, budget time.Duration) (Resolution, error) {
	if len(locators) == 0 {
		return Resolution{}, ErrNotFound
	}
	per := budget / time.Duration(len(locators))

	for i, loc := range locators {
		el, err := find(page.Timeout(per), loc)
		if err != nil {
			slog.Debug("locator missed", "expr", loc.Expr, "err", err)
			continue
		}
		el = el.CancelTimeout()
		if _, err := el.Interactable(); err != nil {
			slog.Debug("locator matched a non-interactable element", "expr", loc.Expr)
			continue
		}
		return Resolution{Element: el, Index: i, Locator: loc}, nil
	}
	return Resolution{}, ErrNotFound
}

func find(page *rod.Page, loc Locator) (*rod.Element, error) {
	if loc.Kind == XPath {
		return page.ElementX(loc.Expr)
	}
	return page.Element(loc.Expr)
}
