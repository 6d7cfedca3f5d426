// Package feed defines the upstream promotion-event surface. Two
// interchangeable sources produce events: one polls the feed's API,
// the other scrapes the account page through the browser session.
package feed

import (
	"context"
	"time"
)

// Event is one unit of upstream signal. Immutable once produced.
type Event struct {
	// stable upstream id in API mode; a synthesized (author, text-hash)
	// key in scrape mode where no stable id is exposed
	ID         string
	Author     string
	Text       string
	ObservedAt time.Time
	IsRepost   bool
	// original author handle when repost metadata exposes it directly;
	// empty means the promoted identity must be extracted from Text
	RepostOf string
}

// Source produces the current batch of promotion events. Implementations
// may re-list events across polls; the caller is responsible for
// deduplication.
type Source interface {
	Poll(ctx context.Context) ([]Event, error)
}
