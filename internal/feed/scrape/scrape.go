// Package scrape produces promotion events by reading the target
// account's feed page directly through the browser session. It exists
// for when API access is unavailable; the tradeoff is that posts landing
// and scrolling away between polls are lost, an accepted limitation of
// the cursor-less page surface.
package scrape

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"timesniper/internal/feed"
	"timesniper/lib/browser"

	"github.com/go-rod/rod"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("timesniper.feed.scrape")

const defaultBaseURL = "https://x.com"
const pageSettle = 2 * time.Second

type Config struct {
	// handle of the account whose page is scraped, without the @
	Account string `json:"account"`
	// cap on post elements inspected per poll
	MaxPosts int    `json:"max_posts"`
	BaseURL  string `json:"base_url"`
	// applied to timestamp attributes that carry no zone
	TzOffsetHours int `json:"tz_offset_hours"`
}

type Source struct {
	session *browser.Session
	cfg     Config
	now     func() time.Time
}

func NewSource(session *browser.Session, cfg Config) (*Source, error) {
	if cfg.Account == "" {
		return nil, fmt.Errorf("feed account is not configured")
	}
	if cfg.MaxPosts <= 0 {
		cfg.MaxPosts = 10
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Source{session: session, cfg: cfg, now: time.Now}, nil
}

// Poll re-reads the account page and surfaces the posts from the last
// minute. Older posts were either handled on a previous poll or missed
// for good.
func (s *Source) Poll(ctx context.Context) ([]feed.Event, error) {
	ctx, span := tracer.Start(ctx, "Poll")
	defer span.End()

	url := fmt.Sprintf("%s/%s", s.cfg.BaseURL, s.cfg.Account)
	if err := s.session.Navigate(url, pageSettle); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open account page")
		return nil, err
	}

	articles, err := s.session.Page.Context(ctx).Elements(postArticle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list post elements")
		return nil, err
	}
	if len(articles) > s.cfg.MaxPosts {
		articles = articles[:s.cfg.MaxPosts]
	}

	now := s.now()
	var events []feed.Event
	for _, article := range articles {
		ev, ok := s.readPost(article, now)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	slog.DebugContext(ctx, "scraped feed page", "inspected", len(articles), "recent", len(events))
	return events, nil
}

var mentionInAuthor = regexp.MustCompile(`@(\w+)`)

// readPost turns one post element into an event, or reports false when
// the post is stale or unreadable.
func (s *Source) readPost(article *rod.Element, now time.Time) (feed.Event, bool) {
	stampEl, err := article.Element(postTimestamp)
	if err != nil {
		return feed.Event{}, false
	}
	if !s.postIsRecent(stampEl, now) {
		return feed.Event{}, false
	}

	textEl, err := article.Element(postText)
	if err != nil {
		return feed.Event{}, false
	}
	text, err := textEl.Text()
	if err != nil || text == "" {
		return feed.Event{}, false
	}

	author := s.cfg.Account
	if authorEl, err := article.Element(postAuthor); err == nil {
		if label, err := authorEl.Text(); err == nil {
			if m := mentionInAuthor.FindStringSubmatch(label); m != nil {
				author = m[1]
			}
		}
	}

	isRepost := false
	if _, err := article.Element(repostContext); err == nil {
		isRepost = true
	}

	return feed.Event{
		ID:         synthesizeID(author, text),
		Author:     author,
		Text:       text,
		ObservedAt: now,
		IsRepost:   isRepost,
	}, true
}

// postIsRecent prefers the machine-readable timestamp attribute and
// falls back to the rendered relative-time label.
func (s *Source) postIsRecent(stampEl *rod.Element, now time.Time) bool {
	if attr, err := stampEl.Attribute("datetime"); err == nil && attr != nil {
		stamp, err := parseStamp(*attr, s.cfg.TzOffsetHours)
		if err == nil {
			return recentAbsolute(now.UTC(), stamp)
		}
	}
	label, err := stampEl.Text()
	if err != nil {
		return false
	}
	return recentRelative(label)
}

// synthesizeID builds the uniqueness key for a surface that exposes no
// stable post id.
func synthesizeID(author, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s#%s", author, hex.EncodeToString(sum[:])[:16])
}
