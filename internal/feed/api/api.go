// Package api polls the feed's programmatic timeline interface for the
// target account's recent posts.
package api

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
	"timesniper/internal/feed"
	"timesniper/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("timesniper.feed.api")

const defaultBaseURL = "https://api.twitter.com"

// BearerTokenEnv names the environment variable holding the feed API
// credential. It is read from the environment (via the dotenv file)
// rather than from config.
const BearerTokenEnv = "TWITTER_BEARER_TOKEN"

type Config struct {
	// handle of the account whose timeline is watched, without the @
	Account string `json:"account"`
	// posts fetched per poll
	PageSize int `json:"page_size"`
	// timeline requests allowed per minute
	RequestsPerMinute int    `json:"requests_per_minute"`
	BaseURL           string `json:"base_url"`
}

type Source struct {
	client  *resty.Client
	limiter *rate.Limiter
	cfg     Config

	// resolved lazily on first poll, then cached
	userID string
}

func NewSource(cfg Config) (*Source, error) {
	token := os.Getenv(BearerTokenEnv)
	if token == "" {
		return nil, fmt.Errorf("%s is not set", BearerTokenEnv)
	}
	if cfg.Account == "" {
		return nil, fmt.Errorf("feed account is not configured")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetAuthToken(token)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "timesniper.feed.api.http")

	return &Source{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		cfg:     cfg,
	}, nil
}

type user struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type reference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type post struct {
	ID               string      `json:"id"`
	Text             string      `json:"text"`
	AuthorID         string      `json:"author_id"`
	CreatedAt        time.Time   `json:"created_at"`
	ReferencedTweets []reference `json:"referenced_tweets"`
}

type includes struct {
	Tweets []post `json:"tweets"`
	Users  []user `json:"users"`
}

type timeline struct {
	Data     []post   `json:"data"`
	Includes includes `json:"includes"`
}

func (s *Source) resolveUserID(ctx context.Context) error {
	if s.userID != "" {
		return nil
	}

	var lookup struct {
		Data user `json:"data"`
	}
	res, err := s.client.R().
		SetContext(ctx).
		SetResult(&lookup).
		Get("/2/users/by/username/" + s.cfg.Account)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("lookup %s: %s", s.cfg.Account, res.Status())
	}
	if lookup.Data.ID == "" {
		return fmt.Errorf("feed account %s does not resolve to a user id", s.cfg.Account)
	}
	s.userID = lookup.Data.ID
	return nil
}

// Poll fetches the account's most recent posts and surfaces the reposts
// among them as promotion events.
func (s *Source) Poll(ctx context.Context) ([]feed.Event, error) {
	ctx, span := tracer.Start(ctx, "Poll")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := s.resolveUserID(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve account id")
		return nil, err
	}

	var tl timeline
	res, err := s.client.R().
		SetContext(ctx).
		SetResult(&tl).
		SetQueryParams(map[string]string{
			"max_results":  strconv.Itoa(s.cfg.PageSize),
			"tweet.fields": "created_at,referenced_tweets,author_id",
			"expansions":   "referenced_tweets.id.author_id",
		}).
		Get("/2/users/" + s.userID + "/tweets")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "timeline request failed")
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("timeline request: %s", res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "timeline request rejected")
		return nil, err
	}

	return eventsFromTimeline(s.cfg.Account, tl), nil
}

// eventsFromTimeline keeps reposts only and derives the promoted
// identity from the repost-of-author metadata where present.
func eventsFromTimeline(account string, tl timeline) []feed.Event {
	var events []feed.Event
	for _, p := range tl.Data {
		repostOf, isRepost := repostAuthor(p, tl.Includes)
		if !isRepost {
			continue
		}
		events = append(events, feed.Event{
			ID:         p.ID,
			Author:     account,
			Text:       p.Text,
			ObservedAt: p.CreatedAt,
			IsRepost:   true,
			RepostOf:   repostOf,
		})
	}
	return events
}

// repostAuthor resolves the original author of a repost through the
// response's expansion objects. The second return reports whether the
// post is a repost at all; the first may be empty when the expansion
// objects are incomplete, in which case the caller falls back to text
// extraction.
func repostAuthor(p post, inc includes) (string, bool) {
	for _, ref := range p.ReferencedTweets {
		if ref.Type != "retweeted" {
			continue
		}
		for _, t := range inc.Tweets {
			if t.ID != ref.ID {
				continue
			}
			for _, u := range inc.Users {
				if u.ID == t.AuthorID {
					return u.Username, true
				}
			}
		}
		return "", true
	}
	return "", false
}
