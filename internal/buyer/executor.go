// Package buyer drives the multi-step purchase flow for one candidate
// against the commerce platform's UI.
package buyer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
	"timesniper/internal/session"
	"timesniper/lib/browser"
	"timesniper/lib/selector"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("timesniper.buyer")

// Stage names one step of the purchase state machine, used for
// diagnostics artifact naming and failure reporting.
type Stage string

const (
	StageAuthCheck  Stage = "auth_check"
	StagePageLoaded Stage = "page_loaded"
	StageBuyDialog  Stage = "buy_dialog"
	StageCurrency   Stage = "currency"
	StageAmount     Stage = "amount"
	StageOffer      Stage = "offer"
	StageSubmit     Stage = "submit"
	StageSucceeded  Stage = "succeeded"
)

const selectorBudget = 10 * time.Second

type Config struct {
	PlatformURL string `json:"platform_url"`
	// purchase amount in the platform's USD-pegged currency
	Amount float64 `json:"amount"`
	// full state-machine attempts per candidate
	MaxAttempts int `json:"max_attempts"`
	// base retry delay in seconds; the wait between attempts is twice
	// this, the same for every retry
	DelaySeconds int    `json:"delay_seconds"`
	ArtifactsDir string `json:"artifacts_dir"`
}

func (c *Config) applyDefaults() {
	if c.PlatformURL == "" {
		c.PlatformURL = "https://time.fun"
	}
	if c.Amount <= 0 {
		c.Amount = 10
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.DelaySeconds <= 0 {
		c.DelaySeconds = 2
	}
}

// Executor runs the purchase state machine with bounded retries.
type Executor struct {
	session   *browser.Session
	auth      *session.Manager
	artifacts ArtifactSink
	cfg       Config

	// indirections for tests
	run   func(ctx context.Context, candidate string) error
	sleep func(time.Duration)
}

func NewExecutor(b *browser.Session, auth *session.Manager, cfg Config) *Executor {
	cfg.applyDefaults()
	e := &Executor{
		session:   b,
		auth:      auth,
		artifacts: NewArtifactSink(cfg.ArtifactsDir),
		cfg:       cfg,
		sleep:     time.Sleep,
	}
	e.run = e.acquire
	return e
}

// AcquireWithRetry runs the full purchase flow up to MaxAttempts times,
// waiting a fixed backoff between attempts. Exhaustion is a terminal
// failure for the candidate; no further automatic action follows.
func (e *Executor) AcquireWithRetry(ctx context.Context, candidate string) error {
	ctx, span := tracer.Start(ctx, "AcquireWithRetry")
	defer span.End()
	span.SetAttributes(attribute.String("candidate", candidate))

	backoff := time.Duration(e.cfg.DelaySeconds) * time.Second * 2

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		slog.InfoContext(ctx, "attempting acquisition",
			"candidate", candidate, "attempt", attempt, "max", e.cfg.MaxAttempts)

		lastErr = e.run(ctx, candidate)
		if lastErr == nil {
			slog.InfoContext(ctx, "acquisition succeeded",
				"candidate", candidate, "attempt", attempt)
			return nil
		}

		slog.WarnContext(ctx, "acquisition attempt failed",
			"candidate", candidate, "attempt", attempt, "err", lastErr)
		if attempt < e.cfg.MaxAttempts {
			e.sleep(backoff)
		}
	}

	err := fmt.Errorf("gave up on %s after %d attempts: %w", candidate, e.cfg.MaxAttempts, lastErr)
	span.RecordError(err)
	span.SetStatus(codes.Error, "acquisition attempts exhausted")
	return err
}

// acquire walks the purchase state machine once. Every failing stage
// returns an error naming the stage; the buy-dialog, offer and submit
// stages also persist diagnostics before giving up.
func (e *Executor) acquire(ctx context.Context, candidate string) error {
	ctx, span := tracer.Start(ctx, "acquire")
	defer span.End()

	page := e.session.Page.Context(ctx)

	// AuthCheck
	ok, err := e.auth.EnsureAuthenticated(ctx, session.Platform)
	if err != nil {
		return fmt.Errorf("%s: %w", StageAuthCheck, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", StageAuthCheck, session.ErrNotAuthenticated)
	}

	// PageLoaded: a randomized settle delay substitutes for a
	// load-complete signal, which the market view does not emit
	market := fmt.Sprintf("%s/%s?tab=market", e.cfg.PlatformURL, url.PathEscape(candidate))
	if err := e.session.Navigate(market, e.settleDelay(2000, 4000)); err != nil {
		return fmt.Errorf("%s: %w", StagePageLoaded, err)
	}

	// BuyDialogOpened
	res, err := selector.Resolve(page, buyControlLocators, selectorBudget)
	if err != nil {
		e.artifacts.Capture(e.session, candidate, StageBuyDialog)
		return fmt.Errorf("%s: buy control: %w", StageBuyDialog, err)
	}
	slog.DebugContext(ctx, "buy control resolved", "locator", res.Locator.Expr, "rank", res.Index)
	if err := click(res.Element); err != nil {
		return fmt.Errorf("%s: %w", StageBuyDialog, err)
	}
	e.sleep(2 * time.Second)

	// CurrencySelected: best-effort, a missing toggle does not abort
	if res, err := selector.Resolve(page, currencyToggleLocators, selectorBudget/2); err == nil {
		if err := click(res.Element); err == nil {
			e.sleep(time.Second)
		}
	} else {
		slog.DebugContext(ctx, "currency toggle not found, keeping default")
	}

	// AmountEntered
	res, err = selector.Resolve(page, amountFieldLocators, selectorBudget)
	if err != nil {
		e.artifacts.Capture(e.session, candidate, StageAmount)
		return fmt.Errorf("%s: amount field: %w", StageAmount, err)
	}
	if err := res.Element.SelectAllText(); err != nil {
		return fmt.Errorf("%s: %w", StageAmount, err)
	}
	amount := strconv.FormatFloat(e.cfg.Amount, 'f', -1, 64)
	if err := e.typeHumanly(res.Element, amount); err != nil {
		return fmt.Errorf("%s: %w", StageAmount, err)
	}
	// the offer control re-renders with the priced quantity
	e.sleep(3 * time.Second)

	// OfferConfirmed
	offer, err := selector.ResolveByLabel(page, "button", offerPattern)
	if err != nil {
		e.artifacts.Capture(e.session, candidate, StageOffer)
		return fmt.Errorf("%s: offer control: %w", StageOffer, err)
	}
	if err := click(offer); err != nil {
		return fmt.Errorf("%s: %w", StageOffer, err)
	}
	e.sleep(2 * time.Second)

	// TransactionSubmitted
	confirm, err := selector.ResolveByLabel(page, "button", confirmPattern)
	if err != nil {
		e.artifacts.Capture(e.session, candidate, StageSubmit)
		return fmt.Errorf("%s: confirm control: %w", StageSubmit, err)
	}
	if err := click(confirm); err != nil {
		return fmt.Errorf("%s: %w", StageSubmit, err)
	}
	e.sleep(5 * time.Second)

	e.artifacts.Capture(e.session, candidate, StageSucceeded)
	return nil
}

// typeHumanly enters text character by character with randomized
// inter-key delays.
func (e *Executor) typeHumanly(el *rod.Element, text string) error {
	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		e.sleep(e.keyDelay())
	}
	return nil
}

func (e *Executor) keyDelay() time.Duration {
	ms, err := random.IntRange(50, 200)
	if err != nil {
		ms = 120
	}
	return time.Duration(ms) * time.Millisecond
}

func (e *Executor) settleDelay(minMs, maxMs int) time.Duration {
	ms, err := random.IntRange(minMs, maxMs)
	if err != nil {
		ms = (minMs + maxMs) / 2
	}
	return time.Duration(ms) * time.Millisecond
}

func click(el *rod.Element) error {
	return el.Click(proto.InputMouseButtonLeft, 1)
}
