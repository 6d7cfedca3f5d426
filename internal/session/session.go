// Package session tracks authentication state against the commerce
// platform and the social feed. Neither surface exposes an auth API to
// the automation boundary, so state is inferred from what the page
// shows and, when a human is available, recovered by waiting for them
// to log in out-of-band.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"timesniper/lib/browser"
	"timesniper/lib/selector"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("timesniper.session")

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrLoginTimeout     = errors.New("timed out waiting for manual login")
)

type Surface string

const (
	Platform Surface = "platform"
	Feed     Surface = "feed"
)

const (
	defaultLoginTimeout = 5 * time.Minute
	loginPollInterval   = 3 * time.Second
	indicatorBudget     = 10 * time.Second
	pageSettle          = 2 * time.Second
)

type Config struct {
	PlatformURL string `json:"platform_url"`
	FeedURL     string `json:"feed_url"`
	// skip all checks and report both surfaces authenticated. The
	// caller owns the consequences.
	AssumeAuthenticated bool `json:"assume_authenticated"`
	// when unauthenticated, open the login route and wait for a human
	// to complete login in the attached browser
	Interactive         bool `json:"interactive"`
	LoginTimeoutSeconds int  `json:"login_timeout_seconds"`
}

// State is only ever mutated by the Manager; execution is strictly
// sequential so no locking is needed.
type State struct {
	PlatformAuthenticated bool
	FeedAuthenticated     bool
}

type Manager struct {
	session *browser.Session
	cfg     Config
	state   State
}

func NewManager(b *browser.Session, cfg Config) *Manager {
	if cfg.PlatformURL == "" {
		cfg.PlatformURL = "https://time.fun"
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = "https://x.com"
	}
	if cfg.LoginTimeoutSeconds <= 0 {
		cfg.LoginTimeoutSeconds = int(defaultLoginTimeout.Seconds())
	}
	return &Manager{session: b, cfg: cfg}
}

func (m *Manager) State() State {
	return m.state
}

// positive login indicators on the platform's landing page
var platformLoginIndicators = []selector.Locator{
	selector.Xpath(`//a[contains(@href, '/profile')]`),
	selector.Xpath(`//button[contains(text(), 'Disconnect')]`),
	selector.Xpath(`//div[contains(@class, 'avatar')]`),
	selector.Xpath(`//a[contains(text(), 'Profile')]`),
}

var feedLoginIndicators = []selector.Locator{
	selector.Css(`[data-testid="SideNav_NewTweet_Button"]`),
	selector.Css(`[data-testid="AppTabBar_Profile_Link"]`),
}

// EnsureAuthenticated reports whether the surface is usable, waiting a
// bounded time for manual login when interactive mode allows it.
func (m *Manager) EnsureAuthenticated(ctx context.Context, surface Surface) (bool, error) {
	ctx, span := tracer.Start(ctx, "EnsureAuthenticated")
	defer span.End()

	if m.cfg.AssumeAuthenticated {
		m.mark(surface, true)
		return true, nil
	}
	if m.authenticated(surface) {
		return true, nil
	}

	ok, err := m.check(ctx, surface)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login check failed")
		return false, err
	}
	if ok {
		m.mark(surface, true)
		return true, nil
	}
	if !m.cfg.Interactive {
		return false, ErrNotAuthenticated
	}

	return m.waitForManualLogin(ctx, surface)
}

// waitForManualLogin opens the login route and polls until a human
// completes authentication or the window expires.
func (m *Manager) waitForManualLogin(ctx context.Context, surface Surface) (bool, error) {
	timeout := time.Duration(m.cfg.LoginTimeoutSeconds) * time.Second
	slog.InfoContext(ctx, "waiting for manual login",
		"surface", surface, "timeout", timeout)

	if err := m.session.Navigate(m.loginRoute(surface), pageSettle); err != nil {
		return false, err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(loginPollInterval):
		}

		ok, err := m.check(ctx, surface)
		if err != nil {
			slog.WarnContext(ctx, "login poll failed", "err", err)
			continue
		}
		if ok {
			slog.InfoContext(ctx, "login detected", "surface", surface)
			m.mark(surface, true)
			return true, nil
		}
	}
	return false, ErrLoginTimeout
}

func (m *Manager) check(ctx context.Context, surface Surface) (bool, error) {
	if surface == Feed {
		return m.checkFeed(ctx)
	}
	return m.checkPlatform(ctx)
}

// checkPlatform looks for positive login indicators on the landing page
// and, finding none, falls back to probing a protected route.
func (m *Manager) checkPlatform(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "checkPlatform")
	defer span.End()

	if err := m.session.Navigate(m.cfg.PlatformURL, pageSettle); err != nil {
		return false, err
	}

	res, err := selector.Resolve(m.session.Page.Context(ctx), platformLoginIndicators, indicatorBudget)
	if err == nil {
		slog.DebugContext(ctx, "login indicator found", "locator", res.Locator.Expr)
		return true, nil
	}

	// no indicator on the landing page, probe a protected route
	if err := m.session.Navigate(m.cfg.PlatformURL+"/home", pageSettle); err != nil {
		return false, err
	}
	current, err := m.session.URL()
	if err != nil {
		return false, err
	}
	if looksLikeLoginRoute(current) {
		return false, nil
	}
	if strings.Contains(strings.ToLower(current), "home") {
		return true, nil
	}
	// unknown is treated as unauthenticated
	return false, nil
}

func (m *Manager) checkFeed(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "checkFeed")
	defer span.End()

	if err := m.session.Navigate(m.cfg.FeedURL+"/home", pageSettle); err != nil {
		return false, err
	}
	_, err := selector.Resolve(m.session.Page.Context(ctx), feedLoginIndicators, indicatorBudget)
	return err == nil, nil
}

func (m *Manager) loginRoute(surface Surface) string {
	if surface == Feed {
		return m.cfg.FeedURL + "/login"
	}
	return m.cfg.PlatformURL + "/login"
}

func (m *Manager) authenticated(surface Surface) bool {
	if surface == Feed {
		return m.state.FeedAuthenticated
	}
	return m.state.PlatformAuthenticated
}

func (m *Manager) mark(surface Surface, ok bool) {
	if surface == Feed {
		m.state.FeedAuthenticated = ok
		return
	}
	m.state.PlatformAuthenticated = ok
}

func looksLikeLoginRoute(url string) bool {
	return strings.Contains(strings.ToLower(url), "login")
}
