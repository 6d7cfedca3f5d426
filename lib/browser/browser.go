package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

type Config struct {
	// host:port of an already-running Chrome debug endpoint. When empty
	// the common debug ports are probed; when none answers a headless
	// browser is launched instead.
	ControlAddr string `json:"control_addr"`
	Headless    bool   `json:"headless"`
}

// Session wraps one automatable page. The rest of the system treats it
// purely as "an automatable view of a web page" and never touches the
// DevTools protocol directly.
type Session struct {
	Browser *rod.Browser
	Page    *rod.Page

	launched bool
}

// ports Chrome is commonly started on with --remote-debugging-port
var debugPorts = []int{9222, 9223, 9224, 9225, 9226, 9227, 9228, 9229, 9230}

var probeClient = resty.New().SetTimeout(time.Second)

// DiscoverDebugAddr probes the common local debug ports and returns the
// first one answering the DevTools version endpoint.
func DiscoverDebugAddr(ctx context.Context) (string, bool) {
	for _, port := range debugPorts {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		res, err := probeClient.R().
			SetContext(ctx).
			Get(fmt.Sprintf("http://%s/json/version", addr))
		if err != nil || res.StatusCode() != 200 {
			continue
		}
		if !strings.Contains(res.String(), "Chrome") {
			continue
		}
		slog.Info("found running browser with debugging enabled", "addr", addr)
		return addr, true
	}
	return "", false
}

// Attach connects to a running Chrome instance, or launches a headless
// one when none is reachable. An attached session reuses the operator's
// profile and therefore their logins.
func Attach(ctx context.Context, cfg Config) (*Session, error) {
	addr := cfg.ControlAddr
	if addr == "" {
		addr, _ = DiscoverDebugAddr(ctx)
	}
	if addr != "" {
		u, err := launcher.ResolveURL(addr)
		if err != nil {
			return nil, fmt.Errorf("resolve debug endpoint %s: %w", addr, err)
		}
		b := rod.New().ControlURL(u)
		if err := b.Connect(); err != nil {
			return nil, fmt.Errorf("connect to browser at %s: %w", addr, err)
		}
		page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return nil, fmt.Errorf("open tab: %w", err)
		}
		return &Session{Browser: b, Page: page}, nil
	}

	return Launch(cfg)
}

// Launch starts a fresh browser process owned by this session.
func Launch(cfg Config) (*Session, error) {
	u, err := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to launched browser: %w", err)
	}
	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("open stealth tab: %w", err)
	}
	return &Session{Browser: b, Page: page, launched: true}, nil
}

// Navigate goes to the URL and lets the DOM settle. WaitStable stands in
// for a load-complete signal the target pages do not reliably emit.
func (s *Session) Navigate(url string, settle time.Duration) error {
	if err := s.Page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	_ = s.Page.WaitStable(settle)
	return nil
}

// URL returns the page's current location.
func (s *Session) URL() (string, error) {
	info, err := s.Page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (s *Session) HTML() (string, error) {
	return s.Page.HTML()
}

func (s *Session) Screenshot() ([]byte, error) {
	return s.Page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// Close detaches from the browser. A browser we attached to keeps
// running with only our tab closed; a browser we launched is shut down.
func (s *Session) Close() {
	if s.launched {
		_ = s.Browser.Close()
		return
	}
	_ = s.Page.Close()
}
