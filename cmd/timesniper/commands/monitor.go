package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"timesniper/internal/buyer"
	"timesniper/internal/dedup"
	"timesniper/internal/extract"
	"timesniper/internal/feed"
	"timesniper/internal/feed/api"
	"timesniper/internal/feed/scrape"
	"timesniper/internal/monitor"
	"timesniper/internal/notify"
	"timesniper/internal/session"
	"timesniper/lib/browser"
	"timesniper/lib/serviceutil"
	"timesniper/lib/telemetry"
)

var (
	monitorAccount        string
	monitorSource         string
	monitorInterval       int
	monitorMaxPosts       int
	monitorTzOffset       int
	monitorOnce           bool
	monitorSkipLoginCheck bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the promotional feed and purchase each newly promoted candidate's allotment.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		applyMonitorFlags(&config)

		tel, err := telemetry.SetupFromEnv(ctx, "timesniper")
		if err != nil {
			slog.Debug("telemetry disabled", "err", err)
		} else {
			defer tel.Shutdown(context.Background())
			telemetry.InstrumentPerfStats(ctx)
		}

		sess, err := browser.Attach(ctx, config.Browser)
		if err != nil {
			serviceutil.Fatal("failed to attach to browser", err)
		}
		defer sess.Close()

		auth := session.NewManager(sess, config.Session)
		ensureLogin(ctx, auth, session.Platform)
		if config.Feed.Source != "api" {
			ensureLogin(ctx, auth, session.Feed)
		}

		source, err := newFeedSource(sess, config)
		if err != nil {
			serviceutil.Fatal("failed to create feed source", err)
		}

		verifier := buyer.NewVerifier(sess, config.Buyer.PlatformURL)
		executor := buyer.NewExecutor(sess, auth, config.Buyer)
		mailer := notify.NewMailer(config.Notify)

		loop := &monitor.Loop{
			Source:    source,
			Store:     dedup.NewStore(),
			Extractor: extract.Extractor{Exclude: config.excluded()},
			Callback:  acquisitionCallback(verifier, executor, mailer, config.Buyer.MaxAttempts),
			Interval:  time.Duration(config.IntervalSeconds) * time.Second,
			Once:      monitorOnce,
		}

		slog.Info("monitoring feed",
			"account", config.watchedAccount(),
			"source", config.Feed.Source,
			"interval", loop.Interval)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			serviceutil.Fatal("monitor loop failed", err)
		}
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorAccount, "account", "", "feed account to watch, overrides config")
	monitorCmd.Flags().StringVar(&monitorSource, "source", "", `feed source mode, "api" or "scrape"`)
	monitorCmd.Flags().IntVar(&monitorInterval, "interval", 0, "seconds between polls, overrides config")
	monitorCmd.Flags().IntVar(&monitorMaxPosts, "max-posts", 0, "posts inspected per scrape poll")
	monitorCmd.Flags().IntVar(&monitorTzOffset, "tz-offset", 0, "hours applied to zoneless post timestamps")
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "run a single poll cycle and exit")
	monitorCmd.Flags().BoolVar(&monitorSkipLoginCheck, "skip-login-check", false, "assume both surfaces are already logged in")
	rootCmd.AddCommand(monitorCmd)
}

func applyMonitorFlags(config *Config) {
	if monitorAccount != "" {
		config.Feed.Api.Account = monitorAccount
		config.Feed.Scrape.Account = monitorAccount
	}
	if monitorSource != "" {
		config.Feed.Source = monitorSource
	}
	if monitorInterval > 0 {
		config.IntervalSeconds = monitorInterval
	}
	if monitorMaxPosts > 0 {
		config.Feed.Scrape.MaxPosts = monitorMaxPosts
	}
	if monitorTzOffset != 0 {
		config.Feed.Scrape.TzOffsetHours = monitorTzOffset
	}
	if monitorSkipLoginCheck {
		config.Session.AssumeAuthenticated = true
	}
}

func ensureLogin(ctx context.Context, auth *session.Manager, surface session.Surface) {
	ok, err := auth.EnsureAuthenticated(ctx, surface)
	if err != nil {
		serviceutil.Fatal("login check failed", err)
	}
	if !ok {
		serviceutil.Fatal("not logged in on "+string(surface), session.ErrNotAuthenticated)
	}
}

func newFeedSource(sess *browser.Session, config Config) (feed.Source, error) {
	if config.Feed.Source == "api" {
		return api.NewSource(config.Feed.Api)
	}
	return scrape.NewSource(sess, config.Feed.Scrape)
}

// acquisitionCallback verifies the candidate exists before spending a
// purchase attempt, then reports the terminal outcome.
func acquisitionCallback(verifier *buyer.Verifier, executor *buyer.Executor, mailer *notify.Mailer, maxAttempts int) monitor.Callback {
	return func(ctx context.Context, candidate extract.Candidate) error {
		exists, err := verifier.Exists(ctx, candidate.Identifier)
		if err != nil {
			return err
		}
		if !exists {
			slog.InfoContext(ctx, "candidate has no profile, skipping",
				"candidate", candidate.Identifier)
			return nil
		}

		acquireErr := executor.AcquireWithRetry(ctx, candidate.Identifier)
		outcome := notify.Outcome{
			Candidate: candidate.Identifier,
			Succeeded: acquireErr == nil,
			Err:       acquireErr,
			At:        time.Now(),
		}
		if acquireErr != nil {
			outcome.Attempts = maxAttempts
		}
		if err := mailer.Notify(ctx, outcome); err != nil {
			slog.WarnContext(ctx, "outcome notification failed", "err", err)
		}
		return acquireErr
	}
}
