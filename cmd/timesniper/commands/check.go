package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"timesniper/internal/buyer"
	"timesniper/internal/session"
	"timesniper/lib/browser"
	"timesniper/lib/serviceutil"
)

var checkCmd = &cobra.Command{
	Use:   "check [handle]",
	Short: "With a handle, report whether its profile exists; without one, poll the feed once and print the batch.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		// diagnostics only, no purchase follows
		config.Session.AssumeAuthenticated = true

		sess, err := browser.Attach(ctx, config.Browser)
		if err != nil {
			serviceutil.Fatal("failed to attach to browser", err)
		}
		defer sess.Close()

		if len(args) == 1 {
			checkProfile(cmd, sess, config, args[0])
			return
		}
		checkFeed(cmd, sess, config)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkProfile(cmd *cobra.Command, sess *browser.Session, config Config, handle string) {
	verifier := buyer.NewVerifier(sess, config.Buyer.PlatformURL)
	exists, err := verifier.Exists(cmd.Context(), handle)
	if err != nil {
		serviceutil.Fatal("failed to verify candidate", err)
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "%s has no profile\n", handle)
		os.Exit(1)
	}
	fmt.Printf("%s exists\n", handle)
}

func checkFeed(cmd *cobra.Command, sess *browser.Session, config Config) {
	ctx := cmd.Context()

	if config.Feed.Source != "api" {
		auth := session.NewManager(sess, config.Session)
		ensureLogin(ctx, auth, session.Feed)
	}

	source, err := newFeedSource(sess, config)
	if err != nil {
		serviceutil.Fatal("failed to create feed source", err)
	}
	events, err := source.Poll(ctx)
	if err != nil {
		serviceutil.Fatal("feed poll failed", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Author", "Repost Of", "Observed", "Text"})
	for _, ev := range events {
		text := ev.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		t.AppendRow(table.Row{
			ev.ID, ev.Author, ev.RepostOf,
			ev.ObservedAt.Format(time.RFC3339), text,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
