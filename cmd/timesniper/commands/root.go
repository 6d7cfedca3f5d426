package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timesniper/internal/buyer"
	"timesniper/internal/feed/api"
	"timesniper/internal/feed/scrape"
	"timesniper/internal/notify"
	"timesniper/internal/session"
	"timesniper/lib/browser"
	"timesniper/lib/configutil"
	"timesniper/lib/telemetry"
)

type FeedConfig struct {
	// "api" polls the feed's HTTP API, "scrape" reads the account page
	// through the browser session
	Source string        `json:"source"`
	Api    api.Config    `json:"api"`
	Scrape scrape.Config `json:"scrape"`
}

type Config struct {
	Browser browser.Config `json:"browser"`
	Session session.Config `json:"session"`
	Feed    FeedConfig     `json:"feed"`
	Buyer   buyer.Config   `json:"buyer"`
	Notify  notify.Config  `json:"notify"`

	// handles never treated as candidates, on top of the watched
	// account itself
	Exclude []string `json:"exclude"`
	// seconds between feed polls
	IntervalSeconds int `json:"interval_seconds"`
}

var (
	configPath string
	envPath    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "timesniper",
	Short: "timesniper watches a promotional feed and buys newly promoted time.fun allotments.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		return configutil.LoadDotenv(envPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "path to the dotenv file holding secrets")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (Config, error) {
	return configutil.ReadConfig[Config](configPath)
}

// watchedAccount is the feed account for the active source mode.
func (c Config) watchedAccount() string {
	if c.Feed.Source == "api" {
		return c.Feed.Api.Account
	}
	return c.Feed.Scrape.Account
}

// excluded returns the handles that never become candidates. The
// watched account repeats its own mention in every promotional post.
func (c Config) excluded() []string {
	return append([]string{c.watchedAccount()}, c.Exclude...)
}
