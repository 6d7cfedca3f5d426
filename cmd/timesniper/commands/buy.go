package commands

import (
	"github.com/spf13/cobra"

	"timesniper/internal/buyer"
	"timesniper/internal/session"
	"timesniper/lib/browser"
	"timesniper/lib/serviceutil"
)

var buySkipLoginCheck bool

var buyCmd = &cobra.Command{
	Use:   "buy <handle>",
	Short: "Run the purchase flow once for a single candidate.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		handle := args[0]

		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if buySkipLoginCheck {
			config.Session.AssumeAuthenticated = true
		}

		sess, err := browser.Attach(ctx, config.Browser)
		if err != nil {
			serviceutil.Fatal("failed to attach to browser", err)
		}
		defer sess.Close()

		auth := session.NewManager(sess, config.Session)
		ensureLogin(ctx, auth, session.Platform)

		verifier := buyer.NewVerifier(sess, config.Buyer.PlatformURL)
		exists, err := verifier.Exists(ctx, handle)
		if err != nil {
			serviceutil.Fatal("failed to verify candidate", err)
		}
		if !exists {
			serviceutil.Fatal("candidate has no profile: "+handle, nil)
		}

		executor := buyer.NewExecutor(sess, auth, config.Buyer)
		if err := executor.AcquireWithRetry(ctx, handle); err != nil {
			serviceutil.Fatal("purchase failed", err)
		}
	},
}

func init() {
	buyCmd.Flags().BoolVar(&buySkipLoginCheck, "skip-login-check", false, "assume the platform session is already logged in")
	rootCmd.AddCommand(buyCmd)
}
