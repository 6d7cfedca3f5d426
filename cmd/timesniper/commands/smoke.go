package commands

import (
	"fmt"
	"os"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"timesniper/lib/serviceutil"
	"timesniper/lib/telemetry"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Fetch the platform origin over plain HTTP to confirm it is reachable.",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		origin := config.Buyer.PlatformURL
		if origin == "" {
			origin = "https://time.fun"
		}

		client := resty.New()
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
		client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
		client.SetTimeout(time.Second * 30)
		telemetry.InstrumentResty(client, "timesniper.smoke")

		res, err := client.R().SetContext(cmd.Context()).Get(origin)
		if err != nil {
			serviceutil.Fatal("platform unreachable", err)
		}
		fmt.Printf("%s -> %s (%d bytes)\n", origin, res.Status(), len(res.Body()))
		if res.IsError() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(smokeCmd)
}
