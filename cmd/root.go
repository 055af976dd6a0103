package cmd

import (
	"os"

	"nathanbeddoewebdev/cfdash/cmd/commands/auth"
	"nathanbeddoewebdev/cfdash/cmd/commands/cache"
	cfgcmd "nathanbeddoewebdev/cfdash/cmd/commands/config"
	"nathanbeddoewebdev/cfdash/cmd/commands/dashboard"
	"nathanbeddoewebdev/cfdash/internal/analytics/providers"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "cfdash",
		Short: "Cloudflare zone analytics in the terminal and the browser",
		Long: `cfdash shows Cloudflare zone analytics: requests, pageviews, unique
visitors and bandwidth over the last day, week or month, with cache, SSL,
content type and country breakdowns.

It renders in the terminal or serves an embeddable HTML widget, remembers
each user's chosen view, and caches results to stay within API limits.

Quick start:
  cfdash auth login cloudflare         # Store your API token
  cfdash config set zone-id <id>       # Choose the zone
  cfdash dashboard show                # Interactive dashboard
  cfdash dashboard serve               # HTML widget on :8080`,
	}

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(dashboard.NewCommand())
	cmd.AddCommand(cache.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	providers.RegisterCloudflare()

	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
