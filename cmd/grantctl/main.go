// Command grantctl is the administrative CLI for a running GrantPilot API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grantpilot/internal/client"
	"grantpilot/internal/config"
	"grantpilot/pkg/logger"
)

var (
	apiURL  string
	timeout time.Duration
	verbose bool

	log *zap.Logger
	api *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "grantctl",
	Short: "Administer a GrantPilot API server",
	Long: `grantctl talks to a running GrantPilot API.

Examples:
  grantctl dashboard
  grantctl export --format xlsx --out grants.xlsx
  grantctl import --in backup.json
  grantctl calendar --ics --out deadlines.ics`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		log = logger.NewLogger(level)

		if apiURL == "" {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			apiURL = cfg.APIURL
		}
		api = client.New(apiURL, timeout, log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (default from config or GRANTPILOT_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to file instead of stdout")
	importCmd.Flags().StringVar(&importIn, "in", "", "JSON bundle produced by export")
	_ = importCmd.MarkFlagRequired("in")
	calendarCmd.Flags().BoolVar(&calendarICS, "ics", false, "Render an iCalendar feed")
	calendarCmd.Flags().StringVar(&calendarOut, "out", "", "Write to file instead of stdout")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(calendarCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
