package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gainers",
	Short: "US top gainers poller",
	Long: `Top gainers polling service.

Polls the Yahoo Finance screener on a fixed cadence during US market
hours, accumulates each session's gainers in Redis, and rolls finished
sessions into a weekly ledger.

Usage:
  go run ./cmd/gainers [command]

Examples:
  go run ./cmd/gainers start
  go run ./cmd/gainers api
  go run ./cmd/gainers status
  go run ./cmd/gainers archive`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
