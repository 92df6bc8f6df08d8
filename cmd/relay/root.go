package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay - multi-provider AI request router",
	Long: `Relay routes text-generation requests across interchangeable AI
providers with failover, rate and cost limiting, and usage tracking.

It selects providers by strategy (priority failover, round-robin,
fastest, least-cost), enforces per-provider sliding-window request and
cost ceilings, cools providers down on rate limits, disables them on
exhausted quota, and records per-call usage metrics.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "relay.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
