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
	Use:   "ceres",
	Short: "Ceres - nutrition service resilience runtime",
	Long: `Ceres hosts the shared resilience layer for the NutriHQ services:
response caching with TTL and LRU eviction, per-user sliding-window
rate limits, daily and monthly usage quotas, retry policies for
outbound calls, and the food log store.

It runs the scheduled maintenance jobs (cache sweeps, quota resets)
and exposes metrics and operational state over HTTP.`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
