package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nutrihq/ceres/pkg/cli"
	"nutrihq/ceres/pkg/config"
)

var validateFlags struct {
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment
overrides, and report the effective configuration.

Examples:
  # Validate the default config file
  ceres validate

  # Print the effective configuration as JSON
  ceres validate --output json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format (text, json)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)

	if validateFlags.output == string(cli.FormatJSON) || verbose {
		formatter := cli.NewFormatter(cli.OutputFormat(validateFlags.output))
		if err := formatter.FormatTo(os.Stdout, effectiveConfig(cfg)); err != nil {
			return cli.NewCommandError("validate", err)
		}
	}

	return nil
}

// effectiveConfig shapes the configuration for display, with durations
// rendered as strings.
func effectiveConfig(cfg *config.Config) map[string]any {
	rateLimits := make(map[string]any, len(cfg.RateLimits))
	for name, rl := range cfg.RateLimits {
		rateLimits[name] = map[string]any{
			"capacity": rl.Capacity,
			"window":   rl.Window.String(),
		}
	}

	return map[string]any{
		"cache": map[string]any{
			"max_size":     cfg.Cache.MaxSize,
			"default_ttl":  cfg.Cache.DefaultTTL.String(),
			"search_ttl":   cfg.Cache.SearchTTL.String(),
			"barcode_ttl":  cfg.Cache.BarcodeTTL.String(),
			"analysis_ttl": cfg.Cache.AnalysisTTL.String(),
		},
		"rate_limits": rateLimits,
		"quotas": map[string]any{
			"daily":   cfg.Quotas.Daily,
			"monthly": cfg.Quotas.Monthly,
		},
		"retry": map[string]any{
			"max_retries": cfg.Retry.MaxRetries,
			"base_delay":  cfg.Retry.BaseDelay.String(),
		},
		"lookup": map[string]any{
			"base_url":   cfg.Lookup.BaseURL,
			"timeout":    cfg.Lookup.Timeout.String(),
			"user_agent": cfg.Lookup.UserAgent,
		},
		"storage": map[string]any{
			"path": cfg.Storage.Path,
		},
		"maintenance": map[string]any{
			"sweep_schedule":         cfg.Maintenance.SweepSchedule,
			"daily_reset_schedule":   cfg.Maintenance.DailyResetSchedule,
			"monthly_reset_schedule": cfg.Maintenance.MonthlyResetSchedule,
		},
	}
}
