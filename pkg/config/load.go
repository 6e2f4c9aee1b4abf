package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the given path.
// It applies default values, validates the configuration, and returns
// any errors. Environment variables are not consulted; use
// LoadWithEnvOverrides for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// CERES_SECTION_FIELD (e.g., CERES_CACHE_MAX_SIZE) and always take
// precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Cache overrides
	if val := os.Getenv("CERES_CACHE_MAX_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxSize = i
		}
	}
	if val := os.Getenv("CERES_CACHE_DEFAULT_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.DefaultTTL = d
		}
	}

	// Retry overrides
	if val := os.Getenv("CERES_RETRY_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retry.MaxRetries = i
		}
	}
	if val := os.Getenv("CERES_RETRY_BASE_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retry.BaseDelay = d
		}
	}

	// Lookup overrides
	if val := os.Getenv("CERES_LOOKUP_BASE_URL"); val != "" {
		cfg.Lookup.BaseURL = val
	}
	if val := os.Getenv("CERES_LOOKUP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Lookup.Timeout = d
		}
	}

	// Storage overrides
	if val := os.Getenv("CERES_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("CERES_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CERES_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CERES_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CERES_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}

	// Maintenance overrides
	if val := os.Getenv("CERES_MAINTENANCE_SWEEP_SCHEDULE"); val != "" {
		cfg.Maintenance.SweepSchedule = val
	}
	if val := os.Getenv("CERES_MAINTENANCE_DAILY_RESET_SCHEDULE"); val != "" {
		cfg.Maintenance.DailyResetSchedule = val
	}
	if val := os.Getenv("CERES_MAINTENANCE_MONTHLY_RESET_SCHEDULE"); val != "" {
		cfg.Maintenance.MonthlyResetSchedule = val
	}
}
