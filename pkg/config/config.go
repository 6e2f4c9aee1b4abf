package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	// Cache configures the in-process response cache.
	Cache CacheConfig `yaml:"cache"`

	// RateLimits maps category names to their sliding-window settings.
	RateLimits map[string]RateLimitConfig `yaml:"rate_limits"`

	// Quotas configures per-user daily and monthly operation ceilings.
	Quotas QuotasConfig `yaml:"quotas"`

	// Retry configures the backoff wrapper around outbound calls.
	Retry RetryConfig `yaml:"retry"`

	// Lookup configures the product lookup client.
	Lookup LookupConfig `yaml:"lookup"`

	// Storage configures the food log database.
	Storage StorageConfig `yaml:"storage"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Maintenance configures the background job schedules.
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// CacheConfig contains settings for the response cache.
type CacheConfig struct {
	// MaxSize is the maximum number of entries before LRU eviction.
	MaxSize int `yaml:"max_size"`

	// DefaultTTL applies to entries stored without an explicit TTL.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// SearchTTL applies to product search results.
	SearchTTL time.Duration `yaml:"search_ttl"`

	// BarcodeTTL applies to barcode lookup results.
	BarcodeTTL time.Duration `yaml:"barcode_ttl"`

	// AnalysisTTL applies to image analysis results.
	AnalysisTTL time.Duration `yaml:"analysis_ttl"`
}

// RateLimitConfig contains the sliding-window settings for one category.
type RateLimitConfig struct {
	// Capacity is the maximum number of requests per window.
	Capacity int `yaml:"capacity"`

	// Window is the sliding window length.
	Window time.Duration `yaml:"window"`
}

// QuotasConfig contains per-user usage ceilings keyed by operation.
// A missing operation means unlimited.
type QuotasConfig struct {
	Daily   map[string]int `yaml:"daily"`
	Monthly map[string]int `yaml:"monthly"`
}

// RetryConfig contains settings for the retry executor.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay is the delay before the first retry. Subsequent
	// delays double.
	BaseDelay time.Duration `yaml:"base_delay"`
}

// LookupConfig contains settings for the product lookup client.
type LookupConfig struct {
	// BaseURL is the lookup API root.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
}

// StorageConfig contains settings for the food log database.
type StorageConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics server binds to.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path metrics are exposed on.
	Path string `yaml:"path"`
}

// MaintenanceConfig contains cron schedules for background jobs.
type MaintenanceConfig struct {
	// SweepSchedule runs expired-entry and stale-window cleanup.
	SweepSchedule string `yaml:"sweep_schedule"`

	// DailyResetSchedule clears daily usage counters.
	DailyResetSchedule string `yaml:"daily_reset_schedule"`

	// MonthlyResetSchedule clears monthly usage counters.
	MonthlyResetSchedule string `yaml:"monthly_reset_schedule"`
}
