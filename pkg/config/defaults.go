package config

import "time"

// Default values for configuration fields.
const (
	// Cache defaults
	DefaultCacheMaxSize     = 1000
	DefaultCacheTTL         = time.Hour
	DefaultCacheSearchTTL   = 30 * time.Minute
	DefaultCacheBarcodeTTL  = time.Hour
	DefaultCacheAnalysisTTL = 24 * time.Hour

	// Retry defaults
	DefaultRetryMaxRetries = 3
	DefaultRetryBaseDelay  = time.Second

	// Lookup defaults
	DefaultLookupBaseURL   = "https://world.openfoodfacts.org"
	DefaultLookupTimeout   = 10 * time.Second
	DefaultLookupUserAgent = "ceres/1.0"

	// Storage defaults
	DefaultStoragePath        = "data/ceres.db"
	DefaultStorageBusyTimeout = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"

	// Maintenance defaults
	DefaultSweepSchedule        = "@every 5m"
	DefaultDailyResetSchedule   = "0 0 * * *"
	DefaultMonthlyResetSchedule = "0 0 1 * *"
)

// DefaultRateLimits returns the stock per-category window settings.
func DefaultRateLimits() map[string]RateLimitConfig {
	return map[string]RateLimitConfig{
		"general":        {Capacity: 30, Window: time.Minute},
		"search":         {Capacity: 20, Window: time.Minute},
		"image_analysis": {Capacity: 5, Window: time.Minute},
		"barcode":        {Capacity: 10, Window: time.Minute},
	}
}

// DefaultQuotas returns the stock per-user usage ceilings.
func DefaultQuotas() QuotasConfig {
	return QuotasConfig{
		Daily: map[string]int{
			"image_analysis": 50,
			"barcode_scans":  100,
			"searches":       200,
		},
		Monthly: map[string]int{
			"image_analysis": 1000,
			"barcode_scans":  2000,
			"searches":       5000,
		},
	}
}

// ApplyDefaults fills zero-valued fields with defaults.
// It is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Cache defaults
	if cfg.Cache.MaxSize == 0 {
		cfg.Cache.MaxSize = DefaultCacheMaxSize
	}
	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = DefaultCacheSearchTTL
	}
	if cfg.Cache.BarcodeTTL == 0 {
		cfg.Cache.BarcodeTTL = DefaultCacheBarcodeTTL
	}
	if cfg.Cache.AnalysisTTL == 0 {
		cfg.Cache.AnalysisTTL = DefaultCacheAnalysisTTL
	}

	// Rate limit defaults. Categories given in the file keep their
	// settings; missing stock categories are added.
	if cfg.RateLimits == nil {
		cfg.RateLimits = make(map[string]RateLimitConfig)
	}
	for name, rl := range DefaultRateLimits() {
		if _, ok := cfg.RateLimits[name]; !ok {
			cfg.RateLimits[name] = rl
		}
	}
	for name, rl := range cfg.RateLimits {
		if rl.Window == 0 {
			rl.Window = time.Minute
			cfg.RateLimits[name] = rl
		}
	}

	// Quota defaults
	if cfg.Quotas.Daily == nil {
		cfg.Quotas.Daily = DefaultQuotas().Daily
	}
	if cfg.Quotas.Monthly == nil {
		cfg.Quotas.Monthly = DefaultQuotas().Monthly
	}

	// Retry defaults
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = DefaultRetryMaxRetries
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = DefaultRetryBaseDelay
	}

	// Lookup defaults
	if cfg.Lookup.BaseURL == "" {
		cfg.Lookup.BaseURL = DefaultLookupBaseURL
	}
	if cfg.Lookup.Timeout == 0 {
		cfg.Lookup.Timeout = DefaultLookupTimeout
	}
	if cfg.Lookup.UserAgent == "" {
		cfg.Lookup.UserAgent = DefaultLookupUserAgent
	}

	// Storage defaults
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	// Maintenance defaults
	if cfg.Maintenance.SweepSchedule == "" {
		cfg.Maintenance.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.Maintenance.DailyResetSchedule == "" {
		cfg.Maintenance.DailyResetSchedule = DefaultDailyResetSchedule
	}
	if cfg.Maintenance.MonthlyResetSchedule == "" {
		cfg.Maintenance.MonthlyResetSchedule = DefaultMonthlyResetSchedule
	}
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{Telemetry: TelemetryConfig{
		Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
	}}
	ApplyDefaults(cfg)
	return cfg
}
