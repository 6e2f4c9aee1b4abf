package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "cache.max_size").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the entire configuration and returns a ValidationError
// if any rule fails. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateRateLimits(cfg.RateLimits)...)
	errs = append(errs, validateQuotas(&cfg.Quotas)...)
	errs = append(errs, validateRetry(&cfg.Retry)...)
	errs = append(errs, validateLookup(&cfg.Lookup)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateMaintenance(&cfg.Maintenance)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "cache.max_size",
			Message: "max size must be positive",
		})
	}
	for field, ttl := range map[string]int64{
		"cache.default_ttl":  int64(cfg.DefaultTTL),
		"cache.search_ttl":   int64(cfg.SearchTTL),
		"cache.barcode_ttl":  int64(cfg.BarcodeTTL),
		"cache.analysis_ttl": int64(cfg.AnalysisTTL),
	} {
		if ttl <= 0 {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "TTL must be positive",
			})
		}
	}

	return errs
}

func validateRateLimits(limits map[string]RateLimitConfig) []FieldError {
	var errs []FieldError

	if len(limits) == 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limits",
			Message: "at least one category must be configured",
		})
		return errs
	}
	if _, ok := limits["general"]; !ok {
		errs = append(errs, FieldError{
			Field:   "rate_limits.general",
			Message: "the general fallback category is required",
		})
	}

	for name, rl := range limits {
		prefix := fmt.Sprintf("rate_limits.%s", name)
		if rl.Capacity <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".capacity",
				Message: "capacity must be positive",
			})
		}
		if rl.Window <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".window",
				Message: "window must be positive",
			})
		}
	}

	return errs
}

func validateQuotas(cfg *QuotasConfig) []FieldError {
	var errs []FieldError

	for op, limit := range cfg.Daily {
		if limit < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("quotas.daily.%s", op),
				Message: "limit must be non-negative",
			})
		}
	}
	for op, limit := range cfg.Monthly {
		if limit < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("quotas.monthly.%s", op),
				Message: "limit must be non-negative",
			})
		}
	}

	return errs
}

func validateRetry(cfg *RetryConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "retry.max_retries",
			Message: "max retries must be non-negative",
		})
	}
	if cfg.BaseDelay <= 0 {
		errs = append(errs, FieldError{
			Field:   "retry.base_delay",
			Message: "base delay must be positive",
		})
	}

	return errs
}

func validateLookup(cfg *LookupConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   "lookup.base_url",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "lookup.base_url",
			Message: fmt.Sprintf("invalid base URL %q", cfg.BaseURL),
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "lookup.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: "listen address is required when metrics are enabled",
			})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "path must start with /",
			})
		}
	}

	return errs
}

func validateMaintenance(cfg *MaintenanceConfig) []FieldError {
	var errs []FieldError

	for field, schedule := range map[string]string{
		"maintenance.sweep_schedule":         cfg.SweepSchedule,
		"maintenance.daily_reset_schedule":   cfg.DailyResetSchedule,
		"maintenance.monthly_reset_schedule": cfg.MonthlyResetSchedule,
	} {
		if _, err := cron.ParseStandard(schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("invalid cron expression %q: %v", schedule, err),
			})
		}
	}

	return errs
}
