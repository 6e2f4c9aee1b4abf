package limits

import (
	"log/slog"
	"time"

	"nutrihq/ceres/pkg/limits/quota"
	"nutrihq/ceres/pkg/limits/ratelimit"
)

// Manager coordinates rate limiting and quota tracking.
//
// It owns one multi-category rate limiter and one quota tracker and is
// the single admission authority the request pipeline consults. Construct
// it at the application root and pass it by reference; never share it
// through package-level state.
type Manager struct {
	limiter *ratelimit.Limiter
	quotas  *quota.Tracker
	metrics *Metrics
	logger  *slog.Logger
}

// Config contains configuration for the limits manager.
type Config struct {
	// Categories maps rate-limit category names to their budgets.
	// Empty means ratelimit.DefaultCategories().
	Categories map[string]ratelimit.CategoryConfig

	// Quotas holds the per-operation daily/monthly ceilings.
	// Zero value means quota.DefaultLimits().
	Quotas quota.Limits

	// Metrics receives check counters. Optional.
	Metrics *Metrics

	// Logger is the structured logger. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewManager creates a limits manager with the given configuration.
func NewManager(cfg Config) *Manager {
	if len(cfg.Categories) == 0 {
		cfg.Categories = ratelimit.DefaultCategories()
	}
	if cfg.Quotas.Daily == nil && cfg.Quotas.Monthly == nil {
		cfg.Quotas = quota.DefaultLimits()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		limiter: ratelimit.NewLimiter(cfg.Categories).WithLogger(logger),
		quotas:  quota.NewTracker(cfg.Quotas).WithLogger(logger),
		metrics: cfg.Metrics,
		logger:  logger.With("component", "limits"),
	}
}

// CheckRequest checks the sliding-window rate limit for user in category.
// A denial is a normal result carrying a concrete wait time, not an error.
func (m *Manager) CheckRequest(user int64, category string) *CheckResult {
	start := time.Now()
	allowed, retryAfter := m.limiter.Allow(user, category)
	m.metrics.observeCheckDuration("rate_limit", time.Since(start).Seconds())
	m.metrics.recordRateLimitCheck(category, allowed)

	result := &CheckResult{
		Allowed:   allowed,
		Category:  category,
		Remaining: m.limiter.Remaining(user, category),
	}
	if !allowed {
		result.Reason = "rate limit exceeded"
		result.RetryAfter = retryAfter
	}
	return result
}

// CheckQuota checks the daily/monthly ceilings for operation without
// consuming anything.
func (m *Manager) CheckQuota(user int64, operation string) *CheckResult {
	start := time.Now()
	allowed, reason := m.quotas.Check(user, operation)
	m.metrics.observeCheckDuration("quota", time.Since(start).Seconds())
	m.metrics.recordQuotaCheck(operation, allowed)

	daily, _ := m.quotas.Remaining(user, operation)
	result := &CheckResult{
		Allowed:   allowed,
		Category:  operation,
		Remaining: daily,
	}
	if !allowed {
		result.Reason = reason
	}
	return result
}

// RecordUsage charges one unit of operation to user. Invoke only after
// the gated operation actually ran, so denied attempts never consume
// quota.
func (m *Manager) RecordUsage(user int64, operation string) {
	m.quotas.Use(user, operation)
}

// Usage returns user's current quota counters.
func (m *Manager) Usage(user int64) quota.Usage {
	return m.quotas.Usage(user)
}

// ResetUser clears user's rate-limit state in every category.
func (m *Manager) ResetUser(user int64) {
	m.limiter.ResetUser(user)
}

// Cleanup sweeps inactive users out of all rate windows and refreshes the
// active-user gauges. Driven by the external scheduler.
func (m *Manager) Cleanup() int {
	removed := m.limiter.Cleanup()
	stats := m.limiter.Stats()

	total := 0
	for category, n := range removed {
		total += n
		m.metrics.setActiveUsers(category, stats[category].ActiveUsers)
	}
	if total > 0 {
		m.logger.Info("rate limiter cleanup", "removed_users", total)
	}
	return total
}

// ResetDaily clears all daily quota counters. Driven by the external
// scheduler at day rollover.
func (m *Manager) ResetDaily() {
	m.quotas.ResetDaily()
}

// ResetMonthly clears all monthly quota counters. Driven by the external
// scheduler at month rollover.
func (m *Manager) ResetMonthly() {
	m.quotas.ResetMonthly()
}

// ApplyConfig updates rate-limit budgets and quota ceilings in place,
// used for configuration reloads. Recorded state is preserved.
func (m *Manager) ApplyConfig(categories map[string]ratelimit.CategoryConfig, quotas quota.Limits) {
	if len(categories) > 0 {
		m.limiter.Reconfigure(categories)
	}
	if quotas.Daily != nil || quotas.Monthly != nil {
		m.quotas.UpdateLimits(quotas)
	}
	m.logger.Info("limit configuration applied",
		"categories", len(categories),
	)
}

// RateLimiter exposes the underlying limiter for stats endpoints.
func (m *Manager) RateLimiter() *ratelimit.Limiter {
	return m.limiter
}
