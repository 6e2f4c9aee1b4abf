package limits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the limits package. A nil
// *Metrics records nothing.
type Metrics struct {
	// Rate limit checks
	rateLimitChecks *prometheus.CounterVec
	rateLimitHits   *prometheus.CounterVec

	// Quota checks
	quotaChecks *prometheus.CounterVec
	quotaHits   *prometheus.CounterVec

	// Active users per category window
	activeUsers *prometheus.GaugeVec

	// Check latency
	checkDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with reg. Passing nil
// registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		rateLimitChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_limits_rate_limit_checks_total",
				Help: "Total number of rate limit checks performed",
			},
			[]string{"category", "result"},
		),

		rateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_limits_rate_limit_hits_total",
				Help: "Total number of rate limit denials",
			},
			[]string{"category"},
		),

		quotaChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_limits_quota_checks_total",
				Help: "Total number of quota checks performed",
			},
			[]string{"operation", "result"},
		),

		quotaHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_limits_quota_hits_total",
				Help: "Total number of quota denials",
			},
			[]string{"operation"},
		),

		activeUsers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ceres_limits_active_users",
				Help: "Users with in-window requests per category",
			},
			[]string{"category"},
		),

		checkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ceres_limits_check_duration_seconds",
				Help:    "Duration of admission checks in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) recordRateLimitCheck(category string, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "blocked"
		m.rateLimitHits.WithLabelValues(category).Inc()
	}
	m.rateLimitChecks.WithLabelValues(category, result).Inc()
}

func (m *Metrics) recordQuotaCheck(operation string, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "blocked"
		m.quotaHits.WithLabelValues(operation).Inc()
	}
	m.quotaChecks.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) setActiveUsers(category string, count int) {
	if m == nil {
		return
	}
	m.activeUsers.WithLabelValues(category).Set(float64(count))
}

func (m *Metrics) observeCheckDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.checkDuration.WithLabelValues(operation).Observe(seconds)
}
