package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics shared by all cache stores.
// A nil *Metrics is valid and records nothing, so tests can construct
// stores without touching a registry.
type Metrics struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	expirations *prometheus.CounterVec
	size        *prometheus.GaugeVec
}

// NewMetrics creates cache metrics registered with reg. Passing nil
// registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"},
		),

		misses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),

		evictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_cache_evictions_total",
				Help: "Total number of LRU evictions",
			},
			[]string{"cache"},
		),

		expirations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceres_cache_expirations_total",
				Help: "Total number of entries removed because their TTL elapsed",
			},
			[]string{"cache"},
		),

		size: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ceres_cache_entries",
				Help: "Current number of entries held by the cache",
			},
			[]string{"cache"},
		),
	}
}

func (m *Metrics) recordHit(cache string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(cache).Inc()
}

func (m *Metrics) recordMiss(cache string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(cache).Inc()
}

func (m *Metrics) recordEviction(cache string) {
	if m == nil {
		return
	}
	m.evictions.WithLabelValues(cache).Inc()
}

func (m *Metrics) recordExpiration(cache string) {
	if m == nil {
		return
	}
	m.expirations.WithLabelValues(cache).Inc()
}

func (m *Metrics) recordExpirations(cache string, n int) {
	if m == nil {
		return
	}
	m.expirations.WithLabelValues(cache).Add(float64(n))
}

func (m *Metrics) setSize(cache string, n int) {
	if m == nil {
		return
	}
	m.size.WithLabelValues(cache).Set(float64(n))
}
