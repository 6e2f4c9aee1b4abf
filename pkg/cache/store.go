package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Default sizing.
const (
	DefaultMaxSize = 1000
	DefaultTTL     = time.Hour
)

// entry is a single cached value. Entries are immutable once stored; an
// overwrite replaces the whole entry.
type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// Name identifies the store in logs and metrics (e.g. "product", "analysis").
	Name string

	// MaxSize is the entry capacity bound. Default: 1000.
	MaxSize int

	// DefaultTTL is applied when Set is called with ttl <= 0. Default: 1 hour.
	DefaultTTL time.Duration

	// Metrics receives hit/miss/eviction counts. Optional.
	Metrics *Metrics

	// Logger is the structured logger. Defaults to slog.Default.
	Logger *slog.Logger
}

// Store is a generic in-memory key/value cache with TTL expiry and LRU
// eviction. See the package documentation for semantics.
type Store[V any] struct {
	name       string
	maxSize    int
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]entry[V]
	access  map[string]time.Time

	metrics *Metrics
	logger  *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// Stats describes the current contents of a store.
type Stats struct {
	// TotalEntries is the number of entries currently held, expired or not.
	TotalEntries int

	// ExpiredEntries is the number of held entries already past their TTL.
	ExpiredEntries int

	// ActiveEntries is TotalEntries minus ExpiredEntries.
	ActiveEntries int

	// MaxSize is the configured capacity bound.
	MaxSize int

	// UsagePercent is TotalEntries relative to MaxSize (0-100).
	UsagePercent float64
}

// NewStore creates a cache store with the given configuration.
func NewStore[V any](cfg StoreConfig) *Store[V] {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store[V]{
		name:       cfg.Name,
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		entries:    make(map[string]entry[V]),
		access:     make(map[string]time.Time),
		metrics:    cfg.Metrics,
		logger:     logger.With("component", "cache", "cache", cfg.Name),
		now:        time.Now,
	}
}

// Get returns the value for key if present and unexpired.
//
// An entry whose TTL has elapsed is treated as absent and removed as a
// side effect of the read, so a later Get on the same key is also a miss.
// A hit bumps the entry's last-access time.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V

	e, ok := s.entries[key]
	if !ok {
		s.metrics.recordMiss(s.name)
		return zero, false
	}

	now := s.now()
	if !now.Before(e.expiresAt) {
		// Lazy expiry.
		delete(s.entries, key)
		delete(s.access, key)
		s.metrics.recordExpiration(s.name)
		s.metrics.recordMiss(s.name)
		s.metrics.setSize(s.name, len(s.entries))
		return zero, false
	}

	s.access[key] = now
	s.metrics.recordHit(s.name)
	return e.value, true
}

// Set stores value under key with the given TTL (ttl <= 0 uses the store
// default). Inserting a new key into a full store evicts the
// least-recently-used entry first; overwriting an existing key never
// triggers eviction.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictLRULocked()
	}

	s.entries[key] = entry[V]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	s.access[key] = now

	s.metrics.setSize(s.name, len(s.entries))
	s.logger.Debug("cache set", "key", key, "ttl", ttl)
}

// Delete removes the entry for key, reporting whether it was present.
func (s *Store[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	delete(s.access, key)
	s.metrics.setSize(s.name, len(s.entries))
	return true
}

// Clear removes all entries.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry[V])
	s.access = make(map[string]time.Time)
	s.metrics.setSize(s.name, 0)
	s.logger.Info("cache cleared")
}

// Len returns the number of entries currently held, including entries that
// have expired but not yet been purged.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CleanupExpired sweeps out every entry whose TTL has elapsed and returns
// the number removed. It is intended to run on a periodic external timer,
// not on every operation.
func (s *Store[V]) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			delete(s.access, key)
			removed++
		}
	}

	if removed > 0 {
		s.metrics.recordExpirations(s.name, removed)
		s.metrics.setSize(s.name, len(s.entries))
		s.logger.Info("cleaned up expired cache entries", "removed", removed)
	}
	return removed
}

// Stats returns a snapshot of the store contents.
func (s *Store[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for _, e := range s.entries {
		if !now.Before(e.expiresAt) {
			expired++
		}
	}

	total := len(s.entries)
	return Stats{
		TotalEntries:   total,
		ExpiredEntries: expired,
		ActiveEntries:  total - expired,
		MaxSize:        s.maxSize,
		UsagePercent:   float64(total) / float64(s.maxSize) * 100,
	}
}

// evictLRULocked removes the entry with the oldest last-access time.
// Caller must hold the lock.
func (s *Store[V]) evictLRULocked() {
	var lruKey string
	var lruTime time.Time
	first := true

	for key, accessed := range s.access {
		if first || accessed.Before(lruTime) {
			lruKey = key
			lruTime = accessed
			first = false
		}
	}
	if first {
		return
	}

	delete(s.entries, lruKey)
	delete(s.access, lruKey)
	s.metrics.recordEviction(s.name)
	s.logger.Debug("evicted LRU cache entry", "key", lruKey)
}
