package cache

import (
	"context"
	"time"
)

// Memoizer avoids recomputation by consulting a Store before invoking the
// wrapped function.
//
// On a hit the cached value is returned without running the function. On a
// miss the function runs, and only a successful result is stored; errors
// propagate to the caller unchanged and nothing is cached for them (no
// negative caching of failures).
//
// Memoizer does not de-duplicate concurrent identical in-flight calls: if
// two callers miss on the same key before either completes, the function
// runs twice and both results land in the same slot. Callers that cannot
// tolerate duplicate computation must serialize at a higher level.
type Memoizer[V any] struct {
	store *Store[V]
	ttl   time.Duration
}

// NewMemoizer creates a memoizer over store. Results are cached with the
// given TTL; ttl <= 0 falls back to the store default.
func NewMemoizer[V any](store *Store[V], ttl time.Duration) *Memoizer[V] {
	return &Memoizer[V]{store: store, ttl: ttl}
}

// Do returns the cached value for key, or invokes fn and caches its result.
func (m *Memoizer[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if cached, ok := m.store.Get(key); ok {
		return cached, nil
	}

	result, err := fn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	m.store.Set(key, result, m.ttl)
	return result, nil
}

// DoTTL is Do with a per-call TTL override.
func (m *Memoizer[V]) DoTTL(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (V, error)) (V, error) {
	if cached, ok := m.store.Get(key); ok {
		return cached, nil
	}

	result, err := fn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	m.store.Set(key, result, ttl)
	return result, nil
}
