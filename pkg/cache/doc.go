// Package cache provides an in-memory TTL cache with LRU eviction and a
// memoization wrapper built on top of it.
//
// # Overview
//
// The cache shields request handlers from repeated, costly lookups against
// slow remote dependencies:
//
//   - Store: generic key/value store with per-entry TTL expiry and
//     least-recently-used eviction under a fixed capacity bound
//   - Memoizer: wraps a fallible function so identical calls within the
//     TTL are served from the store instead of recomputed
//   - Key / NamedKey / ContentKey: deterministic cache key derivation
//
// # Semantics
//
// Expiry is lazy: an expired entry is treated as absent and purged as a
// side effect of the read. A periodic CleanupExpired sweep, driven by an
// external scheduler, bounds memory for entries that are never read again.
//
// Eviction only happens when inserting a new key into a full store;
// overwriting an existing key never evicts. The evicted entry is always
// the one with the oldest last-access time.
//
// The cache is purely in-memory: a process restart discards all entries,
// and callers must treat absence as a normal outcome, never as an error.
//
// # Thread Safety
//
// All Store operations are guarded by a single mutex so a capacity check,
// eviction and insert can never interleave across goroutines. Critical
// sections contain no blocking calls.
package cache
