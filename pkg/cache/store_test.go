package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock gives tests deterministic control over store time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(maxSize int, defaultTTL time.Duration) (*Store[int], *fakeClock) {
	clock := newFakeClock()
	store := NewStore[int](StoreConfig{
		Name:       "test",
		MaxSize:    maxSize,
		DefaultTTL: defaultTTL,
	})
	store.now = clock.Now
	return store, clock
}

// ============================================================================
// Basic Get/Set/Delete Tests
// ============================================================================

func TestStore_SetGet(t *testing.T) {
	store, _ := newTestStore(10, time.Minute)

	store.Set("a", 1, 0)

	got, ok := store.Get("a")
	if !ok {
		t.Fatal("expected hit for key a")
	}
	if got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(10, time.Minute)

	if _, ok := store.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(10, time.Minute)

	store.Set("a", 1, 0)
	if !store.Delete("a") {
		t.Error("expected delete to report presence")
	}
	if store.Delete("a") {
		t.Error("expected second delete to report absence")
	}
	if _, ok := store.Get("a"); ok {
		t.Error("expected miss after delete")
	}
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore(10, time.Minute)

	store.Set("a", 1, 0)
	store.Set("b", 2, 0)
	store.Clear()

	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}

// ============================================================================
// TTL Expiry Tests
// ============================================================================

func TestStore_LazyExpiry(t *testing.T) {
	store, clock := newTestStore(10, time.Minute)

	store.Set("a", 1, 10*time.Second)

	clock.Advance(9 * time.Second)
	if _, ok := store.Get("a"); !ok {
		t.Error("expected hit before TTL elapsed")
	}

	clock.Advance(2 * time.Second)
	if _, ok := store.Get("a"); ok {
		t.Error("expected miss after TTL elapsed")
	}

	// Expiry is idempotent: the entry stays absent.
	if _, ok := store.Get("a"); ok {
		t.Error("expected repeated miss after expiry")
	}
	if store.Len() != 0 {
		t.Errorf("expected expired entry to be purged, store holds %d", store.Len())
	}
}

func TestStore_ExpiryBoundary(t *testing.T) {
	store, clock := newTestStore(10, time.Minute)

	store.Set("a", 1, 10*time.Second)

	// At exactly expires_at the entry is treated as absent.
	clock.Advance(10 * time.Second)
	if _, ok := store.Get("a"); ok {
		t.Error("expected miss at exact expiry instant")
	}
}

func TestStore_OverwriteRefreshesTTL(t *testing.T) {
	store, clock := newTestStore(10, time.Minute)

	store.Set("a", 1, 10*time.Second)
	clock.Advance(8 * time.Second)
	store.Set("a", 2, 10*time.Second)
	clock.Advance(8 * time.Second)

	got, ok := store.Get("a")
	if !ok {
		t.Fatal("expected hit after overwrite refreshed TTL")
	}
	if got != 2 {
		t.Errorf("expected overwritten value 2, got %d", got)
	}
}

func TestStore_CleanupExpired(t *testing.T) {
	store, clock := newTestStore(10, time.Minute)

	store.Set("short1", 1, 10*time.Second)
	store.Set("short2", 2, 10*time.Second)
	store.Set("long", 3, time.Hour)

	clock.Advance(30 * time.Second)

	removed := store.CleanupExpired()
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 surviving entry, got %d", store.Len())
	}
	if _, ok := store.Get("long"); !ok {
		t.Error("expected unexpired entry to survive the sweep")
	}
}

// ============================================================================
// LRU Eviction Tests
// ============================================================================

func TestStore_EvictsLRUAtCapacity(t *testing.T) {
	store, clock := newTestStore(2, time.Minute)

	store.Set("a", 1, 0)
	clock.Advance(time.Second)
	store.Set("b", 2, 0)
	clock.Advance(time.Second)
	store.Set("c", 3, 0)

	// "a" has the oldest access time and must be the one evicted.
	if _, ok := store.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if got, ok := store.Get("b"); !ok || got != 2 {
		t.Errorf("expected b=2 to survive, got %d ok=%v", got, ok)
	}
	if got, ok := store.Get("c"); !ok || got != 3 {
		t.Errorf("expected c=3 to survive, got %d ok=%v", got, ok)
	}
}

func TestStore_GetBumpsRecency(t *testing.T) {
	store, clock := newTestStore(2, time.Minute)

	store.Set("a", 1, 0)
	clock.Advance(time.Second)
	store.Set("b", 2, 0)
	clock.Advance(time.Second)

	// Reading "a" makes "b" the LRU entry.
	store.Get("a")
	clock.Advance(time.Second)
	store.Set("c", 3, 0)

	if _, ok := store.Get("b"); ok {
		t.Error("expected b to be evicted after a was read")
	}
	if _, ok := store.Get("a"); !ok {
		t.Error("expected a to survive")
	}
}

func TestStore_OverwriteNeverEvicts(t *testing.T) {
	store, clock := newTestStore(2, time.Minute)

	store.Set("a", 1, 0)
	clock.Advance(time.Second)
	store.Set("b", 2, 0)
	clock.Advance(time.Second)
	store.Set("a", 10, 0)

	if store.Len() != 2 {
		t.Errorf("expected 2 entries after overwrite, got %d", store.Len())
	}
	if _, ok := store.Get("b"); !ok {
		t.Error("overwrite of a must not evict b")
	}
}

func TestStore_CapacityNeverExceeded(t *testing.T) {
	const maxSize = 5
	store, clock := newTestStore(maxSize, time.Minute)

	for i := 0; i < 50; i++ {
		store.Set(fmt.Sprintf("key-%d", i), i, 0)
		if n := store.Len(); n > maxSize {
			t.Fatalf("store holds %d entries, capacity is %d", n, maxSize)
		}
		clock.Advance(time.Millisecond)
	}
}

// ============================================================================
// Stats Tests
// ============================================================================

func TestStore_Stats(t *testing.T) {
	store, clock := newTestStore(10, time.Minute)

	store.Set("live", 1, time.Hour)
	store.Set("dead", 2, time.Second)
	clock.Advance(10 * time.Second)

	stats := store.Stats()
	if stats.TotalEntries != 2 {
		t.Errorf("expected 2 total, got %d", stats.TotalEntries)
	}
	if stats.ExpiredEntries != 1 {
		t.Errorf("expected 1 expired, got %d", stats.ExpiredEntries)
	}
	if stats.ActiveEntries != 1 {
		t.Errorf("expected 1 active, got %d", stats.ActiveEntries)
	}
	if stats.MaxSize != 10 {
		t.Errorf("expected max size 10, got %d", stats.MaxSize)
	}
	if stats.UsagePercent != 20 {
		t.Errorf("expected 20%% usage, got %f", stats.UsagePercent)
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestStore_ConcurrentSetRespectsCapacity(t *testing.T) {
	const maxSize = 8
	store := NewStore[int](StoreConfig{Name: "concurrent", MaxSize: maxSize, DefaultTTL: time.Minute})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i)
				store.Set(key, i, 0)
				store.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if n := store.Len(); n > maxSize {
		t.Errorf("store holds %d entries after concurrent writes, capacity is %d", n, maxSize)
	}
}
