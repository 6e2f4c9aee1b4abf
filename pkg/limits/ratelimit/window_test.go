package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// fakeClock gives tests deterministic control over window time.
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

func newTestWindow(capacity int, window time.Duration) (*Window, *fakeClock) {
	clock := newFakeClock()
	w := NewWindow(capacity, window)
	w.now = clock.Now
	return w, clock
}

// ============================================================================
// Window Admission Tests
// ============================================================================

func TestWindow_AdmitsUpToCapacity(t *testing.T) {
	w, _ := newTestWindow(3, time.Minute)
	const user = int64(42)

	for i := 0; i < 3; i++ {
		allowed, retryAfter := w.Allow(user)
		if !allowed {
			t.Fatalf("request %d: expected admission", i+1)
		}
		if retryAfter != 0 {
			t.Errorf("request %d: expected zero retry-after on admission, got %v", i+1, retryAfter)
		}
	}

	allowed, retryAfter := w.Allow(user)
	if allowed {
		t.Fatal("4th request inside window: expected denial")
	}
	if retryAfter <= 0 {
		t.Errorf("expected positive retry-after on denial, got %v", retryAfter)
	}
}

func TestWindow_RetryAfterNearFullWindow(t *testing.T) {
	w, clock := newTestWindow(3, 60*time.Second)
	const user = int64(42)

	// Three calls within one second.
	w.Allow(user)
	clock.Advance(500 * time.Millisecond)
	w.Allow(user)
	clock.Advance(500 * time.Millisecond)
	w.Allow(user)

	// Immediate fourth call: the oldest request exits the window in 59s,
	// plus the one-second margin.
	allowed, retryAfter := w.Allow(user)
	if allowed {
		t.Fatal("expected denial at capacity")
	}
	if retryAfter < 59*time.Second || retryAfter > 60*time.Second {
		t.Errorf("expected retry-after in [59s, 60s], got %v", retryAfter)
	}
}

func TestWindow_AdmitsAgainAfterWindowPasses(t *testing.T) {
	w, clock := newTestWindow(3, time.Minute)
	const user = int64(42)

	for i := 0; i < 3; i++ {
		w.Allow(user)
	}
	if allowed, _ := w.Allow(user); allowed {
		t.Fatal("expected denial at capacity")
	}

	clock.Advance(time.Minute + time.Millisecond)

	if allowed, _ := w.Allow(user); !allowed {
		t.Error("expected admission after window passed")
	}
}

func TestWindow_SlidingNotBucketed(t *testing.T) {
	w, clock := newTestWindow(2, 10*time.Second)
	const user = int64(7)

	w.Allow(user) // t=0
	clock.Advance(6 * time.Second)
	w.Allow(user) // t=6

	// t=8: first request still in window, so denied.
	clock.Advance(2 * time.Second)
	if allowed, _ := w.Allow(user); allowed {
		t.Fatal("expected denial while both requests are in window")
	}

	// t=11: the t=0 request has aged out, the t=6 one has not.
	clock.Advance(3 * time.Second)
	if allowed, _ := w.Allow(user); !allowed {
		t.Error("expected admission once the oldest request aged out")
	}
	if allowed, _ := w.Allow(user); allowed {
		t.Error("expected denial again at capacity")
	}
}

func TestWindow_UsersIndependent(t *testing.T) {
	w, _ := newTestWindow(2, time.Minute)

	w.Allow(1)
	w.Allow(1)
	if allowed, _ := w.Allow(1); allowed {
		t.Fatal("expected user 1 to be at capacity")
	}

	if allowed, _ := w.Allow(2); !allowed {
		t.Error("user 2 must not be affected by user 1's budget")
	}
}

func TestWindow_AtMostCapacityTimestampsRetained(t *testing.T) {
	w, clock := newTestWindow(3, time.Minute)
	const user = int64(42)

	for i := 0; i < 10; i++ {
		w.Allow(user)
		clock.Advance(time.Second)
	}

	w.mu.Lock()
	retained := len(w.requests[user])
	w.mu.Unlock()
	if retained > 3 {
		t.Errorf("expected at most capacity timestamps retained, got %d", retained)
	}
}

// ============================================================================
// Remaining / Reset Tests
// ============================================================================

func TestWindow_Remaining(t *testing.T) {
	w, _ := newTestWindow(3, time.Minute)
	const user = int64(42)

	if got := w.Remaining(user); got != 3 {
		t.Errorf("expected 3 remaining for fresh user, got %d", got)
	}
	w.Allow(user)
	w.Allow(user)
	if got := w.Remaining(user); got != 1 {
		t.Errorf("expected 1 remaining, got %d", got)
	}
}

func TestWindow_ResetUser(t *testing.T) {
	w, _ := newTestWindow(1, time.Minute)
	const user = int64(42)

	w.Allow(user)
	if allowed, _ := w.Allow(user); allowed {
		t.Fatal("expected denial at capacity")
	}

	w.ResetUser(user)
	if allowed, _ := w.Allow(user); !allowed {
		t.Error("expected admission after reset")
	}
}

func TestWindow_ResetAt(t *testing.T) {
	w, clock := newTestWindow(1, time.Minute)
	const user = int64(42)

	if _, ok := w.ResetAt(user); ok {
		t.Error("expected no reset time for idle user")
	}

	start := clock.Now()
	w.Allow(user)
	resetAt, ok := w.ResetAt(user)
	if !ok {
		t.Fatal("expected reset time after admission")
	}
	if want := start.Add(time.Minute); !resetAt.Equal(want) {
		t.Errorf("expected reset at %v, got %v", want, resetAt)
	}
}

// ============================================================================
// Cleanup Tests
// ============================================================================

func TestWindow_CleanupDropsIdleUsers(t *testing.T) {
	w, clock := newTestWindow(3, time.Minute)

	w.Allow(1)
	w.Allow(2)
	clock.Advance(30 * time.Second)
	w.Allow(3)

	// Users 1 and 2 age out; user 3 is still in window.
	clock.Advance(45 * time.Second)

	removed := w.Cleanup()
	if removed != 2 {
		t.Errorf("expected 2 users removed, got %d", removed)
	}

	stats := w.Stats()
	if stats.ActiveUsers != 1 {
		t.Errorf("expected 1 active user after cleanup, got %d", stats.ActiveUsers)
	}
}

func TestWindow_Stats(t *testing.T) {
	w, _ := newTestWindow(5, time.Minute)

	w.Allow(1)
	w.Allow(1)
	w.Allow(2)

	stats := w.Stats()
	if stats.ActiveUsers != 2 {
		t.Errorf("expected 2 active users, got %d", stats.ActiveUsers)
	}
	if stats.TotalRequests != 3 {
		t.Errorf("expected 3 in-window requests, got %d", stats.TotalRequests)
	}
	if stats.Capacity != 5 || stats.Window != time.Minute {
		t.Errorf("unexpected config in stats: %+v", stats)
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestWindow_ConcurrentAllowRespectsCapacity(t *testing.T) {
	w := NewWindow(10, time.Minute)
	const user = int64(42)

	var wg sync.WaitGroup
	admitted := make(chan struct{}, 100)
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if allowed, _ := w.Allow(user); allowed {
					admitted <- struct{}{}
				}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != 10 {
		t.Errorf("expected exactly 10 admissions under concurrency, got %d", count)
	}
}

// ============================================================================
// Reconfigure Tests
// ============================================================================

func TestWindow_ReconfigureWidensCapacity(t *testing.T) {
	w, _ := newTestWindow(1, time.Minute)
	const user = int64(42)

	w.Allow(user)
	if allowed, _ := w.Allow(user); allowed {
		t.Fatal("expected denial at capacity 1")
	}

	w.Reconfigure(3, time.Minute)
	if allowed, _ := w.Allow(user); !allowed {
		t.Error("expected admission after widening capacity")
	}
}

func TestWindow_ReconfigureKeepsHistory(t *testing.T) {
	w, _ := newTestWindow(5, time.Minute)
	const user = int64(42)

	w.Allow(user)
	w.Allow(user)

	// Tightening below recorded usage denies immediately.
	w.Reconfigure(2, time.Minute)
	if allowed, _ := w.Allow(user); allowed {
		t.Error("expected denial against tightened capacity")
	}
	if remaining := w.Remaining(user); remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}
}
