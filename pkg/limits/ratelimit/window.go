package ratelimit

import (
	"sync"
	"time"
)

// Window is a per-user sliding-window request counter for one operation
// category.
//
// For each user it keeps the timestamps of admitted requests that still
// fall inside the trailing window. A request is admitted if fewer than
// capacity timestamps remain after pruning; otherwise it is denied with
// the time until the oldest admitted request exits the window, plus one
// second of margin.
//
// All operations are guarded by a mutex: the prune-check-append sequence
// spans multiple statements and Go goroutines preempt at arbitrary points,
// so window state must not be mutated without synchronization.
type Window struct {
	capacity int
	window   time.Duration

	mu       sync.Mutex
	requests map[int64][]time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// WindowStats is a snapshot of a window's in-window activity.
type WindowStats struct {
	// ActiveUsers is the number of users with at least one in-window request.
	ActiveUsers int

	// TotalRequests is the number of in-window requests across all users.
	TotalRequests int

	// Capacity is the per-user admission bound.
	Capacity int

	// Window is the trailing interval length.
	Window time.Duration
}

// NewWindow creates a sliding window admitting at most capacity requests
// per user inside any trailing window interval.
func NewWindow(capacity int, window time.Duration) *Window {
	return &Window{
		capacity: capacity,
		window:   window,
		requests: make(map[int64][]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether another request is admitted for user right now.
//
// On denial the returned duration is how long the user must wait before
// the next request can succeed. On admission the duration is zero and the
// request is recorded.
func (w *Window) Allow(user int64) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	kept := w.pruneLocked(user, now)

	if len(kept) >= w.capacity {
		oldest := kept[0]
		retryAfter := oldest.Add(w.window).Sub(now) + time.Second
		return false, retryAfter
	}

	w.requests[user] = append(kept, now)
	return true, 0
}

// Remaining returns how many admissions user has left in the current window.
func (w *Window) Remaining(user int64) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.pruneLocked(user, w.now())
	remaining := w.capacity - len(kept)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ResetAt returns when the user's oldest in-window request exits the
// window, i.e. when a denied user regains an admission. The second return
// is false if the user has no in-window requests.
func (w *Window) ResetAt(user int64) (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.pruneLocked(user, w.now())
	if len(kept) == 0 {
		return time.Time{}, false
	}
	return kept[0].Add(w.window), true
}

// Reconfigure replaces the window's capacity and interval. Recorded
// requests are kept; they are re-judged against the new settings on the
// next check.
func (w *Window) Reconfigure(capacity int, window time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.capacity = capacity
	w.window = window
}

// ResetUser discards all recorded requests for user.
func (w *Window) ResetUser(user int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.requests, user)
}

// Cleanup drops per-user state with no timestamps remaining inside the
// current window and returns the number of users removed. It bounds memory
// for inactive users and must be driven by an external scheduler.
func (w *Window) Cleanup() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	removed := 0
	for user := range w.requests {
		if kept := w.pruneLocked(user, now); len(kept) == 0 {
			delete(w.requests, user)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of current window activity.
func (w *Window) Stats() WindowStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	stats := WindowStats{Capacity: w.capacity, Window: w.window}
	for user := range w.requests {
		kept := w.pruneLocked(user, now)
		if len(kept) > 0 {
			stats.ActiveUsers++
			stats.TotalRequests += len(kept)
		}
	}
	return stats
}

// pruneLocked drops the user's timestamps at or before now-window and
// returns the retained slice (oldest first). Caller must hold the lock.
func (w *Window) pruneLocked(user int64, now time.Time) []time.Time {
	timestamps := w.requests[user]
	cutoff := now.Add(-w.window)

	i := 0
	for i < len(timestamps) && !timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		timestamps = timestamps[i:]
		if len(timestamps) == 0 {
			delete(w.requests, user)
		} else {
			w.requests[user] = timestamps
		}
	}
	return timestamps
}
