package quota

import (
	"fmt"
	"log/slog"
	"sync"
)

// Well-known quota operations.
const (
	OpImageAnalysis = "image_analysis"
	OpBarcodeScans  = "barcode_scans"
	OpSearches      = "searches"
)

// Limits holds the fixed per-operation ceilings. Operations absent from a
// map are unlimited for that period.
type Limits struct {
	Daily   map[string]int
	Monthly map[string]int
}

// DefaultLimits returns the stock quota ceilings.
func DefaultLimits() Limits {
	return Limits{
		Daily: map[string]int{
			OpImageAnalysis: 50,
			OpBarcodeScans:  100,
			OpSearches:      200,
		},
		Monthly: map[string]int{
			OpImageAnalysis: 1000,
			OpBarcodeScans:  2000,
			OpSearches:      5000,
		},
	}
}

// Usage is a snapshot of one user's consumption.
type Usage struct {
	Daily   map[string]int
	Monthly map[string]int
}

// Tracker counts per-user, per-operation usage against daily and monthly
// ceilings. Counters only move up between explicit resets.
//
// Like the rate limiter, the tracker is mutex-guarded: its check and
// increment paths are multi-statement map updates that goroutines must
// not interleave.
type Tracker struct {
	limits Limits

	mu      sync.Mutex
	daily   map[int64]map[string]int
	monthly map[int64]map[string]int

	logger *slog.Logger
}

// NewTracker creates a tracker with the given ceilings.
func NewTracker(limits Limits) *Tracker {
	return &Tracker{
		limits:  limits,
		daily:   make(map[int64]map[string]int),
		monthly: make(map[int64]map[string]int),
		logger:  slog.Default().With("component", "quota"),
	}
}

// WithLogger returns the tracker logging through logger.
func (t *Tracker) WithLogger(logger *slog.Logger) *Tracker {
	if logger != nil {
		t.logger = logger.With("component", "quota")
	}
	return t
}

// UpdateLimits replaces the ceilings. Recorded usage is kept and judged
// against the new limits on the next check.
func (t *Tracker) UpdateLimits(limits Limits) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limits = limits
}

// Check reports whether user has quota left for operation. On denial the
// reason names the first ceiling breached; on success it reads
// "quota available".
func (t *Tracker) Check(user int64, operation string) (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit, ok := t.limits.Daily[operation]; ok {
		if t.daily[user][operation] >= limit {
			return false, fmt.Sprintf("daily limit of %d exceeded", limit)
		}
	}
	if limit, ok := t.limits.Monthly[operation]; ok {
		if t.monthly[user][operation] >= limit {
			return false, fmt.Sprintf("monthly limit of %d exceeded", limit)
		}
	}
	return true, "quota available"
}

// Use charges one unit of operation against both of user's counters.
// Call only after the gated operation has actually run.
func (t *Tracker) Use(user int64, operation string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.daily[user] == nil {
		t.daily[user] = make(map[string]int)
	}
	if t.monthly[user] == nil {
		t.monthly[user] = make(map[string]int)
	}
	t.daily[user][operation]++
	t.monthly[user][operation]++
}

// Usage returns a copy of user's current counters.
func (t *Tracker) Usage(user int64) Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Usage{
		Daily:   copyCounts(t.daily[user]),
		Monthly: copyCounts(t.monthly[user]),
	}
}

// Remaining returns how many daily and monthly units user has left for
// operation. Unlimited periods report -1.
func (t *Tracker) Remaining(user int64, operation string) (daily, monthly int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	daily, monthly = -1, -1
	if limit, ok := t.limits.Daily[operation]; ok {
		daily = limit - t.daily[user][operation]
		if daily < 0 {
			daily = 0
		}
	}
	if limit, ok := t.limits.Monthly[operation]; ok {
		monthly = limit - t.monthly[user][operation]
		if monthly < 0 {
			monthly = 0
		}
	}
	return daily, monthly
}

// ResetDaily clears the daily counters for all users. Invoked by the
// external scheduler at day rollover.
func (t *Tracker) ResetDaily() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.daily = make(map[int64]map[string]int)
	t.logger.Info("daily quotas reset")
}

// ResetMonthly clears the monthly counters for all users. Invoked by the
// external scheduler at month rollover.
func (t *Tracker) ResetMonthly() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.monthly = make(map[int64]map[string]int)
	t.logger.Info("monthly quotas reset")
}

func copyCounts(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for op, n := range counts {
		out[op] = n
	}
	return out
}
