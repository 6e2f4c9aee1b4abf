package ratelimit

import (
	"log/slog"
	"sort"
	"time"
)

// CategoryGeneral is the fallback category used for checks against a
// category no window is configured for.
const CategoryGeneral = "general"

// CategoryConfig holds the (capacity, window) pair for one category.
type CategoryConfig struct {
	// Capacity is the number of admissions per user inside the window.
	Capacity int

	// Window is the trailing interval length.
	Window time.Duration
}

// DefaultCategories returns the stock category budgets. Image analysis is
// deliberately far tighter than general traffic: the two differ wildly in
// backend cost and must not share one budget.
func DefaultCategories() map[string]CategoryConfig {
	return map[string]CategoryConfig{
		CategoryGeneral:  {Capacity: 30, Window: time.Minute},
		"search":         {Capacity: 20, Window: time.Minute},
		"image_analysis": {Capacity: 5, Window: time.Minute},
		"barcode":        {Capacity: 10, Window: time.Minute},
	}
}

// Limiter routes allow/deny checks to one independently configured Window
// per operation category.
type Limiter struct {
	windows map[string]*Window
	logger  *slog.Logger
}

// NewLimiter creates a limiter with one window per configured category.
// A "general" window is always present: if the configuration omits it, the
// stock general budget is used so fallback dispatch never fails.
func NewLimiter(categories map[string]CategoryConfig) *Limiter {
	windows := make(map[string]*Window, len(categories))
	for name, cfg := range categories {
		windows[name] = NewWindow(cfg.Capacity, cfg.Window)
	}
	if _, ok := windows[CategoryGeneral]; !ok {
		fallback := DefaultCategories()[CategoryGeneral]
		windows[CategoryGeneral] = NewWindow(fallback.Capacity, fallback.Window)
	}

	return &Limiter{
		windows: windows,
		logger:  slog.Default().With("component", "ratelimit"),
	}
}

// WithLogger returns a copy of the limiter that logs through logger.
// The underlying windows are shared, not copied.
func (l *Limiter) WithLogger(logger *slog.Logger) *Limiter {
	if logger == nil {
		return l
	}
	return &Limiter{
		windows: l.windows,
		logger:  logger.With("component", "ratelimit"),
	}
}

// Reconfigure applies new budgets to already-configured categories.
// The category set itself is fixed at construction; budgets for unknown
// names are ignored with a warning and take effect on restart.
func (l *Limiter) Reconfigure(categories map[string]CategoryConfig) {
	for name, cfg := range categories {
		window, ok := l.windows[name]
		if !ok {
			l.logger.Warn("ignoring budget for unknown category", "category", name)
			continue
		}
		window.Reconfigure(cfg.Capacity, cfg.Window)
	}
}

// Allow checks whether user may perform another request in category.
// Unrecognized categories dispatch to the general window.
func (l *Limiter) Allow(user int64, category string) (bool, time.Duration) {
	window, name := l.windowFor(category)

	allowed, retryAfter := window.Allow(user)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			"user", user,
			"category", name,
			"retry_after", retryAfter,
		)
	}
	return allowed, retryAfter
}

// Remaining returns the user's remaining admissions for category.
func (l *Limiter) Remaining(user int64, category string) int {
	window, _ := l.windowFor(category)
	return window.Remaining(user)
}

// ResetUser clears recorded requests for user. With no categories given it
// resets every window; otherwise only the named ones.
func (l *Limiter) ResetUser(user int64, categories ...string) {
	if len(categories) == 0 {
		for _, window := range l.windows {
			window.ResetUser(user)
		}
		return
	}
	for _, category := range categories {
		if window, ok := l.windows[category]; ok {
			window.ResetUser(user)
		}
	}
}

// Cleanup sweeps every window and returns the number of inactive users
// dropped per category.
func (l *Limiter) Cleanup() map[string]int {
	removed := make(map[string]int, len(l.windows))
	for name, window := range l.windows {
		removed[name] = window.Cleanup()
	}
	return removed
}

// Categories returns the configured category names, sorted.
func (l *Limiter) Categories() []string {
	names := make([]string, 0, len(l.windows))
	for name := range l.windows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns per-category window snapshots.
func (l *Limiter) Stats() map[string]WindowStats {
	stats := make(map[string]WindowStats, len(l.windows))
	for name, window := range l.windows {
		stats[name] = window.Stats()
	}
	return stats
}

// windowFor resolves a category to its window, falling back to general.
func (l *Limiter) windowFor(category string) (*Window, string) {
	if window, ok := l.windows[category]; ok {
		return window, category
	}
	return l.windows[CategoryGeneral], CategoryGeneral
}
