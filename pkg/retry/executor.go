package retry

import (
	"context"
	"log/slog"
	"time"
)

// Executor wraps fallible operations with bounded exponential-backoff retry.
//
// An operation is attempted up to MaxRetries+1 times in total. After each
// failed attempt the executor sleeps BaseDelay * 2^attempt before the next
// one. The sleep is context-aware: cancelling the context aborts the wait
// and returns ctx.Err().
//
// Executor is stateless between calls and safe for concurrent use.
type Executor struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// New creates an executor that retries up to maxRetries times (so an
// operation runs at most maxRetries+1 times) with the given base delay.
//
// Negative maxRetries is treated as zero (single attempt, no retry).
// A non-positive baseDelay disables the backoff sleep entirely, which is
// mainly useful in tests.
func New(maxRetries int, baseDelay time.Duration) *Executor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Executor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     slog.Default().With("component", "retry"),
	}
}

// WithLogger returns a copy of the executor that logs through the given logger.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	if logger == nil {
		return e
	}
	clone := *e
	clone.logger = logger.With("component", "retry")
	return &clone
}

// MaxRetries returns the configured retry budget.
func (e *Executor) MaxRetries() int { return e.maxRetries }

// BaseDelay returns the configured first-retry delay.
func (e *Executor) BaseDelay() time.Duration { return e.baseDelay }

// Do runs op until it succeeds or the retry budget is exhausted.
//
// The op label is used only for logging. The error from the final failed
// attempt is returned unchanged so callers can match it with errors.Is or
// errors.As against their own sentinel errors.
func (e *Executor) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt < e.maxRetries {
			delay := e.delayFor(attempt)
			e.logger.Warn("operation failed, retrying",
				"op", op,
				"attempt", attempt+1,
				"max_attempts", e.maxRetries+1,
				"delay", delay,
				"error", lastErr,
			)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	e.logger.Error("operation failed after all attempts",
		"op", op,
		"attempts", e.maxRetries+1,
		"error", lastErr,
	)
	return lastErr
}

// Do runs a value-returning operation through the executor. On failure the
// zero value of T is returned alongside the final error.
func Do[T any](ctx context.Context, e *Executor, op string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := e.Do(ctx, op, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// delayFor computes the backoff delay for a zero-based attempt index.
func (e *Executor) delayFor(attempt int) time.Duration {
	if e.baseDelay <= 0 {
		return 0
	}
	// baseDelay * 2^attempt, capped at 63 shifts to avoid overflow.
	if attempt > 62 {
		attempt = 62
	}
	return e.baseDelay << uint(attempt)
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
