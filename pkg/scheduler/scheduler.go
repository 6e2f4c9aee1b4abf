package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes expired cache entries. Implemented by cache stores.
type Sweeper interface {
	CleanupExpired() int
}

// LimitStore exposes the maintenance hooks of the limits manager.
type LimitStore interface {
	Cleanup() int
	ResetDaily()
	ResetMonthly()
}

// Config contains the cron expressions for the maintenance jobs.
// An empty expression disables that job.
type Config struct {
	// SweepSchedule runs cache and rate-limit cleanup.
	SweepSchedule string

	// DailyResetSchedule clears daily usage counters.
	DailyResetSchedule string

	// MonthlyResetSchedule clears monthly usage counters.
	MonthlyResetSchedule string
}

// Scheduler runs maintenance jobs on cron schedules.
type Scheduler struct {
	config  Config
	sweeper Sweeper
	limits  LimitStore
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a maintenance scheduler. Either target may be nil, in
// which case the jobs touching it are skipped.
func New(cfg Config, sweeper Sweeper, limits LimitStore) *Scheduler {
	return &Scheduler{
		config:  cfg,
		sweeper: sweeper,
		limits:  limits,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "scheduler"),
	}
}

// Start registers the configured jobs and begins running them.
// The scheduler stops itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if s.config.SweepSchedule != "" {
		if _, err := s.cron.AddFunc(s.config.SweepSchedule, s.runSweep); err != nil {
			return fmt.Errorf("failed to schedule sweep: %w", err)
		}
	}
	if s.config.DailyResetSchedule != "" && s.limits != nil {
		if _, err := s.cron.AddFunc(s.config.DailyResetSchedule, s.runDailyReset); err != nil {
			return fmt.Errorf("failed to schedule daily reset: %w", err)
		}
	}
	if s.config.MonthlyResetSchedule != "" && s.limits != nil {
		if _, err := s.cron.AddFunc(s.config.MonthlyResetSchedule, s.runMonthlyReset); err != nil {
			return fmt.Errorf("failed to schedule monthly reset: %w", err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("maintenance scheduler started",
		"sweep", s.config.SweepSchedule,
		"daily_reset", s.config.DailyResetSchedule,
		"monthly_reset", s.config.MonthlyResetSchedule,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep removes expired cache entries and idle rate-limit state.
func (s *Scheduler) runSweep() {
	var expired, stale int

	if s.sweeper != nil {
		expired = s.sweeper.CleanupExpired()
	}
	if s.limits != nil {
		stale = s.limits.Cleanup()
	}

	if expired > 0 || stale > 0 {
		s.logger.Info("maintenance sweep completed",
			"expired_entries", expired,
			"stale_windows", stale,
		)
	} else {
		s.logger.Debug("maintenance sweep completed, nothing to remove")
	}
}

func (s *Scheduler) runDailyReset() {
	s.limits.ResetDaily()
	s.logger.Info("daily usage counters reset")
}

func (s *Scheduler) runMonthlyReset() {
	s.limits.ResetMonthly()
	s.logger.Info("monthly usage counters reset")
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("maintenance scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the earliest upcoming job time, or nil when no jobs
// are scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	for _, entry := range entries[1:] {
		if entry.Next.Before(next) {
			next = entry.Next
		}
	}
	return &next
}
