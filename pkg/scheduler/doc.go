// Package scheduler runs the periodic maintenance jobs: cache and
// rate-limit sweeps plus the daily and monthly quota resets, driven
// by cron expressions from the configuration.
package scheduler
