package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"nutrihq/ceres/pkg/cache"
	"nutrihq/ceres/pkg/cli"
	"nutrihq/ceres/pkg/config"
	"nutrihq/ceres/pkg/limits"
	"nutrihq/ceres/pkg/limits/quota"
	"nutrihq/ceres/pkg/limits/ratelimit"
	"nutrihq/ceres/pkg/lookup"
	"nutrihq/ceres/pkg/retry"
	"nutrihq/ceres/pkg/scheduler"
	"nutrihq/ceres/pkg/service"
	"nutrihq/ceres/pkg/storage"
	"nutrihq/ceres/pkg/telemetry/logging"
)

var runFlags struct {
	logLevel string
	watch    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ceres runtime",
	Long: `Start the Ceres runtime with the specified configuration.

The runtime opens the food log store, starts the maintenance scheduler
(cache sweeps and quota resets), and serves metrics and operational
state over HTTP.

Examples:
  # Start with default config
  ceres run

  # Start with custom config
  ceres run --config /etc/ceres/config.yaml

  # Reload limit settings when the config file changes
  ceres run --watch`,
	RunE: runRuntime,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload limit settings on config file changes")
}

func runRuntime(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	fmt.Printf("Ceres v%s\n", Version)
	fmt.Printf("✓ Configuration loaded from %s\n", cfgFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics registry shared by all components.
	registry := prometheus.NewRegistry()
	limitMetrics := limits.NewMetrics(registry)
	cacheMetrics := cache.NewMetrics(registry)

	// Admission control.
	manager := limits.NewManager(limits.Config{
		Categories: rateLimitCategories(cfg),
		Quotas:     quota.Limits(cfg.Quotas),
		Metrics:    limitMetrics,
		Logger:     logger,
	})

	// Food log store.
	store, err := storage.NewStore(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.Storage.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to open food log: %w", err))
	}
	defer store.Close()
	fmt.Printf("✓ Food log store opened at %s\n", cfg.Storage.Path)

	// Product lookup client.
	finder, err := lookup.NewClient(lookup.Config{
		BaseURL:   cfg.Lookup.BaseURL,
		Timeout:   cfg.Lookup.Timeout,
		UserAgent: cfg.Lookup.UserAgent,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to create lookup client: %w", err))
	}

	// Operation pipeline.
	svc, err := service.New(service.Config{
		Limits: manager,
		Finder: finder,
		Log:    store,
		Retry:  retry.New(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay).WithLogger(logger),
		Cache: service.CacheSettings{
			MaxSize:     cfg.Cache.MaxSize,
			SearchTTL:   cfg.Cache.SearchTTL,
			BarcodeTTL:  cfg.Cache.BarcodeTTL,
			AnalysisTTL: cfg.Cache.AnalysisTTL,
		},
		CacheMetrics: cacheMetrics,
		Logger:       logger,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Maintenance jobs.
	sched := scheduler.New(scheduler.Config{
		SweepSchedule:        cfg.Maintenance.SweepSchedule,
		DailyResetSchedule:   cfg.Maintenance.DailyResetSchedule,
		MonthlyResetSchedule: cfg.Maintenance.MonthlyResetSchedule,
	}, svc, manager)
	if err := sched.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer sched.Stop()
	fmt.Println("✓ Maintenance scheduler started")

	// Optional config reload.
	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			_ = watcher.Watch(ctx, func(next *config.Config) {
				manager.ApplyConfig(rateLimitCategories(next), quota.Limits(next.Quotas))
			})
		}()
		fmt.Println("✓ Watching configuration for limit changes")
	}

	// Metrics and operational state.
	var srv *http.Server
	errChan := make(chan error, 1)
	if cfg.Telemetry.Metrics.Enabled {
		srv = newOpsServer(cfg, registry, svc, manager)
		go func() {
			slog.Info("starting ops server", "address", cfg.Telemetry.Metrics.ListenAddress)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("ops server error: %w", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n",
			cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if srv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown failed", "error", err)
				return cli.NewCommandError("run", err)
			}
		}

		fmt.Println("✓ Runtime stopped")
		return nil
	}
}

// rateLimitCategories converts the config section to limiter budgets.
func rateLimitCategories(cfg *config.Config) map[string]ratelimit.CategoryConfig {
	categories := make(map[string]ratelimit.CategoryConfig, len(cfg.RateLimits))
	for name, rl := range cfg.RateLimits {
		categories[name] = ratelimit.CategoryConfig{
			Capacity: rl.Capacity,
			Window:   rl.Window,
		}
	}
	return categories
}

// newOpsServer serves Prometheus metrics plus JSON snapshots of cache
// and rate-limit state.
func newOpsServer(cfg *config.Config, registry *prometheus.Registry, svc *service.Service, manager *limits.Manager) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Telemetry.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"caches":      svc.CacheStats(),
			"rate_limits": manager.RateLimiter().Stats(),
		})
	})

	return &http.Server{
		Addr:              cfg.Telemetry.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
