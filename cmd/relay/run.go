package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"arclight/relay/pkg/config"
	"arclight/relay/pkg/providerfactory"
	"arclight/relay/pkg/routing"
	"arclight/relay/pkg/telemetry/logging"
	"arclight/relay/pkg/telemetry/metrics"
	"arclight/relay/pkg/usage"
)

var runFlags struct {
	logLevel string
	strategy string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay router",
	Long: `Start the relay router with the specified configuration.

The process constructs the configured providers and the router, starts
the metrics endpoint, the config file watcher and the usage retention
scheduler, and serves until interrupted.

Examples:
  # Start with default config
  relay run

  # Start with a custom config
  relay run --config /etc/relay/relay.yaml

  # Override the configured log level
  relay run --log-level debug`,
	RunE: runRouter,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.strategy, "strategy", "", "override routing strategy")
}

func runRouter(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flag overrides
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if runFlags.strategy != "" {
		cfg.Routing.Strategy = runFlags.strategy
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging, nil)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Usage sink
	sink, scheduler, err := buildSink(cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("starting retention scheduler: %w", err)
		}
	}

	// Metrics
	var routerMetrics *metrics.Metrics
	if cfg.Telemetry.Metrics.MetricsEnabled() {
		routerMetrics = metrics.New(cfg.Telemetry.Metrics.Namespace)
	}

	// Providers and router
	providerSet, err := providerfactory.NewAll(cfg)
	if err != nil {
		return fmt.Errorf("constructing providers: %w", err)
	}

	policies := make(map[string]routing.ProviderPolicy, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		policies[name] = routing.PolicyFromConfig(pc)
	}

	router, err := routing.New(providerSet, policies, routing.Options{
		Strategy:      routing.Strategy(cfg.Routing.Strategy),
		Sink:          sink,
		Metrics:       routerMetrics,
		CostRetention: time.Duration(cfg.Routing.CostWindowHours) * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("constructing router: %w", err)
	}

	// Credential check at startup; failing providers start disabled.
	for id, ok := range router.ValidateAllProviders(ctx) {
		if !ok {
			logger.Warn("provider failed startup credential check", "provider", id)
		}
	}

	// Config hot reload for the runtime-tunable subset.
	watcher, err := config.NewWatcher(cfgFile, logger)
	if err != nil {
		logger.Warn("config watcher unavailable, hot reload disabled", "error", err)
	} else {
		defer watcher.Close()
		go func() {
			if err := watcher.Watch(ctx, router.ApplyConfig); err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	// Metrics endpoint
	var metricsServer *http.Server
	if routerMetrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", routerMetrics.Handler())
		metricsServer = &http.Server{
			Addr:    cfg.Telemetry.Metrics.ListenAddress,
			Handler: mux,
		}
		go func() {
			logger.Info("metrics endpoint listening", "address", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	logger.Info("relay started",
		"providers", len(providerSet),
		"strategy", cfg.Routing.Strategy,
		"usage_sink", cfg.Usage.Sink,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics endpoint shutdown failed", "error", err)
		}
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	return nil
}

// buildSink constructs the configured usage sink and, for prunable
// sinks, its retention scheduler.
func buildSink(cfg *config.Config) (usage.Sink, *usage.RetentionScheduler, error) {
	switch cfg.Usage.Sink {
	case "none":
		return usage.NopSink{}, nil, nil
	case "memory", "":
		return usage.NewMemorySink(0), nil, nil
	case "sqlite":
		sqliteCfg := usage.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Usage.SQLitePath
		sink, err := usage.NewSQLiteSink(sqliteCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("opening usage store: %w", err)
		}
		var scheduler *usage.RetentionScheduler
		if cfg.Usage.RetentionDays > 0 {
			scheduler = usage.NewRetentionScheduler(sink, usage.RetentionConfig{
				RetentionDays: cfg.Usage.RetentionDays,
				PruneSchedule: cfg.Usage.PruneSchedule,
			})
		}
		return sink, scheduler, nil
	default:
		return nil, nil, fmt.Errorf("unknown usage sink: %s", cfg.Usage.Sink)
	}
}
