package config

import "time"

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProviderTimeout              = 60 * time.Second
	DefaultProviderPriority             = 100
	DefaultProviderMaxRequestsPerMinute = 60
	DefaultProviderMaxCostPerHour       = 10.0

	// Routing defaults
	DefaultRoutingStrategy = "primary-failover"
	DefaultCostWindowHours = 24

	// Usage defaults
	DefaultUsageSink     = "memory"
	DefaultSQLitePath    = "data/usage.db"
	DefaultRetentionDays = 90
	DefaultPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "json"
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsNamespace     = "relay"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It is called by LoadConfig after parsing but before validation, so a config
// file only needs to specify the fields it wants to change.
func ApplyDefaults(cfg *Config) {
	for name, p := range cfg.Providers {
		if p.Timeout == 0 {
			p.Timeout = DefaultProviderTimeout
		}
		if p.Priority == 0 {
			p.Priority = DefaultProviderPriority
		}
		if p.MaxRequestsPerMinute == 0 {
			p.MaxRequestsPerMinute = DefaultProviderMaxRequestsPerMinute
		}
		if p.MaxCostPerHour == 0 {
			p.MaxCostPerHour = DefaultProviderMaxCostPerHour
		}
		cfg.Providers[name] = p
	}

	if cfg.Routing.Strategy == "" {
		cfg.Routing.Strategy = DefaultRoutingStrategy
	}
	if cfg.Routing.CostWindowHours == 0 {
		cfg.Routing.CostWindowHours = DefaultCostWindowHours
	}

	if cfg.Usage.Sink == "" {
		cfg.Usage.Sink = DefaultUsageSink
	}
	if cfg.Usage.SQLitePath == "" {
		cfg.Usage.SQLitePath = DefaultSQLitePath
	}
	if cfg.Usage.RetentionDays == 0 {
		cfg.Usage.RetentionDays = DefaultRetentionDays
	}
	if cfg.Usage.PruneSchedule == "" {
		cfg.Usage.PruneSchedule = DefaultPruneSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
