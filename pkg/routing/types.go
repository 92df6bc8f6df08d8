package routing

import (
	"fmt"
	"time"

	"arclight/relay/pkg/config"
	"arclight/relay/pkg/providers"
)

// Strategy selects the order in which providers are tried.
type Strategy string

const (
	// StrategyPrimaryFailover orders providers by ascending priority,
	// ties broken by provider id. Default.
	StrategyPrimaryFailover Strategy = "primary-failover"

	// StrategyRoundRobin rotates through eligible providers across
	// calls using a shared cursor.
	StrategyRoundRobin Strategy = "round-robin"

	// StrategyFastest orders providers by ascending average latency;
	// providers with no samples yet sort first.
	StrategyFastest Strategy = "fastest"

	// StrategyLeastCost orders providers by ascending priority, exactly
	// like StrategyPrimaryFailover. Cost-aware ranking would need
	// per-request token estimates that are not available before
	// generation, so operators encode cost preference in priorities.
	StrategyLeastCost Strategy = "least-cost"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPrimaryFailover, StrategyRoundRobin, StrategyFastest, StrategyLeastCost:
		return Strategy(s), nil
	case "":
		return StrategyPrimaryFailover, nil
	default:
		return "", fmt.Errorf("unknown routing strategy: %s", s)
	}
}

// ProviderPolicy is the operator-tunable policy for one provider.
// Enabled, Priority and the limits may be changed at runtime through
// Router.SetProviderPolicy; the router itself clears Enabled when a
// provider reports exhausted quota.
type ProviderPolicy struct {
	// Enabled gates the provider in and out of selection.
	Enabled bool

	// Priority orders providers; lower is tried first.
	Priority int

	// MaxRequestsPerMinute caps requests in a sliding 60s window.
	// Zero or negative always rejects.
	MaxRequestsPerMinute int

	// MaxCostPerHour caps estimated USD cost in a sliding 1h window.
	// Zero or negative always rejects.
	MaxCostPerHour float64

	// PreferredModels are tried in order during model resolution when
	// the caller's model is absent from the provider's catalog.
	PreferredModels []string

	// FallbackModels are tried after PreferredModels.
	FallbackModels []string
}

// PolicyFromConfig maps a provider's file configuration onto a runtime
// policy.
func PolicyFromConfig(pc config.ProviderConfig) ProviderPolicy {
	return ProviderPolicy{
		Enabled:              pc.IsEnabled(),
		Priority:             pc.Priority,
		MaxRequestsPerMinute: pc.MaxRequestsPerMinute,
		MaxCostPerHour:       pc.MaxCostPerHour,
		PreferredModels:      pc.PreferredModels,
		FallbackModels:       pc.FallbackModels,
	}
}

// PolicyPatch is a partial policy update; nil fields are left unchanged.
type PolicyPatch struct {
	Enabled              *bool
	Priority             *int
	MaxRequestsPerMinute *int
	MaxCostPerHour       *float64
	PreferredModels      []string
	FallbackModels       []string
}

// Request is one generation request presented to the router.
type Request struct {
	// Prompt is the text to generate from. Required.
	Prompt string

	// PreferredProvider moves the named provider to the front of the
	// candidate list when it is eligible. Optional.
	PreferredProvider string

	// Model is the caller's model hint; resolved per provider.
	Model string

	// MaxTokens caps the completion length. Optional.
	MaxTokens int

	// Temperature is the sampling temperature. Optional.
	Temperature *float64
}

// Response is the result of a successful generation.
type Response struct {
	// RequestID correlates the response with log records and the
	// emitted usage metric.
	RequestID string

	// Provider is the provider that served the request.
	Provider string

	// Model is the model that produced the content.
	Model string

	// Content is the generated text.
	Content string

	// InputTokens and OutputTokens are the provider-reported counts.
	InputTokens  int
	OutputTokens int

	// Cost is the estimated USD cost of the call.
	Cost float64

	// Duration is the wall-clock time of the provider call.
	Duration time.Duration

	// FinishReason is the provider's stop reason, when reported.
	FinishReason string
}

// UsageSnapshot is a point-in-time view of one provider's usage.
type UsageSnapshot struct {
	// TotalRequests and TotalCost are monotonic process-lifetime
	// counters.
	TotalRequests int64
	TotalCost     float64

	// RecentRequests counts requests in the trailing minute.
	RecentRequests int

	// RecentCost sums estimated cost over the trailing hour.
	RecentCost float64

	// LastRequestAt is the time of the most recent recorded request.
	LastRequestAt time.Time
}

// PerfSnapshot is a point-in-time view of one provider's performance.
type PerfSnapshot struct {
	// AvgLatencyMs is the exponential moving average call latency.
	// Zero until the first sample.
	AvgLatencyMs float64

	// SuccessRate is successes over observed outcomes, in [0, 1].
	SuccessRate float64

	// TotalRequests counts observed outcomes, success and failure.
	TotalRequests int64
}

// ProviderStatusSnapshot is the read-only observability view of one
// provider.
type ProviderStatusSnapshot struct {
	// Available reflects providers.Provider.IsAvailable at snapshot
	// time, including its lazy rate-limit recovery.
	Available bool

	// Status is the provider's detailed status.
	Status providers.StatusInfo

	// Policy is the provider's current policy.
	Policy ProviderPolicy

	// Usage and Performance are the provider's tracker snapshots.
	Usage       UsageSnapshot
	Performance PerfSnapshot
}

// ProviderCost aggregates one provider's cost over a reporting window.
type ProviderCost struct {
	Cost              float64 `json:"cost"`
	Requests          int64   `json:"requests"`
	AvgCostPerRequest float64 `json:"avg_cost_per_request"`
}

// CostSummary aggregates cost over a reporting window across providers.
type CostSummary struct {
	WindowHours   int                     `json:"window_hours"`
	Providers     map[string]ProviderCost `json:"providers"`
	TotalCost     float64                 `json:"total_cost"`
	TotalRequests int64                   `json:"total_requests"`
}
