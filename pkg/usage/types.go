package usage

import (
	"time"

	"github.com/google/uuid"
)

// Metric is an immutable record of one completed, successful generation
// call. It is created by the router and handed to a Sink; it is never
// mutated afterwards.
type Metric struct {
	// ID is a unique identifier for this metric.
	ID string `json:"id"`

	// Provider is the provider that served the request.
	Provider string `json:"provider"`

	// Model is the resolved model name used on the wire.
	Model string `json:"model"`

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the completion token count reported by the provider.
	OutputTokens int `json:"output_tokens"`

	// Cost is the estimated USD cost (input + output).
	Cost float64 `json:"cost"`

	// Duration is the wall-clock time of the provider call.
	Duration time.Duration `json:"duration"`

	// Timestamp is when the call completed.
	Timestamp time.Time `json:"timestamp"`
}

// NewMetric creates a Metric with a generated ID.
func NewMetric(provider, model string, inputTokens, outputTokens int, cost float64, duration time.Duration, at time.Time) Metric {
	return Metric{
		ID:           uuid.New().String(),
		Provider:     provider,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
		Duration:     duration,
		Timestamp:    at,
	}
}

// ProviderSummary aggregates recorded metrics for one provider.
type ProviderSummary struct {
	Provider     string  `json:"provider"`
	Requests     int64   `json:"requests"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}
