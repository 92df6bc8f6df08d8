package usage

import "context"

// Sink receives usage metrics for persistence.
//
// Sinks are fire-and-forget from the router's perspective: a Record
// failure is logged by the caller and never propagated to the
// generation result.
type Sink interface {
	// Record persists one metric.
	Record(ctx context.Context, m Metric) error

	// Close releases sink resources.
	Close() error
}

// NopSink discards all metrics. Used when usage persistence is disabled.
type NopSink struct{}

// Record discards the metric.
func (NopSink) Record(context.Context, Metric) error { return nil }

// Close is a no-op.
func (NopSink) Close() error { return nil }
