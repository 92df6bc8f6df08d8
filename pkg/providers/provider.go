package providers

import (
	"context"
	"time"
)

// Provider is the core interface that all text-generation provider adapters
// must implement. It provides a uniform abstraction over different backends
// (OpenAI-compatible, Anthropic, in-process mock).
//
// Generate must classify every failure into the fixed error taxonomy defined
// in errors.go: the router dispatches on those types and nothing else.
//
// Status-related methods are safe for concurrent use; adapters guard their
// state with a per-provider mutex.
type Provider interface {
	// Generate sends a generation request to the backend and returns the
	// normalized response. The context is used for cancellation and timeout;
	// implementations must return promptly when it is cancelled.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider's configured name (e.g., "openai").
	Name() string

	// Models returns the provider's model catalog in preference order.
	Models() []ModelInfo

	// DefaultModel returns the name of the model used when the caller does
	// not request one.
	DefaultModel() string

	// EstimateCost returns the cost in USD for the given token counts under
	// the named model. Unknown model names fall back to the default model's
	// pricing; an empty catalog yields 0.
	EstimateCost(inputTokens, outputTokens int, model string) float64

	// IsAvailable reports whether the provider can currently accept
	// requests. A rate-limited provider whose reset deadline has passed is
	// transitioned back to Available as a side effect of this call.
	IsAvailable() bool

	// Status returns a snapshot of the provider's current state.
	Status() StatusInfo

	// SetStatus transitions the provider to the given status. The error, if
	// non-nil, is recorded as the provider's last error.
	SetStatus(status Status, err error)

	// SetRateLimited transitions the provider to RateLimited. A positive
	// retryAfter schedules automatic recovery; zero means the provider stays
	// rate-limited until an explicit SetStatus.
	SetRateLimited(retryAfter time.Duration)

	// ValidateCredentials performs a lightweight authenticated call to
	// verify the configured credentials work.
	ValidateCredentials(ctx context.Context) error
}
