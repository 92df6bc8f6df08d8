package providers

import "time"

// Status represents a provider's availability state.
type Status string

// Provider status values.
const (
	// StatusAvailable means the provider is accepting requests.
	StatusAvailable Status = "available"

	// StatusRateLimited means the provider rejected a request for rate
	// limiting and is cooling down. Recovery is lazy: the transition back to
	// Available happens inside IsAvailable once the reset deadline passes.
	StatusRateLimited Status = "rate_limited"

	// StatusError means the provider failed and needs an explicit reset.
	StatusError Status = "error"

	// StatusUnavailable means the provider is administratively offline.
	StatusUnavailable Status = "unavailable"

	// StatusMaintenance means the provider is undergoing maintenance.
	StatusMaintenance Status = "maintenance"
)

// StatusInfo is a point-in-time snapshot of a provider's state.
type StatusInfo struct {
	// Status is the current availability state.
	Status Status `json:"status"`

	// LastError is the message of the most recent recorded error, empty if
	// none.
	LastError string `json:"last_error,omitempty"`

	// RateLimitResetAt is when a rate-limited provider recovers. Zero when
	// the provider is not rate limited, or when it is rate limited with no
	// automatic recovery.
	RateLimitResetAt time.Time `json:"rate_limit_reset_at,omitzero"`
}

// ModelInfo is static metadata for one model in a provider's catalog.
type ModelInfo struct {
	// Name is the model identifier used on the wire (e.g., "gpt-4o").
	Name string `json:"name"`

	// DisplayName is a human-readable model name.
	DisplayName string `json:"display_name"`

	// MaxOutputTokens is the largest completion the model can produce.
	MaxOutputTokens int `json:"max_output_tokens"`

	// InputCostPer1K is the cost in USD per 1000 input tokens.
	InputCostPer1K float64 `json:"input_cost_per_1k"`

	// OutputCostPer1K is the cost in USD per 1000 output tokens.
	OutputCostPer1K float64 `json:"output_cost_per_1k"`

	// ContextWindow is the model's total context size in tokens.
	ContextWindow int `json:"context_window"`

	// Capabilities lists coarse model capabilities (e.g., "chat", "vision").
	Capabilities []string `json:"capabilities,omitempty"`

	// SupportsStreaming indicates server-sent-event streaming support.
	SupportsStreaming bool `json:"supports_streaming"`

	// SupportsFunctions indicates tool/function calling support.
	SupportsFunctions bool `json:"supports_functions"`
}

// GenerationRequest is a provider-agnostic text generation request.
type GenerationRequest struct {
	// Prompt is the user prompt. Must be non-empty.
	Prompt string `json:"prompt"`

	// Model is the model identifier. Empty means the provider's default.
	Model string `json:"model,omitempty"`

	// MaxTokens caps the completion length. Zero means the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls sampling randomness. Nil means the provider
	// default.
	Temperature *float64 `json:"temperature,omitempty"`
}

// GenerationResponse is a provider-agnostic text generation response.
type GenerationResponse struct {
	// Content is the generated text.
	Content string `json:"content"`

	// Model is the model that produced the response.
	Model string `json:"model"`

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the completion token count reported by the provider.
	OutputTokens int `json:"output_tokens"`

	// FinishReason indicates why generation stopped (e.g., "stop", "length").
	FinishReason string `json:"finish_reason,omitempty"`
}
