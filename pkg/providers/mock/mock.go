// Package mock implements an in-process providers.Provider used for
// development, smoke testing, and as a last-resort fallback target that
// never spends money.
package mock

import (
	"context"
	"fmt"
	"sync"

	"arclight/relay/pkg/providers"
)

// Provider is a deterministic in-process provider. By default it echoes a
// canned completion; tests can script responses and errors per call.
type Provider struct {
	*providers.State

	catalog *providers.Catalog

	mu       sync.Mutex
	script   []step
	calls    int
	lastReq  *providers.GenerationRequest
	validate error
}

type step struct {
	resp *providers.GenerationResponse
	err  error
}

// New creates a mock provider with the given name.
func New(name string) *Provider {
	if name == "" {
		name = "mock"
	}

	models := []providers.ModelInfo{
		{
			Name:            "mock-standard",
			DisplayName:     "Mock Standard",
			MaxOutputTokens: 4096,
			InputCostPer1K:  0.001,
			OutputCostPer1K: 0.002,
			ContextWindow:   32768,
			Capabilities:    []string{"chat"},
		},
		{
			Name:            "mock-mini",
			DisplayName:     "Mock Mini",
			MaxOutputTokens: 1024,
			InputCostPer1K:  0.0001,
			OutputCostPer1K: 0.0002,
			ContextWindow:   8192,
			Capabilities:    []string{"chat"},
		},
	}

	return &Provider{
		State:   providers.NewState(name),
		catalog: providers.NewCatalog(models, "mock-standard"),
	}
}

// SetCatalog replaces the provider's model catalog.
func (p *Provider) SetCatalog(models []providers.ModelInfo, defaultModel string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog = providers.NewCatalog(models, defaultModel)
}

// Models returns the provider's model catalog.
func (p *Provider) Models() []providers.ModelInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.Models()
}

// DefaultModel returns the default model name.
func (p *Provider) DefaultModel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.DefaultModel()
}

// EstimateCost returns the USD cost for the given token counts.
func (p *Provider) EstimateCost(inputTokens, outputTokens int, model string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.EstimateCost(inputTokens, outputTokens, model)
}

// Generate returns the next scripted step, or a canned echo response when no
// script is queued.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerationRequest) (*providers.GenerationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.lastReq = req

	if len(p.script) > 0 {
		next := p.script[0]
		p.script = p.script[1:]
		return next.resp, next.err
	}

	model := req.Model
	if model == "" {
		model = p.catalog.DefaultModel()
	}

	return &providers.GenerationResponse{
		Content:      fmt.Sprintf("mock completion for %q", req.Prompt),
		Model:        model,
		InputTokens:  len(req.Prompt) / 4,
		OutputTokens: 16,
		FinishReason: "stop",
	}, nil
}

// ValidateCredentials returns the scripted validation error, nil by default.
func (p *Provider) ValidateCredentials(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validate
}

// EnqueueResponse appends a scripted successful response.
func (p *Provider) EnqueueResponse(resp *providers.GenerationResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.script = append(p.script, step{resp: resp})
}

// EnqueueError appends a scripted failure.
func (p *Provider) EnqueueError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.script = append(p.script, step{err: err})
}

// SetValidateError scripts the result of ValidateCredentials.
func (p *Provider) SetValidateError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validate = err
}

// Calls returns how many times Generate has been invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// LastRequest returns the most recent Generate request, nil if none.
func (p *Provider) LastRequest() *providers.GenerationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReq
}
