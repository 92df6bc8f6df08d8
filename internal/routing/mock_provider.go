// Package routing provides test doubles for router tests.
package routing

import (
	"context"
	"sync"

	"arclight/relay/pkg/providers"
)

// StubProvider is a controllable providers.Provider for router tests.
// Generate replies from a scripted outcome queue, falling back to a
// canned success; ValidateCredentials returns a configurable error.
//
// The embedded State carries the real status state machine so router
// tests exercise the same availability transitions production does.
type StubProvider struct {
	*providers.State

	mu           sync.Mutex
	models       []providers.ModelInfo
	defaultModel string
	outcomes     []outcome
	validateErr  error
	calls        int
	requests     []providers.GenerationRequest
}

type outcome struct {
	resp *providers.GenerationResponse
	err  error
}

// NewStubProvider creates a stub named id with a two-model catalog
// (stub-large, default, and stub-small).
func NewStubProvider(id string) *StubProvider {
	return &StubProvider{
		State: providers.NewState(id),
		models: []providers.ModelInfo{
			{
				Name:            "stub-large",
				DisplayName:     "Stub Large",
				MaxOutputTokens: 4096,
				InputCostPer1K:  0.002,
				OutputCostPer1K: 0.006,
				ContextWindow:   32768,
			},
			{
				Name:            "stub-small",
				DisplayName:     "Stub Small",
				MaxOutputTokens: 4096,
				InputCostPer1K:  0.0005,
				OutputCostPer1K: 0.0015,
				ContextWindow:   16384,
			},
		},
		defaultModel: "stub-large",
	}
}

// SetModels replaces the stub's catalog.
func (p *StubProvider) SetModels(models []providers.ModelInfo, defaultModel string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.models = models
	p.defaultModel = defaultModel
}

// EnqueueResponse scripts a successful outcome for a future Generate.
func (p *StubProvider) EnqueueResponse(resp *providers.GenerationResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, outcome{resp: resp})
}

// EnqueueError scripts a failed outcome for a future Generate.
func (p *StubProvider) EnqueueError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, outcome{err: err})
}

// SetValidateError controls the ValidateCredentials result.
func (p *StubProvider) SetValidateError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validateErr = err
}

// Calls returns how many times Generate has been invoked.
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Requests returns copies of every request Generate received.
func (p *StubProvider) Requests() []providers.GenerationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]providers.GenerationRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// Generate pops the next scripted outcome, or returns a canned echo
// success when the queue is empty. Context cancellation wins over the
// script.
func (p *StubProvider) Generate(ctx context.Context, req *providers.GenerationRequest) (*providers.GenerationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.requests = append(p.requests, *req)

	if len(p.outcomes) > 0 {
		next := p.outcomes[0]
		p.outcomes = p.outcomes[1:]
		if next.err != nil {
			return nil, next.err
		}
		resp := *next.resp
		if resp.Model == "" {
			resp.Model = req.Model
		}
		return &resp, nil
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	return &providers.GenerationResponse{
		Content:      "stub: " + req.Prompt,
		Model:        model,
		InputTokens:  10,
		OutputTokens: 5,
		FinishReason: "stop",
	}, nil
}

// Models returns the stub's catalog.
func (p *StubProvider) Models() []providers.ModelInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]providers.ModelInfo, len(p.models))
	copy(out, p.models)
	return out
}

// DefaultModel returns the stub's default model name.
func (p *StubProvider) DefaultModel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.defaultModel
}

// EstimateCost prices tokens from the stub catalog, falling back to the
// default model for unknown names.
func (p *StubProvider) EstimateCost(inputTokens, outputTokens int, model string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var info *providers.ModelInfo
	for i := range p.models {
		if p.models[i].Name == model {
			info = &p.models[i]
			break
		}
	}
	if info == nil {
		for i := range p.models {
			if p.models[i].Name == p.defaultModel {
				info = &p.models[i]
				break
			}
		}
	}
	if info == nil {
		return 0
	}
	return (float64(inputTokens)/1000.0)*info.InputCostPer1K +
		(float64(outputTokens)/1000.0)*info.OutputCostPer1K
}

// ValidateCredentials returns the configured validation error.
func (p *StubProvider) ValidateCredentials(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validateErr
}
