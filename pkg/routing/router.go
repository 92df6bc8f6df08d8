package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"arclight/relay/pkg/config"
	"arclight/relay/pkg/providers"
	"arclight/relay/pkg/telemetry/metrics"
	"arclight/relay/pkg/usage"
)

// Options configures a Router.
type Options struct {
	// Strategy is the initial selection strategy.
	// Default: StrategyPrimaryFailover
	Strategy Strategy

	// Sink receives one usage metric per successful generation.
	// Default: usage.NopSink
	Sink usage.Sink

	// Metrics receives router instrumentation. Optional; nil disables.
	Metrics *metrics.Metrics

	// CostRetention is the reporting horizon for CostSummary.
	// Default: DefaultCostRetention
	CostRetention time.Duration
}

// Router owns the provider set and routes generation requests across it
// with failover. See the package documentation for the algorithm.
type Router struct {
	providers map[string]providers.Provider
	trackers  map[string]*UsageTracker
	perf      map[string]*PerformanceStats

	// mu guards policies and strategy.
	mu       sync.RWMutex
	policies map[string]ProviderPolicy
	strategy Strategy

	// cursor is the shared round-robin rotation counter.
	cursor atomic.Int64

	sink    usage.Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Router over the given providers and their policies.
// Providers without a policy entry are enabled with default limits.
func New(providerSet map[string]providers.Provider, policies map[string]ProviderPolicy, opts Options) (*Router, error) {
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}

	sink := opts.Sink
	if sink == nil {
		sink = usage.NopSink{}
	}

	r := &Router{
		providers: make(map[string]providers.Provider, len(providerSet)),
		trackers:  make(map[string]*UsageTracker, len(providerSet)),
		perf:      make(map[string]*PerformanceStats, len(providerSet)),
		policies:  make(map[string]ProviderPolicy, len(providerSet)),
		strategy:  strategy,
		sink:      sink,
		metrics:   opts.Metrics,
		logger:    slog.Default().With("component", "routing"),
		now:       time.Now,
	}

	for id, p := range providerSet {
		policy, ok := policies[id]
		if !ok {
			policy = ProviderPolicy{
				Enabled:              true,
				Priority:             config.DefaultProviderPriority,
				MaxRequestsPerMinute: config.DefaultProviderMaxRequestsPerMinute,
				MaxCostPerHour:       config.DefaultProviderMaxCostPerHour,
			}
		}
		r.providers[id] = p
		r.policies[id] = policy
		r.trackers[id] = NewUsageTracker(opts.CostRetention)
		r.perf[id] = NewPerformanceStats()
	}

	r.logger.Info("router initialized",
		"providers", len(r.providers),
		"strategy", strategy,
	)

	return r, nil
}

// Generate routes one request across the provider set.
//
// Candidates are attempted sequentially in strategy order; each is
// attempted at most once per call. Usage, performance and the sink
// metric are recorded exactly once, only on success. On exhaustion the
// last observed error is returned. Context cancellation stops the loop
// before the next candidate.
func (r *Router) Generate(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	requestID := uuid.New().String()
	logger := r.logger.With("request_id", requestID)

	candidates := r.selectOrder(req.PreferredProvider)
	if len(candidates) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error
	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		policy, ok := r.policy(id)
		if !ok || !policy.Enabled {
			continue
		}
		if !r.trackers[id].CanUse(policy) {
			logger.Debug("provider skipped, over limits", "provider", id)
			r.metrics.RecordFailover(id, "limited")
			continue
		}
		p := r.providers[id]
		if !p.IsAvailable() {
			logger.Debug("provider skipped, unavailable", "provider", id)
			r.metrics.RecordFailover(id, "unavailable")
			continue
		}

		model := resolveModel(p, policy, req.Model)

		start := r.now()
		genResp, err := p.Generate(ctx, &providers.GenerationRequest{
			Prompt:      req.Prompt,
			Model:       model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
		elapsed := r.now().Sub(start)

		if err == nil {
			return r.recordSuccess(ctx, logger, requestID, id, model, genResp, elapsed), nil
		}

		// A call that did not observably complete must not advance the
		// loop nor record anything.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		r.perf[id].RecordFailure()
		lastErr = err
		r.handleFailure(logger, id, err)
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoProviders
}

// recordSuccess updates tracker, perf, metrics and the sink for one
// successful call and builds the caller's response.
func (r *Router) recordSuccess(ctx context.Context, logger *slog.Logger, requestID, id, model string, genResp *providers.GenerationResponse, elapsed time.Duration) *Response {
	p := r.providers[id]

	respModel := genResp.Model
	if respModel == "" {
		respModel = model
	}
	cost := p.EstimateCost(genResp.InputTokens, genResp.OutputTokens, respModel)

	r.trackers[id].Record(cost)
	r.perf[id].RecordSuccess(elapsed)

	r.metrics.RecordRequest(id, "success")
	r.metrics.RecordLatency(id, respModel, elapsed.Seconds())
	r.metrics.RecordCost(id, respModel, cost)

	metric := usage.NewMetric(id, respModel, genResp.InputTokens, genResp.OutputTokens, cost, elapsed, r.now())
	if err := r.sink.Record(ctx, metric); err != nil {
		logger.Warn("usage sink record failed",
			"provider", id,
			"error", err,
		)
	}

	logger.Info("generation succeeded",
		"provider", id,
		"model", respModel,
		"input_tokens", genResp.InputTokens,
		"output_tokens", genResp.OutputTokens,
		"cost", cost,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &Response{
		RequestID:    requestID,
		Provider:     id,
		Model:        respModel,
		Content:      genResp.Content,
		InputTokens:  genResp.InputTokens,
		OutputTokens: genResp.OutputTokens,
		Cost:         cost,
		Duration:     elapsed,
		FinishReason: genResp.FinishReason,
	}
}

// handleFailure marks provider state for one classified failure.
func (r *Router) handleFailure(logger *slog.Logger, id string, err error) {
	p := r.providers[id]

	var outcome string
	var rateLimitErr *providers.RateLimitError
	var quotaErr *providers.QuotaError
	var credErr *providers.CredentialsError

	switch {
	case errors.As(err, &rateLimitErr):
		outcome = "rate_limit"
		p.SetRateLimited(rateLimitErr.RetryAfter)
	case errors.As(err, &quotaErr):
		outcome = "quota"
		// Quota exhaustion is permanent until an operator re-enables
		// the provider.
		r.setEnabled(id, false)
	case errors.As(err, &credErr):
		outcome = "credentials"
	default:
		outcome = "error"
	}

	r.metrics.RecordRequest(id, outcome)
	r.metrics.RecordFailover(id, outcome)

	logger.Warn("provider call failed, trying next candidate",
		"provider", id,
		"outcome", outcome,
		"error", err,
	)
}

// resolveModel picks the model to send to a provider: the caller's
// model when it is in the catalog, else the first preferred then
// fallback model found in the catalog, else the provider default
// (which itself falls back to the first catalog entry).
func resolveModel(p providers.Provider, policy ProviderPolicy, requested string) string {
	catalog := make(map[string]bool)
	for _, m := range p.Models() {
		catalog[m.Name] = true
	}

	if requested != "" && catalog[requested] {
		return requested
	}
	for _, name := range policy.PreferredModels {
		if catalog[name] {
			return name
		}
	}
	for _, name := range policy.FallbackModels {
		if catalog[name] {
			return name
		}
	}
	return p.DefaultModel()
}

// policy returns a snapshot of one provider's policy.
func (r *Router) policy(id string) (ProviderPolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	policy, ok := r.policies[id]
	return policy, ok
}

// setEnabled flips one provider's enabled flag.
func (r *Router) setEnabled(id string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.policies[id]
	if !ok {
		return
	}
	policy.Enabled = enabled
	r.policies[id] = policy
}

// Strategy returns the active selection strategy.
func (r *Router) Strategy() Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strategy
}

// SetStrategy switches the selection strategy at runtime.
func (r *Router) SetStrategy(s Strategy) error {
	parsed, err := ParseStrategy(string(s))
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.strategy = parsed
	r.mu.Unlock()

	r.logger.Info("selection strategy changed", "strategy", parsed)
	return nil
}

// SetProviderPolicy applies a partial policy update to one provider.
func (r *Router) SetProviderPolicy(id string, patch PolicyPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	policy, ok := r.policies[id]
	if !ok {
		return &UnknownProviderError{ID: id}
	}

	if patch.Enabled != nil {
		policy.Enabled = *patch.Enabled
	}
	if patch.Priority != nil {
		policy.Priority = *patch.Priority
	}
	if patch.MaxRequestsPerMinute != nil {
		policy.MaxRequestsPerMinute = *patch.MaxRequestsPerMinute
	}
	if patch.MaxCostPerHour != nil {
		policy.MaxCostPerHour = *patch.MaxCostPerHour
	}
	if patch.PreferredModels != nil {
		policy.PreferredModels = patch.PreferredModels
	}
	if patch.FallbackModels != nil {
		policy.FallbackModels = patch.FallbackModels
	}

	r.policies[id] = policy

	r.logger.Info("provider policy updated",
		"provider", id,
		"enabled", policy.Enabled,
		"priority", policy.Priority,
	)
	return nil
}

// ProviderPolicy returns a snapshot of one provider's policy.
func (r *Router) ProviderPolicy(id string) (ProviderPolicy, error) {
	policy, ok := r.policy(id)
	if !ok {
		return ProviderPolicy{}, &UnknownProviderError{ID: id}
	}
	return policy, nil
}

// Providers returns the configured provider ids, unordered.
func (r *Router) Providers() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}

// ApplyConfig re-applies the runtime-tunable configuration subset, the
// selection strategy and per-provider policies, to the running router.
// Providers added or removed in the file are ignored; the provider set
// is fixed at startup.
func (r *Router) ApplyConfig(cfg *config.Config) {
	if strategy, err := ParseStrategy(cfg.Routing.Strategy); err == nil {
		r.mu.Lock()
		r.strategy = strategy
		r.mu.Unlock()
	}

	r.mu.Lock()
	for id := range r.policies {
		pc, ok := cfg.Providers[id]
		if !ok {
			continue
		}
		r.policies[id] = PolicyFromConfig(pc)
	}
	r.mu.Unlock()

	r.logger.Info("runtime configuration applied")
}

// ValidateAllProviders runs each provider's credential check and
// reports the results. A provider that fails the check is disabled
// until an operator re-enables it.
func (r *Router) ValidateAllProviders(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(r.providers))
	for id, p := range r.providers {
		err := p.ValidateCredentials(ctx)
		if err != nil {
			r.setEnabled(id, false)
			r.logger.Warn("provider credential check failed, provider disabled",
				"provider", id,
				"error", err,
			)
		}
		results[id] = err == nil
	}
	return results
}

// ProviderStatus returns a read-only observability snapshot per
// provider. It mutates no state beyond the lazy rate-limit recovery
// inside IsAvailable.
func (r *Router) ProviderStatus() map[string]ProviderStatusSnapshot {
	out := make(map[string]ProviderStatusSnapshot, len(r.providers))
	for id, p := range r.providers {
		available := p.IsAvailable()
		r.metrics.SetAvailability(id, available)

		policy, _ := r.policy(id)
		out[id] = ProviderStatusSnapshot{
			Available:   available,
			Status:      p.Status(),
			Policy:      policy,
			Usage:       r.trackers[id].Snapshot(),
			Performance: r.perf[id].Snapshot(),
		}
	}
	return out
}

// CostSummary aggregates recorded cost per provider over the trailing
// window. Hours below one are raised to one; windows beyond the
// tracker retention are capped there.
func (r *Router) CostSummary(hours int) CostSummary {
	if hours < 1 {
		hours = 1
	}
	window := time.Duration(hours) * time.Hour

	summary := CostSummary{
		WindowHours: hours,
		Providers:   make(map[string]ProviderCost, len(r.providers)),
	}
	for id := range r.providers {
		cost, requests := r.trackers[id].CostWithin(window)
		pc := ProviderCost{Cost: cost, Requests: requests}
		if requests > 0 {
			pc.AvgCostPerRequest = cost / float64(requests)
		}
		summary.Providers[id] = pc
		summary.TotalCost += cost
		summary.TotalRequests += requests
	}
	return summary
}

// SetNowFunc overrides the router's clock and that of every tracker.
// Tests only.
func (r *Router) SetNowFunc(now func() time.Time) {
	r.now = now
	for _, t := range r.trackers {
		t.SetNowFunc(now)
	}
}

// String implements fmt.Stringer for debug logging.
func (r *Router) String() string {
	return fmt.Sprintf("Router(providers=%d, strategy=%s)", len(r.providers), r.Strategy())
}
