package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"arclight/relay/pkg/providers"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(Config{
		Name:    "anthropic",
		BaseURL: server.URL,
		APIKey:  "sk-ant-test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{Name: "anthropic"})
	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestGenerate_Success(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("x-api-key header = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != apiVersion {
			t.Errorf("anthropic-version header = %q, want %q", got, apiVersion)
		}
		w.Write([]byte(`{
			"id": "msg_1",
			"model": "claude-3-5-sonnet-20241022",
			"content": [{"type": "text", "text": "hello "}, {"type": "text", "text": "world"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	})

	resp, err := p.Generate(context.Background(), &providers.GenerationRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if resp.Content != "hello world" {
		t.Errorf("content = %q, want %q", resp.Content, "hello world")
	}
	if resp.InputTokens != 10 || resp.OutputTokens != 4 {
		t.Errorf("tokens = %d/%d, want 10/4", resp.InputTokens, resp.OutputTokens)
	}
	if resp.FinishReason != "end_turn" {
		t.Errorf("finish reason = %q, want end_turn", resp.FinishReason)
	}
}

func TestGenerate_RequiresMaxTokensOnWire(t *testing.T) {
	var gotMaxTokens int
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotMaxTokens = req.MaxTokens
		w.Write([]byte(`{"model": "claude-3-5-sonnet-20241022", "content": [], "usage": {}}`))
	})

	if _, err := p.Generate(context.Background(), &providers.GenerationRequest{Prompt: "hi"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotMaxTokens != defaultMaxTokens {
		t.Errorf("wire max_tokens = %d, want %d", gotMaxTokens, defaultMaxTokens)
	}
}

func TestGenerate_ClassifiesRateLimit(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "rate limited"}}`))
	})

	_, err := p.Generate(context.Background(), &providers.GenerationRequest{Prompt: "hi"})

	var rlErr *providers.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rlErr.RetryAfter.Seconds() != 12 {
		t.Errorf("retry after = %v, want 12s", rlErr.RetryAfter)
	}
}

func TestGenerate_ClassifiesQuota(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "Your credit balance is too low to access the Anthropic API."}}`))
	})

	_, err := p.Generate(context.Background(), &providers.GenerationRequest{Prompt: "hi"})

	var qErr *providers.QuotaError
	if !errors.As(err, &qErr) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
}

func TestGenerate_ClassifiesCredentials(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	})

	_, err := p.Generate(context.Background(), &providers.GenerationRequest{Prompt: "hi"})

	var credErr *providers.CredentialsError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialsError, got %v", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	var gotMaxTokens int
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotMaxTokens = req.MaxTokens
		w.Write([]byte(`{"model": "claude-3-5-sonnet-20241022", "content": [], "usage": {}}`))
	})

	if err := p.ValidateCredentials(context.Background()); err != nil {
		t.Errorf("ValidateCredentials() error = %v", err)
	}
	if gotMaxTokens != 1 {
		t.Errorf("probe max_tokens = %d, want 1", gotMaxTokens)
	}
}

func TestEstimateCost(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

	// claude-3-5-haiku: 0.0008 in, 0.004 out per 1K.
	got := p.EstimateCost(1000, 500, "claude-3-5-haiku-20241022")
	want := 0.0028
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("EstimateCost() = %v, want %v", got, want)
	}
}
