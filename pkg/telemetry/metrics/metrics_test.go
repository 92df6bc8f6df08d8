package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordAndServe(t *testing.T) {
	m := New("relay")

	m.RecordRequest("openai", "success")
	m.RecordRequest("openai", "rate_limit")
	m.RecordFailover("openai", "rate_limit")
	m.SetAvailability("openai", false)
	m.RecordLatency("openai", "gpt-4o", 0.42)
	m.RecordCost("openai", "gpt-4o", 0.0125)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("openai", "success")); got != 1 {
		t.Errorf("requests_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.available.WithLabelValues("openai")); got != 0 {
		t.Errorf("provider_available = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.cost.WithLabelValues("openai", "gpt-4o")); got != 0.0125 {
		t.Errorf("cost_usd_total = %v, want 0.0125", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{
		"relay_requests_total",
		"relay_failovers_total",
		"relay_provider_available",
		"relay_request_duration_seconds",
		"relay_cost_usd_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics endpoint missing %s", name)
		}
	}
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	m.RecordRequest("openai", "success")
	m.RecordFailover("openai", "quota")
	m.SetAvailability("openai", true)
	m.RecordLatency("openai", "gpt-4o", 1)
	m.RecordCost("openai", "gpt-4o", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}
