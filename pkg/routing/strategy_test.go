package routing

import (
	"reflect"
	"testing"
	"time"

	stub "arclight/relay/internal/routing"
	"arclight/relay/pkg/providers"
)

// newStrategyRouter builds a router over stub providers with the given
// priorities, all enabled with generous limits.
func newStrategyRouter(t *testing.T, strategy Strategy, priorities map[string]int) (*Router, map[string]*stub.StubProvider) {
	t.Helper()

	providerSet := make(map[string]providers.Provider, len(priorities))
	stubs := make(map[string]*stub.StubProvider, len(priorities))
	policies := make(map[string]ProviderPolicy, len(priorities))
	for id, priority := range priorities {
		s := stub.NewStubProvider(id)
		providerSet[id] = s
		stubs[id] = s
		policies[id] = ProviderPolicy{
			Enabled:              true,
			Priority:             priority,
			MaxRequestsPerMinute: 1000,
			MaxCostPerHour:       1000,
		}
	}

	r, err := New(providerSet, policies, Options{Strategy: strategy})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, stubs
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyPrimaryFailover, false},
		{"primary-failover", StrategyPrimaryFailover, false},
		{"round-robin", StrategyRoundRobin, false},
		{"fastest", StrategyFastest, false},
		{"least-cost", StrategyLeastCost, false},
		{"random", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSelectOrder_PrimaryFailoverIsDeterministic(t *testing.T) {
	r, _ := newStrategyRouter(t, StrategyPrimaryFailover, map[string]int{
		"alpha": 2,
		"bravo": 1,
		"delta": 3,
	})

	want := []string{"bravo", "alpha", "delta"}
	for i := 0; i < 5; i++ {
		if got := r.selectOrder(""); !reflect.DeepEqual(got, want) {
			t.Fatalf("selectOrder() call %d = %v, want %v", i, got, want)
		}
	}
}

func TestSelectOrder_PriorityTiesBreakByID(t *testing.T) {
	r, _ := newStrategyRouter(t, StrategyPrimaryFailover, map[string]int{
		"zulu":  1,
		"alpha": 1,
		"mike":  1,
	})

	want := []string{"alpha", "mike", "zulu"}
	if got := r.selectOrder(""); !reflect.DeepEqual(got, want) {
		t.Errorf("selectOrder() = %v, want %v", got, want)
	}
}

func TestSelectOrder_LeastCostMatchesPriorityOrder(t *testing.T) {
	priorities := map[string]int{"a": 3, "b": 1, "c": 2}

	primary, _ := newStrategyRouter(t, StrategyPrimaryFailover, priorities)
	leastCost, _ := newStrategyRouter(t, StrategyLeastCost, priorities)

	if got, want := leastCost.selectOrder(""), primary.selectOrder(""); !reflect.DeepEqual(got, want) {
		t.Errorf("least-cost order = %v, want priority order %v", got, want)
	}
}

func TestSelectOrder_PreferredMovesToFront(t *testing.T) {
	r, _ := newStrategyRouter(t, StrategyPrimaryFailover, map[string]int{
		"alpha": 1,
		"bravo": 2,
		"delta": 3,
	})

	want := []string{"delta", "alpha", "bravo"}
	if got := r.selectOrder("delta"); !reflect.DeepEqual(got, want) {
		t.Errorf("selectOrder(delta) = %v, want %v", got, want)
	}
}

func TestSelectOrder_PreferredIgnoredWhenNotEligible(t *testing.T) {
	r, stubs := newStrategyRouter(t, StrategyPrimaryFailover, map[string]int{
		"alpha": 1,
		"bravo": 2,
	})
	stubs["bravo"].SetStatus(providers.StatusError, nil)

	got := r.selectOrder("bravo")
	if !reflect.DeepEqual(got, []string{"alpha"}) {
		t.Errorf("selectOrder(bravo) = %v, want [alpha]", got)
	}
}

func TestSelectOrder_ExcludesDisabledAndUnavailable(t *testing.T) {
	r, stubs := newStrategyRouter(t, StrategyPrimaryFailover, map[string]int{
		"alpha": 1,
		"bravo": 2,
		"delta": 3,
	})

	enabled := false
	if err := r.SetProviderPolicy("alpha", PolicyPatch{Enabled: &enabled}); err != nil {
		t.Fatalf("SetProviderPolicy() error = %v", err)
	}
	stubs["bravo"].SetStatus(providers.StatusMaintenance, nil)

	got := r.selectOrder("")
	if !reflect.DeepEqual(got, []string{"delta"}) {
		t.Errorf("selectOrder() = %v, want [delta]", got)
	}
}

func TestSelectOrder_EmptyEligibleFallsBackToAll(t *testing.T) {
	r, stubs := newStrategyRouter(t, StrategyPrimaryFailover, map[string]int{
		"alpha": 1,
		"bravo": 2,
	})
	stubs["alpha"].SetStatus(providers.StatusError, nil)
	stubs["bravo"].SetStatus(providers.StatusError, nil)

	got := r.selectOrder("")
	if !reflect.DeepEqual(got, []string{"alpha", "bravo"}) {
		t.Errorf("selectOrder() = %v, want fallback to all configured providers", got)
	}
}

func TestSelectOrder_RoundRobinRotates(t *testing.T) {
	r, _ := newStrategyRouter(t, StrategyRoundRobin, map[string]int{
		"a": 1,
		"b": 1,
		"c": 1,
	})

	calls := [][]string{
		{"a", "b", "c"},
		{"b", "c", "a"},
		{"c", "a", "b"},
		{"a", "b", "c"},
	}
	for i, want := range calls {
		if got := r.selectOrder(""); !reflect.DeepEqual(got, want) {
			t.Fatalf("selectOrder() call %d = %v, want %v", i, got, want)
		}
	}
}

func TestSelectOrder_FastestOrdersByLatency(t *testing.T) {
	r, _ := newStrategyRouter(t, StrategyFastest, map[string]int{
		"slow":  1,
		"quick": 2,
		"fresh": 3,
	})

	r.perf["slow"].RecordSuccess(500 * time.Millisecond)
	r.perf["quick"].RecordSuccess(50 * time.Millisecond)
	// "fresh" has no samples and sorts first.

	want := []string{"fresh", "quick", "slow"}
	if got := r.selectOrder(""); !reflect.DeepEqual(got, want) {
		t.Errorf("selectOrder() = %v, want %v", got, want)
	}
}
