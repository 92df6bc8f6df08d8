package providers

import (
	"math"
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog([]ModelInfo{
		{Name: "big", InputCostPer1K: 0.01, OutputCostPer1K: 0.03},
		{Name: "small", InputCostPer1K: 0.001, OutputCostPer1K: 0.002},
	}, "big")
}

func TestCatalog_EstimateCost(t *testing.T) {
	tests := []struct {
		name          string
		catalog       *Catalog
		inputTokens   int
		outputTokens  int
		model         string
		want          float64
	}{
		{
			name:         "known model",
			catalog:      testCatalog(),
			inputTokens:  1000,
			outputTokens: 1000,
			model:        "small",
			want:         0.003,
		},
		{
			name:         "unknown model falls back to default pricing",
			catalog:      testCatalog(),
			inputTokens:  1000,
			outputTokens: 0,
			model:        "does-not-exist",
			want:         0.01,
		},
		{
			name:         "fractional thousands",
			catalog:      testCatalog(),
			inputTokens:  500,
			outputTokens: 250,
			model:        "big",
			want:         0.0125,
		},
		{
			name:         "zero tokens",
			catalog:      testCatalog(),
			inputTokens:  0,
			outputTokens: 0,
			model:        "big",
			want:         0,
		},
		{
			name:         "empty catalog",
			catalog:      NewCatalog(nil, ""),
			inputTokens:  1000,
			outputTokens: 1000,
			model:        "anything",
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.catalog.EstimateCost(tt.inputTokens, tt.outputTokens, tt.model)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateCost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatalog_DefaultModel(t *testing.T) {
	if got := testCatalog().DefaultModel(); got != "big" {
		t.Errorf("DefaultModel() = %q, want %q", got, "big")
	}

	// Empty defaultModel falls back to the first entry.
	c := NewCatalog([]ModelInfo{{Name: "only"}}, "")
	if got := c.DefaultModel(); got != "only" {
		t.Errorf("DefaultModel() = %q, want %q", got, "only")
	}

	if got := NewCatalog(nil, "").DefaultModel(); got != "" {
		t.Errorf("empty catalog DefaultModel() = %q, want empty", got)
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := testCatalog()

	if _, ok := c.Lookup("small"); !ok {
		t.Error("Lookup(small) should succeed")
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func TestCatalog_ModelsReturnsCopy(t *testing.T) {
	c := testCatalog()
	models := c.Models()
	models[0].Name = "mutated"

	if c.Models()[0].Name != "big" {
		t.Error("mutating the returned slice should not affect the catalog")
	}
}
