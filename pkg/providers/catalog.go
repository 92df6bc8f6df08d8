package providers

// Catalog holds a provider's model metadata in preference order and
// implements the cost-estimation fallback rules shared by all adapters.
type Catalog struct {
	models       []ModelInfo
	defaultModel string
	byName       map[string]ModelInfo
}

// NewCatalog creates a catalog from an ordered model list. defaultModel
// should name an entry in models; an empty defaultModel falls back to the
// first entry.
func NewCatalog(models []ModelInfo, defaultModel string) *Catalog {
	byName := make(map[string]ModelInfo, len(models))
	for _, m := range models {
		byName[m.Name] = m
	}

	if defaultModel == "" && len(models) > 0 {
		defaultModel = models[0].Name
	}

	return &Catalog{
		models:       models,
		defaultModel: defaultModel,
		byName:       byName,
	}
}

// Models returns the catalog in preference order.
// The returned slice is a copy; callers may mutate it.
func (c *Catalog) Models() []ModelInfo {
	out := make([]ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// DefaultModel returns the default model name, empty for an empty catalog.
func (c *Catalog) DefaultModel() string {
	return c.defaultModel
}

// Lookup returns the metadata for a model name.
func (c *Catalog) Lookup(name string) (ModelInfo, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// EstimateCost computes the USD cost for the given token counts under the
// named model. An unknown model name falls back to the default model's
// pricing; an empty catalog returns 0.
func (c *Catalog) EstimateCost(inputTokens, outputTokens int, model string) float64 {
	m, ok := c.byName[model]
	if !ok {
		m, ok = c.byName[c.defaultModel]
	}
	if !ok {
		return 0
	}

	return tokenCost(inputTokens, m.InputCostPer1K) + tokenCost(outputTokens, m.OutputCostPer1K)
}

// tokenCost converts a token count and a per-1K rate into a USD amount.
func tokenCost(tokens int, costPer1K float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return (float64(tokens) / 1000.0) * costPer1K
}
