package llm

// Parameter bounds shared across providers.
const (
	// DefaultMaxTokens applies when a request does not set max_tokens.
	DefaultMaxTokens = 1024
	// MaxTemperature is 2.0 to accommodate providers like Gemini.
	MaxTemperature = 2.0
)

// RequestOptions is the standardized view of a request's option map.
type RequestOptions struct {
	// MaxTokens caps the generated output length.
	MaxTokens int
	// Model optionally overrides the client's configured model.
	Model string
	// Temperature controls output randomness; nil means provider default.
	Temperature *float64
	// System is the system instruction, separate from the user prompt.
	System string
	// JSON requests structured JSON output where the provider supports it.
	JSON bool
}

// ParseRequestOptions extracts standardized parameters from an option map,
// falling back to defaults for missing or ill-typed entries.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens: DefaultMaxTokens,
		Model:     defaultModel,
	}
	if v, ok := optInt(opts, "max_tokens"); ok && v > 0 {
		options.MaxTokens = v
	}
	if v, ok := opts["model"].(string); ok && v != "" {
		options.Model = v
	}
	if v, ok := opts["system"].(string); ok {
		options.System = v
	}
	if v, ok := optFloat(opts, "temperature"); ok && v >= 0 && v <= MaxTemperature {
		options.Temperature = &v
	}
	if v, ok := opts["json"].(bool); ok {
		options.JSON = v
	}
	return options
}

func optInt(opts map[string]any, key string) (int, bool) {
	switch v := opts[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func optFloat(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// ClampFloat64 limits val to the [min, max] range.
func ClampFloat64(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// EstimateTokens approximates a token count from text length, used when a
// provider does not report usage. Roughly four characters per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// tokenCount prefers the provider-reported count and falls back to an
// estimate from the text.
func tokenCount(actual int, text string) int {
	if actual > 0 {
		return actual
	}
	return EstimateTokens(text)
}
