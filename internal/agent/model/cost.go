package model

// Pricing defines USD cost per 1M tokens for input/output.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// ModelSpec ties a model name to its pricing. Position in the catalog slice
// is the model's rank within its provider: index 0 is the provider default,
// later entries are progressively more capable (and more expensive) models
// used for decline escalation.
type ModelSpec struct {
	Name    string
	Pricing Pricing
}

const (
	ProviderAnthropic = "ANTHROPIC"
	ProviderOpenAI    = "OPENAI"
	ProviderGemini    = "GEMINI"
)

var catalog = map[string][]ModelSpec{
	ProviderAnthropic: {
		{Name: "claude-3-haiku-20240307", Pricing: Pricing{InputPerM: 0.25, OutputPerM: 1.25}},
		{Name: "claude-3-5-haiku-20241022", Pricing: Pricing{InputPerM: 1, OutputPerM: 5}},
		{Name: "claude-3-5-sonnet-20241022", Pricing: Pricing{InputPerM: 3, OutputPerM: 15}},
	},
	ProviderOpenAI: {
		{Name: "gpt-4o-mini-2024-07-18", Pricing: Pricing{InputPerM: 0.15, OutputPerM: 0.6}},
		{Name: "gpt-4o-2024-08-06", Pricing: Pricing{InputPerM: 2.5, OutputPerM: 10}},
	},
	ProviderGemini: {
		{Name: "gemini-2.5-flash-lite", Pricing: Pricing{InputPerM: 0.10, OutputPerM: 0.40}},
		{Name: "gemini-2.5-flash", Pricing: Pricing{InputPerM: 0.30, OutputPerM: 2.50}},
	},
}

// Providers lists the providers with at least one catalogued model.
func Providers() []string {
	out := make([]string, 0, len(catalog))
	for p := range catalog {
		out = append(out, p)
	}
	return out
}

// KnownProvider reports whether the provider has catalogued models.
func KnownProvider(provider string) bool {
	_, ok := catalog[provider]
	return ok
}

// DefaultModel returns the lowest-ranked model for a provider.
func DefaultModel(provider string) (string, bool) {
	specs, ok := catalog[provider]
	if !ok || len(specs) == 0 {
		return "", false
	}
	return specs[0].Name, true
}

// SmarterModel returns the next-higher-ranked model for the provider, or
// false when the current model is unknown or already the top of the ladder.
func SmarterModel(provider, current string) (string, bool) {
	specs, ok := catalog[provider]
	if !ok {
		return "", false
	}
	for i, spec := range specs {
		if spec.Name == current {
			if i+1 < len(specs) {
				return specs[i+1].Name, true
			}
			return "", false
		}
	}
	return "", false
}

// ResolvePricing returns the pricing for a provider/model pair. Unknown
// models resolve to zero pricing so spend checks fail open rather than
// blocking the conversation.
func ResolvePricing(provider, model string) Pricing {
	for _, spec := range catalog[provider] {
		if spec.Name == model {
			return spec.Pricing
		}
	}
	return Pricing{}
}

// ComputeCost converts token counts to USD using per-1M pricing.
func ComputeCost(p Pricing, inputTokens, outputTokens int) float64 {
	in := p.InputPerM * float64(inputTokens) / 1_000_000.0
	out := p.OutputPerM * float64(outputTokens) / 1_000_000.0
	return in + out
}
