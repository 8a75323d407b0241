package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultModelIsLowestRanked(t *testing.T) {
	name, ok := DefaultModel(ProviderAnthropic)
	require.True(t, ok)
	assert.Equal(t, "claude-3-haiku-20240307", name)

	_, ok = DefaultModel("UNKNOWN")
	assert.False(t, ok)
}

func TestSmarterModelClimbsTheLadder(t *testing.T) {
	next, ok := SmarterModel(ProviderAnthropic, "claude-3-haiku-20240307")
	require.True(t, ok)
	assert.Equal(t, "claude-3-5-haiku-20241022", next)

	next, ok = SmarterModel(ProviderAnthropic, next)
	require.True(t, ok)
	assert.Equal(t, "claude-3-5-sonnet-20241022", next)

	// Top of the ladder has nowhere to go.
	_, ok = SmarterModel(ProviderAnthropic, "claude-3-5-sonnet-20241022")
	assert.False(t, ok)

	_, ok = SmarterModel(ProviderAnthropic, "no-such-model")
	assert.False(t, ok)
}

func TestProvidersAreCatalogued(t *testing.T) {
	providers := Providers()
	assert.ElementsMatch(t, []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini}, providers)
	for _, p := range providers {
		assert.True(t, KnownProvider(p))
	}
}

func TestComputeCost(t *testing.T) {
	pricing := Pricing{InputPerM: 3, OutputPerM: 15}
	cost := ComputeCost(pricing, 1_000_000, 200_000)
	assert.InDelta(t, 6.0, cost, 1e-9)
}

func TestResolvePricingUnknownIsZero(t *testing.T) {
	pricing := ResolvePricing(ProviderAnthropic, "no-such-model")
	assert.Zero(t, pricing.InputPerM)
	assert.Zero(t, pricing.OutputPerM)
	assert.Zero(t, ComputeCost(pricing, 1_000_000, 1_000_000))
}
