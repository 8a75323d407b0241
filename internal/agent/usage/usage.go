// Package usage persists per-user token usage and enforces the trailing
// spend limit before a turn runs.
package usage

import (
	"context"
	"time"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
)

// Store is the usage persistence capability. Records are appended once
// per completed model call and read back only in aggregate.
type Store interface {
	Push(ctx context.Context, userID string, rec model.UsageRecord) error
	// SumSince aggregates token counts per provider/model pair for
	// records at or after since.
	SumSince(ctx context.Context, userID string, since time.Time) (map[model.UsageKey]model.UsageTotals, error)
}

// Guard computes recent spend against a trailing budget window.
type Guard struct {
	store Store
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// WithinLimit reports whether the user may run another turn. A nil limit
// means unmetered. Unknown models price at zero, so the check fails open
// rather than blocking the conversation.
func (g *Guard) WithinLimit(ctx context.Context, userID string, limit *model.UsageLimit) (bool, error) {
	if limit == nil || limit.Cost <= 0 {
		return true, nil
	}

	since := time.Now().Add(-time.Duration(limit.Hours) * time.Hour)
	totals, err := g.store.SumSince(ctx, userID, since)
	if err != nil {
		return false, err
	}

	var spend float64
	for key, tokens := range totals {
		pricing := model.ResolvePricing(key.Provider, key.ModelName)
		spend += model.ComputeCost(pricing, tokens.InputTokens, tokens.OutputTokens)
	}
	return spend < limit.Cost, nil
}
