package usage

import (
	"context"
	"sync"
	"time"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]model.UsageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string][]model.UsageRecord{}}
}

func (s *MemoryStore) Push(ctx context.Context, userID string, rec model.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = append(s.records[userID], rec)
	return nil
}

func (s *MemoryStore) SumSince(ctx context.Context, userID string, since time.Time) (map[model.UsageKey]model.UsageTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[model.UsageKey]model.UsageTotals)
	for _, rec := range s.records[userID] {
		if rec.Timestamp.Before(since) {
			continue
		}
		key := model.UsageKey{Provider: rec.Provider, ModelName: rec.ModelName}
		t := totals[key]
		t.InputTokens += rec.InputTokens
		t.OutputTokens += rec.OutputTokens
		totals[key] = t
	}
	return totals, nil
}
