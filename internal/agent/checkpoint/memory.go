package checkpoint

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	chains map[string][]*Checkpoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chains: map[string][]*Checkpoint{}}
}

func (s *MemoryStore) GetLatest(ctx context.Context, userID, chatID string) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.chains[checkpointKey(userID, chatID)]
	if len(chain) == 0 {
		return nil, nil
	}
	return chain[len(chain)-1], nil
}

func (s *MemoryStore) Put(ctx context.Context, userID, chatID string, state *model.ConversationState, parentRef string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	cp := &Checkpoint{
		ID:        id.String(),
		ParentID:  parentRef,
		CreatedAt: time.Now().UTC(),
		State:     state.Clone(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := checkpointKey(userID, chatID)
	s.chains[key] = append(s.chains[key], cp)
	return cp.ID, nil
}

func (s *MemoryStore) List(ctx context.Context, userID, chatID string, opts ListOptions) ([]*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.chains[checkpointKey(userID, chatID)]

	out := make([]*Checkpoint, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		cp := chain[i]
		if !opts.Before.IsZero() && !cp.CreatedAt.Before(opts.Before) {
			continue
		}
		out = append(out, cp)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}
