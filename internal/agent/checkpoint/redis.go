package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/core/errx"
)

// RedisStore keeps each conversation's checkpoint chain in a Redis list,
// one JSON document per checkpoint, appended in turn order.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store. A zero ttl keeps checkpoints until
// external retention removes them.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func checkpointKey(userID, chatID string) string {
	return fmt.Sprintf("agent:checkpoint:%s:%s", userID, chatID)
}

func (s *RedisStore) GetLatest(ctx context.Context, userID, chatID string) (*Checkpoint, error) {
	raw, err := s.client.LRange(ctx, checkpointKey(userID, chatID), -1, -1).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var cp Checkpoint
	if err := json.Unmarshal([]byte(raw[0]), &cp); err != nil {
		return nil, errx.Internal("corrupt checkpoint data", err)
	}
	return &cp, nil
}

func (s *RedisStore) Put(ctx context.Context, userID, chatID string, state *model.ConversationState, parentRef string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	cp := Checkpoint{
		ID:        id.String(),
		ParentID:  parentRef,
		CreatedAt: time.Now().UTC(),
		State:     state,
	}
	payload, err := json.Marshal(cp)
	if err != nil {
		return "", errx.Internal("failed to encode checkpoint", err)
	}

	key := checkpointKey(userID, chatID)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return "", errx.WrapRedis(err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return "", errx.WrapRedis(err)
		}
	}
	return cp.ID, nil
}

func (s *RedisStore) List(ctx context.Context, userID, chatID string, opts ListOptions) ([]*Checkpoint, error) {
	raw, err := s.client.LRange(ctx, checkpointKey(userID, chatID), 0, -1).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}

	out := make([]*Checkpoint, 0, len(raw))
	// Stored oldest first; callers get newest first.
	for i := len(raw) - 1; i >= 0; i-- {
		var cp Checkpoint
		if err := json.Unmarshal([]byte(raw[i]), &cp); err != nil {
			return nil, errx.Internal("corrupt checkpoint data", err)
		}
		if !opts.Before.IsZero() && !cp.CreatedAt.Before(opts.Before) {
			continue
		}
		out = append(out, &cp)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}
