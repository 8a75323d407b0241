package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/core/errx"
)

// RedisStore appends usage records to a per-user Redis list. Aggregation
// happens on read; usage volumes are small (one record per model call).
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func usageKey(userID string) string {
	return fmt.Sprintf("agent:usage:%s", userID)
}

func (s *RedisStore) Push(ctx context.Context, userID string, rec model.UsageRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errx.Internal("failed to encode usage record", err)
	}
	if err := s.client.RPush(ctx, usageKey(userID), payload).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisStore) SumSince(ctx context.Context, userID string, since time.Time) (map[model.UsageKey]model.UsageTotals, error) {
	raw, err := s.client.LRange(ctx, usageKey(userID), 0, -1).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}

	totals := make(map[model.UsageKey]model.UsageTotals)
	for _, item := range raw {
		var rec model.UsageRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, errx.Internal("corrupt usage record", err)
		}
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
