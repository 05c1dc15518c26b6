package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/repository"
)

var _ repository.ResultStore = (*redisResultStore)(nil)

const (
	resultKeyPrefix = "deckscout:result:"

	// resultTTL bounds how long a principal's last recommendation is kept.
	resultTTL = 24 * time.Hour
)

type redisResultStore struct {
	client *goredis.Client
}

// NewResultStore creates a Redis-backed store for the last completed
// recommendation per principal.
func NewResultStore(client *goredis.Client) repository.ResultStore {
	return &redisResultStore{client: client}
}

func (r *redisResultStore) Save(ctx context.Context, principal string, result *domain.RecommendationResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal result: %w", err)
	}
	key := resultKeyPrefix + principal
	if err := r.client.Set(ctx, key, body, resultTTL).Err(); err != nil {
		return fmt.Errorf("redis: save result: %w", err)
	}
	return nil
}

func (r *redisResultStore) Get(ctx context.Context, principal string) (*domain.RecommendationResult, error) {
	key := resultKeyPrefix + principal
	body, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNoResult
		}
		return nil, fmt.Errorf("redis: get result: %w", err)
	}

	result := &domain.RecommendationResult{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("redis: unmarshal result: %w", err)
	}
	return result, nil
}
