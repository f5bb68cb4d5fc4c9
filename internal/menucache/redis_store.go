package menucache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dinefine-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "menu:extraction:"

// RedisStore keeps each extraction as one JSON value.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore returns a store whose keys expire after retention. Zero keeps
// entries until they are overwritten.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

func redisKey(sourceKey string) string {
	return redisKeyPrefix + sourceKey
}

func (s *RedisStore) Get(ctx context.Context, sourceKey string) (*models.CachedExtraction, error) {
	val, err := s.client.Get(ctx, redisKey(sourceKey)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry models.CachedExtraction
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("decode cached extraction: %w", err)
	}
	return &entry, nil
}

func (s *RedisStore) Put(ctx context.Context, entry models.CachedExtraction) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached extraction: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(entry.SourceKey), data, s.retention).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
