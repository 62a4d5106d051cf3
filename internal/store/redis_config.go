package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// promptField is the hash field holding an override prompt.
const promptField = "prompt"

// RedisConfigStore stores prompt overrides as hashes keyed by prompt key
// (type#areaPath#businessUnit#system).
type RedisConfigStore struct {
	client redisClient
}

// NewRedisConfigStore creates a store over client.
func NewRedisConfigStore(client redisClient) *RedisConfigStore {
	return &RedisConfigStore{client: client}
}

func configKey(promptKey string) string {
	return keyPrefix + ":config:" + promptKey
}

// Get returns the override for promptKey. A missing key or field reports
// found=false without error.
func (s *RedisConfigStore) Get(ctx context.Context, promptKey string) (string, bool, error) {
	val, err := s.client.HGet(ctx, configKey(promptKey), promptField).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get prompt override %q: %w", promptKey, err)
	}
	return val, true, nil
}

// Put stores an override for promptKey.
func (s *RedisConfigStore) Put(ctx context.Context, promptKey, prompt string) error {
	if err := s.client.HSet(ctx, configKey(promptKey), promptField, prompt).Err(); err != nil {
		return fmt.Errorf("put prompt override %q: %w", promptKey, err)
	}
	return nil
}
