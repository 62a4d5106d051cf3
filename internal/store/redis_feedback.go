package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// RedisFeedbackStore reads aggregated feedback stored as JSON documents.
// Aggregation itself happens elsewhere; this store only serves the results.
type RedisFeedbackStore struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisFeedbackStore creates a store. ttl applies to writes; zero keeps
// documents until overwritten.
func NewRedisFeedbackStore(client redisClient, ttl time.Duration) *RedisFeedbackStore {
	return &RedisFeedbackStore{client: client, ttl: ttl}
}

func patternsKey(key domain.ContextKey) string {
	return keyPrefix + ":feedback:patterns:" + string(key)
}

func examplesKey(key domain.ContextKey) string {
	return keyPrefix + ":feedback:examples:" + string(key)
}

// GetPatterns returns the aggregated pattern for key, or nil when none exists.
func (s *RedisFeedbackStore) GetPatterns(ctx context.Context, key domain.ContextKey) (*domain.FeedbackPattern, error) {
	var p domain.FeedbackPattern
	found, err := s.getJSON(ctx, patternsKey(key), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// GetExamples returns recorded examples for key, or nil when none exist.
func (s *RedisFeedbackStore) GetExamples(ctx context.Context, key domain.ContextKey) ([]domain.FeedbackExample, error) {
	var ex []domain.FeedbackExample
	if _, err := s.getJSON(ctx, examplesKey(key), &ex); err != nil {
		return nil, err
	}
	return ex, nil
}

// PutPatterns stores the aggregated pattern for its context key.
func (s *RedisFeedbackStore) PutPatterns(ctx context.Context, p domain.FeedbackPattern) error {
	return s.setJSON(ctx, patternsKey(p.ContextKey), p)
}

// PutExamples replaces the examples for key.
func (s *RedisFeedbackStore) PutExamples(ctx context.Context, key domain.ContextKey, examples []domain.FeedbackExample) error {
	return s.setJSON(ctx, examplesKey(key), examples)
}

func (s *RedisFeedbackStore) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisFeedbackStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
