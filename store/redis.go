package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps each slot in a Redis string key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, slot string) (string, bool, error) {
	value, err := s.client.Get(ctx, slot).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load slot %s from Redis: %w", slot, err)
	}
	return value, true, nil
}

func (s *RedisStore) Save(ctx context.Context, slot, value string) error {
	// Snapshots never expire; the slot is the durable copy.
	if err := s.client.Set(ctx, slot, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot %s to Redis: %w", slot, err)
	}
	return nil
}
