package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores the document under a single Redis key, for deployments
// where the host should share the simulated history across restarts of
// different machines.
type RedisSlot struct {
	rdb *redis.Client
	key string
}

// NewRedisSlot builds a RedisSlot using key.
func NewRedisSlot(rdb *redis.Client, key string) *RedisSlot {
	return &RedisSlot{rdb: rdb, key: key}
}

// Load fetches the slot value. A missing key is an empty slot.
func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return data, nil
}

// Store overwrites the slot value without expiry.
func (s *RedisSlot) Store(ctx context.Context, data []byte) error {
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
