package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "saude:collection:"

// RedisBackend stores each collection under one string key.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	if client == nil {
		panic("store: redis client required")
	}
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, redisKeyPrefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("get collection %s: %w", name, err)
	}
	return data, nil
}

func (b *RedisBackend) Put(ctx context.Context, name string, data []byte) error {
	if err := b.client.Set(ctx, redisKeyPrefix+name, data, 0).Err(); err != nil {
		return fmt.Errorf("set collection %s: %w", name, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error { return b.client.Ping(ctx).Err() }

func (b *RedisBackend) Name() string { return "redis" }
