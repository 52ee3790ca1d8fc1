package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrilink/agrilink-backend/pkg/redis"
)

// Redis persists values in a shared redis instance so console caches
// survive process restarts.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis builds a redis-backed store under the given key prefix.
func NewRedis(client *redis.Client, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if prefix == "" {
		return nil, errors.New("key prefix required")
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) key(key string) string {
	return redis.Key(r.prefix, key)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.key(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)); err != nil {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}
	return nil
}
