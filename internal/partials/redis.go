package partials

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource serves partials from one redis hash, one field per partial
type RedisSource struct {
	client *redis.Client
	key    string
}

// NewRedisSource creates a source reading the hash stored at key
func NewRedisSource(client *redis.Client, key string) *RedisSource {
	return &RedisSource{
		client: client,
		key:    key,
	}
}

// Load reads the hash field name
func (r *RedisSource) Load(ctx context.Context, name string) (string, error) {
	src, err := r.client.HGet(ctx, r.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return "", NotFound(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load partial %s: %w", name, err)
	}
	return src, nil
}

// Store writes the partial source under name
func (r *RedisSource) Store(ctx context.Context, name, src string) error {
	if err := r.client.HSet(ctx, r.key, name, src).Err(); err != nil {
		return fmt.Errorf("failed to store partial %s: %w", name, err)
	}
	return nil
}

// Delete removes the partial stored under name
func (r *RedisSource) Delete(ctx context.Context, name string) error {
	if err := r.client.HDel(ctx, r.key, name).Err(); err != nil {
		return fmt.Errorf("failed to delete partial %s: %w", name, err)
	}
	return nil
}
