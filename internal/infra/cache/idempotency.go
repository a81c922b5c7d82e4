package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idem:"

// RedisIdempotencyStore reserves keys with SET NX so that only one replica
// handles a given request.
type RedisIdempotencyStore struct {
	client redis.Cmdable
}

func NewRedisIdempotencyStore(client redis.Cmdable) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (r *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key %s: %w", key, err)
	}
	return ok, nil
}

func (r *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key %s: %w", key, err)
	}
	return nil
}
