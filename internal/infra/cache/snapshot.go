package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cart-engine/internal/domain/cart"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "cart:snapshot:"

// putSnapshotScript writes ARGV[1] unless the stored snapshot carries a
// higher version than ARGV[2]. ARGV[3] is the TTL in milliseconds, 0 for
// none. It returns 1 when written and 0 when the stored snapshot is newer.
var putSnapshotScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, doc = pcall(cjson.decode, cur)
  if ok and type(doc) == 'table' and tonumber(doc['version']) and tonumber(doc['version']) > tonumber(ARGV[2]) then
    return 0
  end
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// RedisSnapshotCache stores the last committed snapshot of each cart as JSON.
type RedisSnapshotCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSnapshotCache(client redis.Cmdable, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		client: client,
		ttl:    ttl,
	}
}

func SnapshotKey(id uuid.UUID) string {
	return snapshotKeyPrefix + id.String()
}

func (r *RedisSnapshotCache) Get(ctx context.Context, id uuid.UUID) (*cart.Snapshot, bool, error) {
	key := SnapshotKey(id)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	var s cart.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}
	return &s, true, nil
}

// Put never replaces a newer snapshot with an older one. The compare and
// the write run as one script so concurrent writers cannot interleave.
func (r *RedisSnapshotCache) Put(ctx context.Context, s cart.Snapshot) error {
	key := SnapshotKey(s.ID)
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err := putSnapshotScript.Run(ctx, r.client, []string{key}, string(data), s.Version, r.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}
	return nil
}

func (r *RedisSnapshotCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	key := SnapshotKey(id)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}
	return nil
}
