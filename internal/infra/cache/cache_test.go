//go:build unit

package cache_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cart-engine/internal/infra/cache"
	"cart-engine/tests/common/builder"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSnapshotCache(t *testing.T) {
	ctx := t.Context()
	ttl := 10 * time.Minute
	snap := builder.NewCartBuilder().WithLine("A", 2, 1000).MustBuild().ToSnapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	key := cache.SnapshotKey(snap.ID)

	t.Run("success: put runs the version guard with json and ttl", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)

		mock.ExpectEvalSha(cache.PutSnapshotScriptHash, []string{key}, string(data), snap.Version, ttl.Milliseconds()).SetVal(int64(1))

		require.NoError(t, c.Put(ctx, snap))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: put skipped by a newer stored snapshot is not an error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)

		mock.ExpectEvalSha(cache.PutSnapshotScriptHash, []string{key}, string(data), snap.Version, ttl.Milliseconds()).SetVal(int64(0))

		require.NoError(t, c.Put(ctx, snap))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: put surfaces a redis failure", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)

		mock.ExpectEvalSha(cache.PutSnapshotScriptHash, []string{key}, string(data), snap.Version, ttl.Milliseconds()).SetErr(redis.ErrClosed)

		err := c.Put(ctx, snap)
		require.ErrorIs(t, err, redis.ErrClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: get decodes a hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)

		mock.ExpectGet(key).SetVal(string(data))

		got, ok, err := c.Get(ctx, snap.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, snap.ID, got.ID)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.Equal(t, int64(1000), got.Items[0].UnitPriceCents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: miss is not an error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)
		id := uuid.New()

		mock.ExpectGet(cache.SnapshotKey(id)).RedisNil()

		got, ok, err := c.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: redis failure surfaces", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)

		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		_, ok, err := c.Get(ctx, snap.ID)
		require.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: corrupt payload", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)

		mock.ExpectGet(key).SetVal("{not json")

		_, ok, err := c.Get(ctx, snap.ID)
		require.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: invalidate deletes the key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		c := cache.NewRedisSnapshotCache(client, ttl)

		mock.ExpectDel(key).SetVal(1)

		require.NoError(t, c.Invalidate(ctx, snap.ID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := t.Context()

	t.Run("success: first reserve wins", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cache.NewRedisIdempotencyStore(client)

		mock.ExpectSetNX("idem:cart:1:add-item:k", "1", time.Hour).SetVal(true)
		mock.ExpectSetNX("idem:cart:1:add-item:k", "1", time.Hour).SetVal(false)

		ok, err := store.Reserve(ctx, "cart:1:add-item:k", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Reserve(ctx, "cart:1:add-item:k", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: redis failure", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cache.NewRedisIdempotencyStore(client)

		mock.ExpectSetNX("idem:k", "1", time.Hour).SetErr(redis.ErrClosed)

		ok, err := store.Reserve(ctx, "k", time.Hour)
		require.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: release deletes the key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cache.NewRedisIdempotencyStore(client)

		mock.ExpectDel("idem:k").SetVal(1)

		require.NoError(t, store.Release(ctx, "k"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
