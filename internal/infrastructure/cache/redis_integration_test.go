//go:build integration

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// newTestRedis starts a throwaway Redis and returns a client on it
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

type cachedRoom struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func TestRedisRoomCache(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	t.Run("stores under the generation it was read in", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		c := NewRedisRoomCache(client, time.Minute, nil)

		var out cachedRoom
		hit, gen, err := c.Get(ctx, "id:1", &out)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Zero(t, gen)

		require.NoError(t, c.Set(ctx, gen, "id:1", cachedRoom{Name: "Atlas", Capacity: 8}))

		hit, gen, err = c.Get(ctx, "id:1", &out)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Zero(t, gen)
		assert.Equal(t, cachedRoom{Name: "Atlas", Capacity: 8}, out)

		ttl, err := client.TTL(ctx, c.key(gen, "id:1")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("invalidate hides every entry", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		c := NewRedisRoomCache(client, time.Minute, nil)
		require.NoError(t, c.Set(ctx, 0, "list", []cachedRoom{{Name: "Atlas"}}))
		require.NoError(t, c.Set(ctx, 0, "slug:atlas", cachedRoom{Name: "Atlas"}))

		require.NoError(t, c.Invalidate(ctx))

		var out cachedRoom
		hit, gen, err := c.Get(ctx, "slug:atlas", &out)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, int64(1), gen)
	})

	t.Run("a load that raced an invalidate stays unreachable", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		c := NewRedisRoomCache(client, time.Minute, nil)

		var out cachedRoom
		_, loadGen, err := c.Get(ctx, "id:1", &out)
		require.NoError(t, err)

		// a write lands between the miss and the store of the old value
		require.NoError(t, c.Invalidate(ctx))
		require.NoError(t, c.Set(ctx, loadGen, "id:1", cachedRoom{Name: "Old name"}))

		hit, gen, err := c.Get(ctx, "id:1", &out)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, loadGen+1, gen)
	})

	t.Run("corrupted entries are dropped", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		c := NewRedisRoomCache(client, time.Minute, nil)
		require.NoError(t, client.Set(ctx, c.key(0, "id:1"), "{not json", time.Minute).Err())

		var out cachedRoom
		hit, _, err := c.Get(ctx, "id:1", &out)
		require.NoError(t, err)
		assert.False(t, hit)

		exists, err := client.Exists(ctx, c.key(0, "id:1")).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	t.Run("marks a key once", func(t *testing.T) {
		store := NewRedisIdempotencyStore(client, "")

		first, err := store.MarkProcessed(ctx, "evt_1", time.Hour)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := store.MarkProcessed(ctx, "evt_1", time.Hour)
		require.NoError(t, err)
		assert.False(t, second)

		processed, err := store.IsProcessed(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, processed)

		ttl, err := client.TTL(ctx, defaultIdempotencyPrefix+"evt_1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("forget allows a retry", func(t *testing.T) {
		store := NewRedisIdempotencyStore(client, "")
		_, err := store.MarkProcessed(ctx, "evt_2", time.Hour)
		require.NoError(t, err)

		require.NoError(t, store.Forget(ctx, "evt_2"))

		processed, err := store.IsProcessed(ctx, "evt_2")
		require.NoError(t, err)
		assert.False(t, processed)

		again, err := store.MarkProcessed(ctx, "evt_2", time.Hour)
		require.NoError(t, err)
		assert.True(t, again)
	})

	t.Run("prefixes keep stores apart", func(t *testing.T) {
		webhooks := NewRedisIdempotencyStore(client, "test:webhooks:")
		jobs := NewRedisIdempotencyStore(client, "test:jobs:")

		_, err := webhooks.MarkProcessed(ctx, "shared", time.Hour)
		require.NoError(t, err)

		processed, err := jobs.IsProcessed(ctx, "shared")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("exactly one concurrent caller wins", func(t *testing.T) {
		store := NewRedisIdempotencyStore(client, "")
		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.MarkProcessed(ctx, "evt_race", time.Hour)
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})
}
