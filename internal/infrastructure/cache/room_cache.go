package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	roomCachePrefix     = "roombook:rooms:"
	roomCacheVersionKey = roomCachePrefix + "version"
)

// RedisRoomCache caches public room reads as JSON. Entries are namespaced by
// a generation counter; Invalidate bumps the counter so every cached entry
// becomes unreachable at once and ages out through its TTL.
type RedisRoomCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRoomCache creates a room cache on a shared Redis client
func NewRedisRoomCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisRoomCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRoomCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisRoomCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, roomCacheVersionKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (c *RedisRoomCache) key(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", roomCachePrefix, gen, key)
}

// Get loads a cached value into dest. It also returns the generation it
// looked in; a value loaded after a miss must be stored under that
// generation, so a load that raced an Invalidate is never served.
func (c *RedisRoomCache) Get(ctx context.Context, key string, dest any) (bool, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("failed to read room cache generation: %w", err)
	}

	data, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Room cache miss", zap.String("key", key), zap.Int64("generation", gen))
		return false, gen, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to get room from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Dropping corrupted room cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, c.key(gen, key))
		return false, gen, nil
	}
	return true, gen, nil
}

// Set stores value under gen. After an Invalidate the entry lands in a
// generation nobody reads and expires with its TTL.
func (c *RedisRoomCache) Set(ctx context.Context, gen int64, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	if err := c.client.Set(ctx, c.key(gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room in cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached room read
func (c *RedisRoomCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, roomCacheVersionKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate room cache: %w", err)
	}
	return nil
}

// NoopRoomCache is used when Redis is disabled
type NoopRoomCache struct{}

// Get always misses
func (NoopRoomCache) Get(context.Context, string, any) (bool, int64, error) { return false, 0, nil }

// Set does nothing
func (NoopRoomCache) Set(context.Context, int64, string, any) error { return nil }

// Invalidate does nothing
func (NoopRoomCache) Invalidate(context.Context) error { return nil }
