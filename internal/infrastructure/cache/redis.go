package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/roombook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RedisClient owns the process-wide Redis connection pool shared by the
// token blacklist, the webhook idempotency store and the room cache
type RedisClient struct {
	*redis.Client
}

// NewRedisClient connects to Redis, retrying the initial ping with backoff
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, attempts int, log *zap.Logger) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if attempts < 1 {
		attempts = 1
	}

	err := retry.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("Redis not reachable, retrying",
				zap.Uint("attempt", n+1),
				zap.Int("max_attempts", attempts),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisClient{Client: client}, nil
}

// Name identifies the dependency in readiness reports
func (c *RedisClient) Name() string {
	return "redis"
}

// Ping checks if Redis answers
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
