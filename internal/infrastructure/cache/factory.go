package cache

import (
	"fmt"

	"github.com/roombook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency store implementation based on
// whether a Redis client is available
type IdempotencyStoreFactory struct {
	client                *RedisClient
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when no Redis client is configured. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithKeyPrefix namespaces the Redis keys
func WithKeyPrefix(prefix string) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.keyPrefix = prefix
	}
}

// NewIdempotencyStoreFactory creates a new factory. client may be nil.
func NewIdempotencyStoreFactory(client *RedisClient, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		client:                client,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the Redis store when a client is available and falls
// back to the in-memory store otherwise
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	if f.client != nil {
		f.logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client.Client, f.keyPrefix), nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis is required for idempotency but is not configured")
	}
	f.logger.Warn("Redis disabled, using in-memory idempotency store. " +
		"Webhook de-duplication is not shared between instances.")
	return NewInMemoryIdempotencyStore(), nil
}
