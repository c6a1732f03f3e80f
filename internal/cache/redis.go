package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect returns nil when no host is configured; callers fall back to
// their in-process variants.
func Connect(ctx context.Context, host, password string) (*redis.Client, error) {
	if host == "" {
		zap.S().Info("⚠️ REDIS_HOST not set, sessions, queues and caches stay in-process")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         host,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}
	zap.S().Info("✅ Redis connected")
	return client, nil
}

// IncrementRateLimit bumps the counter at key. The window starts with the
// first request and is not extended by later ones.
func IncrementRateLimit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	pipe := rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
