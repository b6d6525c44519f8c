package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares one fixed window per client across every instance
// pointing at the same Redis.
type RedisLimiter struct {
	rdb       redis.Cmdable
	limit     int
	keyPrefix string
}

func NewRedisLimiter(rdb redis.Cmdable, requestsPerMinute int, keyPrefix string) *RedisLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if keyPrefix == "" {
		keyPrefix = "charitytracker:ratelimit"
	}
	return &RedisLimiter{rdb: rdb, limit: requestsPerMinute, keyPrefix: keyPrefix}
}

// Allow counts the request with INCR and starts the window on the first hit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.keyPrefix + ":" + key

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}
