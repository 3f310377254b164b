package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	hitsKeyPrefix  = "ratelimit:hits:"
	blockKeyPrefix = "ratelimit:block:"
)

// RateLimiter is a fixed-window counter. A key that goes over the limit
// inside one window is blocked for blockTime.
type RateLimiter struct {
	client    redis.UniversalClient
	limit     int
	interval  time.Duration
	blockTime time.Duration
}

func NewRateLimiter(client redis.UniversalClient, limit int, interval, blockTime time.Duration) *RateLimiter {
	return &RateLimiter{
		client:    client,
		limit:     limit,
		interval:  interval,
		blockTime: blockTime,
	}
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	blocked, err := l.client.Exists(ctx, blockKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	if blocked > 0 {
		return false, nil
	}

	hitsKey := hitsKeyPrefix + key
	count, err := l.client.Incr(ctx, hitsKey).Result()
	if err != nil {
		return false, fmt.Errorf("incr hits: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, hitsKey, l.interval).Err(); err != nil {
			return false, fmt.Errorf("expire hits: %w", err)
		}
	}

	if count > int64(l.limit) {
		pipe := l.client.TxPipeline()
		pipe.Set(ctx, blockKeyPrefix+key, "blocked", l.blockTime)
		pipe.Del(ctx, hitsKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return false, fmt.Errorf("block key: %w", err)
		}
		return false, nil
	}

	return true, nil
}
