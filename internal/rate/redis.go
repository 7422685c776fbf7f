package rate

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a Limiter shared across processes through Redis counters.
type RedisLimiter struct {
	redis  redis.UniversalClient
	config Config
	prefix string
}

// NewRedis creates a RedisLimiter. Keys are namespaced under prefix.
func NewRedis(redisClient redis.UniversalClient, cfg Config, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "srl"
	}
	return &RedisLimiter{redis: redisClient, config: cfg, prefix: prefix}
}

func (l *RedisLimiter) key(k string) string {
	return l.prefix + ":" + k
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, err := l.incrementWithTTL(ctx, l.key(key))
	if err != nil {
		return Decision{}, err
	}
	return decide(count, l.config.Limit), nil
}

// Reset implements Limiter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Prune implements Limiter. Redis expires windows itself, so there is nothing to do.
func (l *RedisLimiter) Prune(context.Context) (int, error) {
	return 0, nil
}

func (l *RedisLimiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := l.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	count := incr.Val()
	// Fixed-window semantics: the first hit opens the window. A counter left without a
	// TTL by an earlier failed PEXPIRE is repaired here too.
	if count == 1 || pttl.Val() < 0 {
		if err := l.redis.PExpire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
