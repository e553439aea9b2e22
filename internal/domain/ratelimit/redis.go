package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisLimiter struct {
	client *redis.Client
	window time.Duration
	max    int
	prefix string
}

// NewRedis constructs a limiter whose counters live in redis, shared by every replica.
func NewRedis(cfg Config) (Limiter, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	cfg = cfg.normalized()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "icon:ratelimit:"
	}
	return &redisLimiter{
		client: client,
		window: cfg.Window,
		max:    cfg.Max,
		prefix: prefix,
	}, nil
}

func (l *redisLimiter) key(id string) string {
	return l.prefix + id
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := l.key(key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("redis pexpire: %w", err)
		}
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis pttl: %w", err)
	}
	if ttl < 0 {
		// counter lost its expiry; start a fresh window
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("redis pexpire: %w", err)
		}
		ttl = l.window
	}
	return newResult(count, l.max, time.Now().Add(ttl)), nil
}

func (l *redisLimiter) Close(_ context.Context) error {
	return l.client.Close()
}
