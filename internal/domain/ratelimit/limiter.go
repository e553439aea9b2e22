package ratelimit

import (
	"context"
	"time"
)

// Limiter counts requests per key inside a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Close(ctx context.Context) error
}

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before the window resets.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.ResetAt.Before(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Config describes the limiter selection parameters.
type Config struct {
	Driver string
	Window time.Duration
	Max    int
	Redis  *RedisConfig
	Memory *MemoryConfig
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct {
	GCInterval time.Duration
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

const (
	defaultWindow = 15 * time.Minute
	defaultMax    = 100
)

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = defaultWindow
	}
	if c.Max <= 0 {
		c.Max = defaultMax
	}
	return c
}

func newResult(count int64, max int, resetAt time.Time) Result {
	remaining := max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(max),
		Limit:     max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
