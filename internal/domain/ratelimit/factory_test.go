package ratelimit

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestFactoryMemory(t *testing.T) {
	limiter, err := New(Config{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("New memory limiter: %v", err)
	}
	defer limiter.Close(context.Background())

	limiter, err = New(Config{})
	if err != nil {
		t.Fatalf("New default limiter: %v", err)
	}
	defer limiter.Close(context.Background())
}

func TestFactoryRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	limiter, err := New(Config{Driver: DriverRedis, Redis: &RedisConfig{Addr: mr.Addr()}})
	if err != nil {
		t.Fatalf("New redis limiter: %v", err)
	}
	defer limiter.Close(context.Background())

	if _, err := limiter.Allow(context.Background(), "factory"); err != nil {
		t.Fatalf("Allow error: %v", err)
	}
}

func TestFactoryUnsupported(t *testing.T) {
	if _, err := New(Config{Driver: "unknown"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
