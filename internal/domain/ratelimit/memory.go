package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

type memoryLimiter struct {
	windows     map[string]*window
	mutex       sync.Mutex
	window      time.Duration
	max         int
	cleanupFreq time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemory builds a process-local fixed window limiter.
func NewMemory(cfg Config) Limiter {
	return newMemory(cfg, time.Now)
}

func newMemory(cfg Config, now func() time.Time) *memoryLimiter {
	cfg = cfg.normalized()
	cleanup := time.Minute
	if cfg.Memory != nil && cfg.Memory.GCInterval > 0 {
		cleanup = cfg.Memory.GCInterval
	}
	l := &memoryLimiter{
		windows:     make(map[string]*window),
		window:      cfg.Window,
		max:         cfg.Max,
		cleanupFreq: cleanup,
		now:         now,
		stop:        make(chan struct{}),
	}
	go l.gcLoop()
	return l
}

func (l *memoryLimiter) gcLoop() {
	ticker := time.NewTicker(l.cleanupFreq)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupExpired()
		case <-l.stop:
			return
		}
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++
	return newResult(w.count, l.max, w.resetAt), nil
}

func (l *memoryLimiter) cleanupExpired() {
	now := l.now()
	l.mutex.Lock()
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.mutex.Unlock()
}

func (l *memoryLimiter) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.windows)
}

func (l *memoryLimiter) Close(_ context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
	return nil
}
