package eventbus

import (
	"sync"
	"time"
)

// Stats aggregates pipeline events into counters for the health endpoint.
type Stats struct {
	mu            sync.Mutex
	generated     int64
	variants      int64
	bytes         int64
	totalDuration time.Duration
	failures      map[string]int64
	rateLimited   int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Generated         int64            `json:"generated"`
	Variants          int64            `json:"variants"`
	Bytes             int64            `json:"bytes"`
	AverageDurationMS float64          `json:"average_duration_ms"`
	Failures          map[string]int64 `json:"failures"`
	RateLimited       int64            `json:"rate_limited"`
}

func NewStats() *Stats {
	return &Stats{failures: make(map[string]int64)}
}

// Attach subscribes the counters to bus.
func (s *Stats) Attach(bus *Bus) error {
	if err := bus.Subscribe(EventIconGenerated, s.onGenerated); err != nil {
		return err
	}
	if err := bus.Subscribe(EventIconFailed, s.onFailed); err != nil {
		return err
	}
	return bus.Subscribe(EventRateLimited, s.onRateLimited)
}

func (s *Stats) onGenerated(data IconGeneratedData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated++
	s.variants += int64(data.Variants)
	s.bytes += int64(data.Bytes)
	s.totalDuration += data.Duration
}

func (s *Stats) onFailed(data IconFailedData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[data.Kind]++
}

func (s *Stats) onRateLimited(RateLimitedData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimited++
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures := make(map[string]int64, len(s.failures))
	for k, v := range s.failures {
		failures[k] = v
	}
	var avg float64
	if s.generated > 0 {
		avg = float64(s.totalDuration.Milliseconds()) / float64(s.generated)
	}
	return StatsSnapshot{
		Generated:         s.generated,
		Variants:          s.variants,
		Bytes:             s.bytes,
		AverageDurationMS: avg,
		Failures:          failures,
		RateLimited:       s.rateLimited,
	}
}
