package eventbus

import "time"

// 事件类型定义
const (
	EventIconGenerated = "icon:generated"
	EventIconFailed    = "icon:failed"
	EventRateLimited   = "ratelimit:blocked"
)

// IconGeneratedData is published after a complete bundle was produced.
type IconGeneratedData struct {
	RequestID string        `json:"request_id,omitempty"`
	Variants  int           `json:"variants"`
	Bytes     int           `json:"bytes"`
	Duration  time.Duration `json:"duration"`
}

// IconFailedData is published when a request fails inside the pipeline.
type IconFailedData struct {
	RequestID string `json:"request_id,omitempty"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// RateLimitedData is published when a client exceeds its window.
type RateLimitedData struct {
	Client string `json:"client"`
	Path   string `json:"path"`
}
