package observability

import (
	"context"
	"log/slog"
	"sync"
)

// Config captures observability toggles.
type Config struct {
	Enabled bool
}

// ShutdownFunc allows callers to tear down any observability exporters.
type ShutdownFunc func(context.Context) error

var (
	stateMu sync.RWMutex
	obsLog  *slog.Logger
	obsCfg  Config
)

func current() (*slog.Logger, Config) {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return obsLog, obsCfg
}

// Setup installs the logger that spans and metrics are written to.
// Calling the returned ShutdownFunc detaches it again.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	stateMu.Lock()
	obsLog = logger
	obsCfg = cfg
	stateMu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBSERVABILITY] span/metric logging enabled")
		} else {
			logger.InfoContext(ctx, "[OBSERVABILITY] disabled")
		}
	}
	return func(context.Context) error {
		stateMu.Lock()
		obsLog = nil
		obsCfg = Config{}
		stateMu.Unlock()
		return nil
	}, nil
}
