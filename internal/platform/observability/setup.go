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
	loggerMu             sync.RWMutex
	instrumentationLog   *slog.Logger
	instrumentationState Config
)

func currentLogger() (*slog.Logger, Config) {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return instrumentationLog, instrumentationState
}

// Setup installs the logger spans and metrics are written to. With
// observability disabled the hooks stay silent.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	loggerMu.Lock()
	if cfg.Enabled {
		instrumentationLog = logger
	} else {
		instrumentationLog = nil
	}
	instrumentationState = cfg
	loggerMu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBSERVABILITY] span and metric hooks enabled")
		} else {
			logger.InfoContext(ctx, "[OBSERVABILITY] disabled")
		}
	}

	return func(context.Context) error {
		loggerMu.Lock()
		instrumentationLog = nil
		instrumentationState = Config{}
		loggerMu.Unlock()
		return nil
	}, nil
}
