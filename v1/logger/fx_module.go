package logger

import (
	"context"
	"errors"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FXModule provides *Logger and its *zap.Logger to the application and
// flushes buffered entries on shutdown.
//
// Dependencies required by this module:
// - A logger.Config instance must be available in the dependency injection container
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		ZapLogger,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// ZapLogger exposes the underlying zap logger to constructors that take *zap.Logger.
func ZapLogger(l *Logger) *zap.Logger {
	return l.Zap
}

// RegisterLoggerLifecycle syncs the logger when the application stops.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := client.Sync()
			// stderr cannot be synced on some platforms
			if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
				return nil
			}
			return err
		},
	})
}
