package logger

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the process-wide zap.Logger.
type Logger struct {
	// Zap is the underlying logger. Library packages such as seekdb and
	// server take it directly.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient initializes and returns a new logger based on cfg.
// It builds a zap logger with the encoding, level and output destinations
// every seekdb component logs with.
//
// Parameters:
//   - cfg: Configuration for the logger, including level and service name
//
// Returns:
//   - *Logger: A configured logger ready for use
//   - error: The zap build error, for example an unwritable output path
//
// The logger is configured with:
//   - JSON encoding (console encoding in development mode)
//   - ISO8601 timestamps under the "timestamp" key
//   - capital level names
//   - pid and service as initial fields
//   - caller information
//   - output to stderr
//
// Example:
//
//	log, err := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "indexer",
//	})
//	if err != nil {
//		return err
//	}
//	log.Zap.Info("application started")
func NewLoggerClient(cfg Config) (*Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	encoding := "json"
	if cfg.Development {
		encoding = "console"
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Development:       cfg.Development,
		DisableCaller:     false,
		DisableStacktrace: !cfg.Development,
		Sampling:          nil,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	zl, err := config.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}

	return &Logger{Zap: zl, tracingEnabled: cfg.EnableTracing}, nil
}

// ParseLevel maps a configured level name to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning, "warn":
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// WithContext returns a logger carrying the trace and span id of the span in
// ctx. Without tracing or without a valid span it returns the base logger.
//
// Example:
//
//	ctx, span := t.StartSpan(ctx, "import")
//	defer span.End()
//	log.WithContext(ctx).Info("importing", zap.Int("records", n))
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	if !l.tracingEnabled {
		return l.Zap
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l.Zap
	}
	return l.Zap.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.Zap.Sync()
}
