// Package logger builds the structured zap logger used across the seekdb
// packages and the seekdb command.
//
// The package gives every component the same log format: JSON entries with
// an ISO8601 timestamp, capitalised level names, the caller and the process
// id and service name as constant fields. It integrates with the fx
// dependency injection framework and, when tracing is enabled, correlates
// log lines with OpenTelemetry spans.
//
// # Architecture
//
// The package follows the "accept interfaces, return structs" pattern of the
// other seekdb packages:
//   - Logger struct: owns the process-wide *zap.Logger
//   - NewLoggerClient constructor: returns *Logger (concrete type)
//   - FX module: provides *Logger and the bare *zap.Logger for injection
//
// Library packages (seekdb, server, embedding, metrics, tracer) never depend
// on this package. They accept a *zap.Logger through their options or
// constructors and fall back to zap.NewNop(), so the Zap field of a Logger is
// what gets passed around.
//
// Core Features:
//   - Structured logging with typed zap fields
//   - Levels debug, info, warning and error
//   - JSON output for log collectors, console output in development mode
//   - Trace and span id extraction from the context
//   - Flush on application shutdown through the fx lifecycle
//
// # Direct Usage (Without FX)
//
// For simple applications or tests, create a logger directly:
//
//	import "github.com/Aleph-Alpha/seekdb/v1/logger"
//
//	log, err := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Debug,
//		ServiceName: "indexer",
//	})
//	if err != nil {
//		return err
//	}
//	defer log.Sync()
//
//	log.Zap.Info("indexer started", zap.String("collection", "docs"))
//
//	client, err := seekdb.NewClient(backend, seekdb.WithLogger(log.Zap))
//
// # FX Module Integration
//
// For applications using Uber's fx, use the FXModule. It provides both the
// *Logger and its *zap.Logger, so every other seekdb module picks the logger
// up through its optional *zap.Logger dependency:
//
//	import (
//		"github.com/Aleph-Alpha/seekdb/v1/logger"
//		"go.uber.org/fx"
//	)
//
//	app := fx.New(
//		logger.FXModule, // provides *logger.Logger and *zap.Logger
//		fx.Supply(logger.Config{Level: logger.Info, ServiceName: "indexer"}),
//		fx.Invoke(func(log *logger.Logger) {
//			log.Zap.Info("service started")
//		}),
//	)
//	app.Run()
//
// On stop the module syncs the logger. Sync errors that only mean stderr
// cannot be synced (EINVAL, ENOTTY) are ignored.
//
// # Logging Levels
//
//	log.Zap.Debug("statement", zap.String("sql", query)) // only with Level debug
//	log.Zap.Info("collection created", zap.String("collection", name))
//	log.Zap.Warn("hybrid search rejected, falling back")
//	log.Zap.Error("poll failed", zap.Error(err))
//
// ParseLevel maps the configured name to a zap level. "warn" is accepted as
// an alias of "warning"; unknown names mean info.
//
// # Configuration
//
// The logger can be configured via environment variables:
//
//	SEEKDB_LOG_LEVEL=debug            # debug, info, warning, error
//	SEEKDB_SERVICE_NAME=indexer       # value of the "service" field
//	SEEKDB_LOG_ENABLE_TRACING=true    # trace_id/span_id via WithContext
//	SEEKDB_LOG_DEVELOPMENT=true       # console encoder, colored levels
//
// The seekdb command reads the same keys, and its YAML config file can set
// them under the "logger" section.
//
// # Tracing Integration
//
// With EnableTracing set, WithContext returns a logger that carries the
// OpenTelemetry trace id and span id of the span active in the context:
//
//	ctx, span := t.StartSpan(ctx, "reindex")
//	defer span.End()
//	log.WithContext(ctx).Info("reindexing", zap.Int("documents", n))
//
// The following fields are added to the entry:
//   - trace_id: the OpenTelemetry trace id
//   - span_id: the OpenTelemetry span id
//
// Without tracing, or when the context has no valid span, WithContext
// returns the base logger unchanged.
//
// # Thread Safety
//
// A Logger and the loggers derived from it are safe for concurrent use by
// multiple goroutines.
package logger
