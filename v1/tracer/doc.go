// Package tracer configures OpenTelemetry tracing for seekdb applications.
//
// The package builds an SDK tracer provider with service resource
// attributes, optionally exporting spans over OTLP/HTTP, and installs it as
// the global provider together with the W3C trace-context and baggage
// propagators.
//
// Core Features:
//   - Tracer provider setup with service.name and deployment.environment
//   - Optional OTLP/HTTP export through a batch span processor
//   - Span creation, error recording and attribute helpers for application code
//   - Flush on application shutdown through the fx lifecycle
//
// The seekdb client creates one client span per operation ("seekdb.add",
// "seekdb.hybrid_search", ...) from the provider it is given. Each span
// carries the collection name and is marked as failed when the operation
// returns an error.
//
// # Basic Usage
//
//	import "github.com/Aleph-Alpha/seekdb/v1/tracer"
//
//	t, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "indexer",
//		AppEnv:       "production",
//		EnableExport: true,
//		Endpoint:     "otel-collector:4318",
//		Insecure:     true,
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer t.Shutdown(context.Background())
//
//	client, err := seekdb.NewClient(backend, seekdb.WithTracerProvider(t.Provider()))
//
// Application code wraps its own units of work in spans; the seekdb spans
// become their children:
//
//	ctx, span := t.StartSpan(ctx, "reindex")
//	defer span.End()
//
//	t.SetAttributes(span, map[string]interface{}{
//		"collection": "docs",
//		"documents":  len(docs),
//	})
//
//	if err := col.Upsert(ctx, req); err != nil {
//		t.RecordErrorOnSpan(span, err)
//		return err
//	}
//
// # FX Module Integration
//
// tracer.FXModule provides both *tracer.Tracer and trace.TracerProvider;
// seekdb.FXModule picks the provider up automatically:
//
//	app := fx.New(
//		logger.FXModule,
//		tracer.FXModule,
//		fx.Supply(tracer.Config{ServiceName: "indexer"}),
//		// ...
//	)
//
// The module shuts the provider down on stop, flushing pending spans.
//
// # Configuration
//
//	TRACER_SERVICE_NAME=indexer        # service.name resource attribute
//	TRACER_APP_ENV=production          # deployment.environment attribute
//	TRACER_ENABLE_EXPORT=true          # send spans to an OTLP/HTTP collector
//	TRACER_ENDPOINT=localhost:4318     # collector host:port
//	TRACER_INSECURE=true               # plain HTTP towards the collector
//
// Without TRACER_ENDPOINT the exporter falls back to the standard
// OTEL_EXPORTER_OTLP_* environment variables. Without export, spans are
// still created, so trace ids reach the logs.
//
// # Thread Safety
//
// A Tracer is safe for concurrent use by multiple goroutines.
package tracer
