package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"
)

// Tracer owns the process tracer provider. The seekdb client creates its
// spans from Provider; StartSpan is for application code around it.
type Tracer struct {
	tracer *sdktrace.TracerProvider
	logger *zap.Logger
}

// NewClient creates the tracer provider, installs it as the global provider
// and sets the W3C trace-context and baggage propagators.
//
// Parameters:
//   - cfg: Service name, environment and export settings
//   - logger: Logger for export and shutdown messages; nil disables logging
//
// Returns:
//   - *Tracer: The tracer owning the provider
//   - error: The exporter construction error when export is enabled
//
// With cfg.EnableExport an OTLP/HTTP exporter is attached through a batch
// span processor; otherwise spans are created but not exported.
//
// Example:
//
//	t, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "indexer",
//		EnableExport: true,
//		Endpoint:     "localhost:4318",
//		Insecure:     true,
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer t.Shutdown(context.Background())
func NewClient(cfg Config, logger *zap.Logger) (*Tracer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var options []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		var clientOpts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(clientOpts...))
		if err != nil {
			return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(exporter))
		logger.Info("trace export enabled", zap.String("endpoint", cfg.Endpoint))
	}

	options = append(options, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := sdktrace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Tracer{tracer: tp, logger: logger}, nil
}

// Shutdown flushes pending spans and stops the provider. It is safe to call
// on a nil Tracer.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.tracer == nil {
		return nil
	}
	t.logger.Info("shutting down tracer")
	return t.tracer.Shutdown(ctx)
}
