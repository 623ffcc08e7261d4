package tracer

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FXModule provides *Tracer and its trace.TracerProvider, and flushes
// pending spans on shutdown.
//
// Dependencies required by this module:
// - A tracer.Config instance must be available in the dependency injection container
// - A *zap.Logger is optional
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClientWithDI,
		func(t *Tracer) trace.TracerProvider { return t.Provider() },
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerParams groups the dependencies of NewClientWithDI.
type TracerParams struct {
	fx.In

	Config Config
	Logger *zap.Logger `optional:"true"`
}

// NewClientWithDI creates the tracer from injected dependencies.
func NewClientWithDI(params TracerParams) (*Tracer, error) {
	return NewClient(params.Config, params.Logger)
}

// RegisterTracerLifecycle shuts the tracer down when the application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
}
