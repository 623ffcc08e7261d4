package seekdb

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

// FXModule provides a *Client built from the Backend in the container.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,  // optional: *zap.Logger
//	    metrics.FXModule, // optional: observability.Observer
//	    tracer.FXModule,  // optional: trace.TracerProvider
//	    server.FXModule,  // Backend
//	    seekdb.FXModule,
//	)
var FXModule = fx.Module("seekdb",
	fx.Provide(NewClientWithDI),
)

// ClientParams groups the dependencies of NewClientWithDI.
type ClientParams struct {
	fx.In

	Backend        Backend
	Logger         *zap.Logger            `optional:"true"`
	Observer       observability.Observer `optional:"true"`
	TracerProvider trace.TracerProvider   `optional:"true"`
	Options        []Option               `group:"seekdb_options"`
}

// NewClientWithDI creates a Client from injected dependencies. Additional
// options can be contributed to the "seekdb_options" value group.
func NewClientWithDI(params ClientParams) (*Client, error) {
	opts := []Option{WithLogger(params.Logger), WithObserver(params.Observer)}
	if params.TracerProvider != nil {
		opts = append(opts, WithTracerProvider(params.TracerProvider))
	}
	opts = append(opts, params.Options...)
	return NewClient(params.Backend, opts...)
}
