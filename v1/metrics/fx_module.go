package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

// FXModule provides *Metrics, exposes it as an observability.Observer and
// runs the /metrics server for the lifetime of the application.
//
// Dependencies required by this module:
// - A metrics.Config instance must be available in the dependency injection container
// - A *zap.Logger is optional
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		AsObserver,
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// AsObserver exposes m to components that accept an observability.Observer.
func AsObserver(m *Metrics) observability.Observer {
	return m
}

// MetricsLifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type MetricsLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    *zap.Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the metrics server in the background on
// start and shuts it down on stop.
func RegisterMetricsLifecycle(params MetricsLifecycleParams) {
	log := params.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := params.Metrics

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting Prometheus metrics server", zap.String("address", m.Server.Addr))
				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("prometheus metrics server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down Prometheus metrics server")
			return m.Server.Shutdown(ctx)
		},
	})
}
