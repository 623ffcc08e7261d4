package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated Prometheus registry, the seekdb operation
// metrics registered in it and the HTTP server exposing them.
//
// Metrics implements observability.Observer, so it can be handed to
// seekdb.WithObserver and embedding.Config.Observer directly.
type Metrics struct {
	// Server serves the registry on /metrics.
	Server *http.Server

	// Registry is the isolated registry all collectors are registered in.
	Registry *prometheus.Registry

	namespace  string
	registerer prometheus.Registerer

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	rowsTotal         *prometheus.CounterVec
	hybridFallbacks   prometheus.Counter
}

// NewMetrics creates the registry, registers the operation metrics and
// builds (but does not start) the HTTP server.
//
// Parameters:
//   - cfg: Listen address, namespace, service label and whether to register
//     the default collectors. An empty Address or Namespace falls back to
//     DefaultMetricsAddress and DefaultNamespace.
//
// Returns:
//   - *Metrics: The metrics instance; its Server is not started
//
// All metrics carry a constant service label taken from cfg.ServiceName:
//
//	seekdb_operations_total{component, operation, status}
//	seekdb_operation_duration_seconds{component, operation}
//	seekdb_rows_total{component, operation}
//	seekdb_hybrid_fallbacks_total
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9100", ServiceName: "indexer"})
//	go m.Server.ListenAndServe()
//	client, err := seekdb.NewClient(backend, seekdb.WithObserver(m))
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	m := &Metrics{
		Registry:   registry,
		namespace:  cfg.Namespace,
		registerer: wrapped,
	}

	m.operationsTotal = createCounterVec(cfg.Namespace, "operations_total",
		"Total number of completed operations", []string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "operation_duration_seconds",
		"Duration of operations in seconds", []string{"component", "operation"}, prometheus.DefBuckets)
	m.rowsTotal = createCounterVec(cfg.Namespace, "rows_total",
		"Number of records written, read or affected by operations", []string{"component", "operation"})
	m.hybridFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "hybrid_fallbacks_total",
		Help:      "Hybrid searches rejected by the engine and answered client-side",
	})

	wrapped.MustRegister(m.operationsTotal, m.operationDuration, m.rowsTotal, m.hybridFallbacks)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
