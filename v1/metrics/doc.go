// Package metrics exposes Prometheus metrics for seekdb clients.
//
// The package owns an isolated Prometheus registry, registers the seekdb
// operation metrics in it and serves them on a configurable /metrics
// endpoint. It integrates with the fx dependency injection framework, which
// starts and stops the endpoint with the application.
//
// # Architecture
//
// The package follows the "accept interfaces, return structs" pattern:
//   - observability.Observer interface: the contract the seekdb client and
//     the embedding client report completed operations to
//   - Metrics struct: implements observability.Observer
//   - NewMetrics constructor: returns *Metrics (concrete type)
//   - FX module: provides *Metrics and the observability.Observer interface
//
// Core Features:
//   - Operation counters, latency histograms and row counters per component
//     and operation
//   - A dedicated counter for hybrid searches answered client-side after the
//     engine rejected them
//   - A constant "service" label on every metric
//   - Optional Go runtime, process and build info collectors
//   - Custom counters, histograms and gauges in the same namespace
//   - Graceful startup and shutdown via fx lifecycle hooks
//
// # Exposed Metrics
//
// With the default namespace:
//
//	seekdb_operations_total{component, operation, status}
//	seekdb_operation_duration_seconds{component, operation}
//	seekdb_rows_total{component, operation}
//	seekdb_hybrid_fallbacks_total
//
// component is "seekdb" for collection and admin operations and "embedding"
// for calls of the embedding client. status is "success" or "error". The
// rows counter is increased by the Size an operation reports (records
// written, rows returned or rows affected).
//
// # Direct Usage (Without FX)
//
// For simple applications or tests, create metrics directly:
//
//	import "github.com/Aleph-Alpha/seekdb/v1/metrics"
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "indexer",
//	})
//	go m.Server.ListenAndServe()
//	defer m.Server.Shutdown(context.Background())
//
//	client, err := seekdb.NewClient(backend, seekdb.WithObserver(m))
//
// # FX Module Integration
//
// With fx, the module provides *Metrics and observability.Observer;
// seekdb.FXModule takes the observer as an optional dependency:
//
//	import (
//		"github.com/Aleph-Alpha/seekdb/v1/logger"
//		"github.com/Aleph-Alpha/seekdb/v1/metrics"
//		"go.uber.org/fx"
//	)
//
//	app := fx.New(
//		logger.FXModule, // optional: logs server start and failures
//		metrics.FXModule, // provides *metrics.Metrics and observability.Observer
//		fx.Supply(metrics.Config{
//			Address:     ":9090",
//			ServiceName: "indexer",
//		}),
//	)
//	app.Run()
//
// The server is started in the background on start. A failing listener is
// logged and does not stop the application.
//
// # Configuration
//
// The metrics server can be configured via environment variables:
//
//	METRICS_ADDRESS=:9090                      # listen address of /metrics
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true     # runtime and process metrics
//	METRICS_NAMESPACE=seekdb                   # prefix of every metric name
//	METRICS_SERVICE_NAME=indexer               # constant service label
//
// # Custom Metrics
//
// CreateCounter, CreateHistogram and CreateGauge register additional
// collectors in the same namespace and registry, with the service label
// attached:
//
//	records := m.CreateGauge("collection_records", "Records per collection", []string{"collection"})
//	records.WithLabelValues("docs").Set(float64(n))
//
// Registering the same name twice panics, as prometheus.MustRegister does.
//
// # Performance Considerations
//
// Label values are component and operation names, so the cardinality of the
// built-in metrics is fixed. Avoid unbounded label values such as record ids
// in custom metrics.
//
// # Thread Safety
//
// All methods of Metrics and the returned collectors are safe for concurrent
// use by multiple goroutines.
package metrics
