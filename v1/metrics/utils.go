package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CreateCounter creates a CounterVec in the metrics namespace and registers it.
//
// Parameters:
//   - name: Metric name without the namespace prefix
//   - help: Help text shown by Prometheus
//   - labels: Variable label names
//
// Returns:
//   - *prometheus.CounterVec: The registered counter
//
// It panics when a collector with the same name is already registered.
//
// Example:
//
//	imports := m.CreateCounter("imports_total", "Imported records", []string{"collection"})
//	imports.WithLabelValues("docs").Add(float64(len(ids)))
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a HistogramVec in the metrics namespace and registers it.
// buckets are the upper bounds; pass prometheus.DefBuckets for latencies in
// seconds.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a GaugeVec in the metrics namespace and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: m.namespace, Name: name, Help: help}, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
