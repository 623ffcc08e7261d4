package metrics

import (
	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

// ObserveOperation records a completed operation.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	status := "success"
	if op.Error != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(op.Component, op.Operation, status).Inc()
	m.operationDuration.WithLabelValues(op.Component, op.Operation).Observe(op.Duration.Seconds())
	if op.Size > 0 {
		m.rowsTotal.WithLabelValues(op.Component, op.Operation).Add(float64(op.Size))
	}
	if fallback, _ := op.Metadata["fallback"].(bool); fallback {
		m.hybridFallbacks.Inc()
	}
}

var _ observability.Observer = (*Metrics)(nil)
