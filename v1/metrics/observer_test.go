package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "seekdb",
		Operation: "add",
		Resource:  "docs",
		Duration:  20 * time.Millisecond,
		Size:      3,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "seekdb",
		Operation: "add",
		Resource:  "docs",
		Duration:  5 * time.Millisecond,
		Error:     errors.New("boom"),
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "seekdb",
		Operation: "hybrid_search_advanced",
		Metadata:  map[string]interface{}{"fallback": true},
	})

	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("seekdb", "add", "success")); got != 1 {
		t.Errorf("expected 1 successful add, got %v", got)
	}
	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("seekdb", "add", "error")); got != 1 {
		t.Errorf("expected 1 failed add, got %v", got)
	}
	if got := testutil.ToFloat64(m.rowsTotal.WithLabelValues("seekdb", "add")); got != 3 {
		t.Errorf("expected 3 rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.hybridFallbacks); got != 1 {
		t.Errorf("expected 1 fallback, got %v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})
	m.ObserveOperation(observability.OperationContext{Component: "seekdb", Operation: "count"})

	if m.Server.Addr != DefaultMetricsAddress {
		t.Fatalf("expected default address, got %q", m.Server.Addr)
	}

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `seekdb_operations_total{component="seekdb",operation="count",service="test",status="success"} 1`) {
		t.Fatalf("operation counter missing from exposition:\n%s", body)
	}
}

func TestCreateCounter(t *testing.T) {
	m := NewMetrics(Config{Namespace: "custom"})
	c := m.CreateCounter("things_total", "things", []string{"kind"})
	c.WithLabelValues("a").Inc()

	n, err := testutil.GatherAndCount(m.Registry, "custom_things_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 series, got %d", n)
	}
}
