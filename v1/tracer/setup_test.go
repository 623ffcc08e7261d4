package tracer

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func newRecordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &Tracer{tracer: tp, logger: zap.NewNop()}, recorder
}

func TestNewClientWithoutExport(t *testing.T) {
	tr, err := NewClient(Config{ServiceName: "test", AppEnv: "test"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if tr.Provider() == nil {
		t.Fatal("expected a provider")
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestStartSpanRecordsError(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), "reindex")
	tr.SetAttributes(span, map[string]interface{}{"collection": "docs", "batch": 3})
	tr.RecordErrorOnSpan(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "reindex" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
	if len(spans[0].Attributes()) != 2 {
		t.Errorf("expected 2 attributes, got %d", len(spans[0].Attributes()))
	}
}

func TestShutdownNil(t *testing.T) {
	var tr *Tracer
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil tracer shutdown: %v", err)
	}
}
