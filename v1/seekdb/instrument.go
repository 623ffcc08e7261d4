package seekdb

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

const instrumentationName = "github.com/Aleph-Alpha/seekdb/v1/seekdb"

// operation tracks one public call for tracing, logging and the observer.
type operation struct {
	client   *Client
	name     string
	resource string
	start    time.Time
	span     trace.Span
	metadata map[string]interface{}
}

func (c *Client) startOperation(ctx context.Context, name, resource string) (context.Context, *operation) {
	ctx, span := c.tracer.Start(ctx, "seekdb."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "seekdb"),
			attribute.String("seekdb.collection", resource),
		),
	)
	return ctx, &operation{client: c, name: name, resource: resource, start: time.Now(), span: span}
}

// set records a key/value pair reported to the observer and the span.
func (o *operation) set(key string, value interface{}) {
	if o.metadata == nil {
		o.metadata = make(map[string]interface{})
	}
	o.metadata[key] = value
	switch v := value.(type) {
	case bool:
		o.span.SetAttributes(attribute.Bool("seekdb."+key, v))
	case int:
		o.span.SetAttributes(attribute.Int("seekdb."+key, v))
	case string:
		o.span.SetAttributes(attribute.String("seekdb."+key, v))
	}
}

func (o *operation) end(err error, size int64) {
	duration := time.Since(o.start)

	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
	}
	o.span.SetAttributes(attribute.Int64("seekdb.size", size))
	o.span.End()

	msg := "operation completed"
	if err != nil {
		msg = "operation failed"
	}
	if ce := o.client.logger.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(
			zap.String("operation", o.name),
			zap.String("collection", o.resource),
			zap.Duration("duration", duration),
			zap.Int64("size", size),
			zap.Error(err),
		)
	}

	if o.client.observer == nil {
		return
	}
	o.client.observer.ObserveOperation(observability.OperationContext{
		Component:   "seekdb",
		Operation:   o.name,
		Resource:    o.resource,
		SubResource: TableName(o.resource),
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    o.metadata,
	})
}

// exec runs a statement through the backend and classifies its error.
func (c *Client) exec(ctx context.Context, query string, args []any) (int64, error) {
	c.logger.Debug("exec", zap.String("sql", query), zap.Int("params", len(args)))
	n, err := c.backend.Exec(ctx, query, args)
	if err != nil {
		return 0, classifyStatementError(err)
	}
	return n, nil
}

// query runs a statement through the backend and classifies its error.
func (c *Client) query(ctx context.Context, query string, args []any) ([]Row, error) {
	c.logger.Debug("query", zap.String("sql", query), zap.Int("params", len(args)))
	rows, err := c.backend.Query(ctx, query, args)
	if err != nil {
		return nil, classifyStatementError(err)
	}
	return rows, nil
}
