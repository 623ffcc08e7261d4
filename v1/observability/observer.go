// Package observability defines the hook through which seekdb components
// report completed operations. It has no dependencies so that metrics,
// logging or tracing backends can implement Observer without import cycles.
package observability

import "time"

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the reporting package, for example "seekdb" or "embedding".
	Component string

	// Operation is the operation name, for example "add" or "hybrid_search".
	Operation string

	// Resource is the primary object operated on, usually a collection name.
	Resource string

	// SubResource narrows Resource, for example the physical table name.
	SubResource string

	Duration time.Duration

	// Error is nil on success.
	Error error

	// Size is the number of records written, read or affected.
	Size int64

	Metadata map[string]interface{}
}

// Observer receives an OperationContext for every completed operation.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) { f(ctx) }

// Multi fans an operation out to several observers. Nil entries are skipped.
func Multi(observers ...Observer) Observer {
	return ObserverFunc(func(ctx OperationContext) {
		for _, o := range observers {
			if o != nil {
				o.ObserveOperation(ctx)
			}
		}
	})
}
