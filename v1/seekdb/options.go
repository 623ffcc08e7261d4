package seekdb

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

const (
	defaultTenant               = "sys"
	defaultMaxConcurrentQueries = 4
	defaultNResults             = 10
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger               *zap.Logger
	observer             observability.Observer
	tracerProvider       trace.TracerProvider
	tenant               string
	maxConcurrentQueries int
}

// WithLogger sets the logger used for statement and operation logs.
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer that is notified of every completed operation.
func WithObserver(observer observability.Observer) Option {
	return func(o *clientOptions) {
		o.observer = observer
	}
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) {
		o.tracerProvider = tp
	}
}

// WithTenant sets the tenant reported in Database results.
func WithTenant(tenant string) Option {
	return func(o *clientOptions) {
		if tenant != "" {
			o.tenant = tenant
		}
	}
}

// WithMaxConcurrentQueries bounds how many per-vector statements a single
// multi-vector query runs in parallel. Values below 1 mean sequential.
func WithMaxConcurrentQueries(n int) Option {
	return func(o *clientOptions) {
		if n < 1 {
			n = 1
		}
		o.maxConcurrentQueries = n
	}
}

// CollectionOption configures a Collection handle.
type CollectionOption func(*collectionOptions)

type collectionOptions struct {
	embeddingFunction EmbeddingFunction
	id                string
	metadata          Metadata
}

// WithEmbeddingFunction binds an embedding function to the collection.
func WithEmbeddingFunction(ef EmbeddingFunction) CollectionOption {
	return func(o *collectionOptions) {
		o.embeddingFunction = ef
	}
}

// WithCollectionID attaches an identifier to the collection handle.
func WithCollectionID(id string) CollectionOption {
	return func(o *collectionOptions) {
		o.id = id
	}
}

// WithCollectionMetadata attaches a metadata document to the collection handle.
func WithCollectionMetadata(metadata Metadata) CollectionOption {
	return func(o *collectionOptions) {
		o.metadata = metadata
	}
}
