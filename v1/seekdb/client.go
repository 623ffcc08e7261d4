package seekdb

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

// Client manages collections and databases on a SeekDB server. It is safe
// for concurrent use; all state is fixed at construction.
type Client struct {
	backend              Backend
	logger               *zap.Logger
	observer             observability.Observer
	tracer               trace.Tracer
	tenant               string
	maxConcurrentQueries int
}

// NewClient creates a Client that executes statements through backend.
func NewClient(backend Backend, opts ...Option) (*Client, error) {
	if backend == nil {
		return nil, configError("backend must not be nil")
	}

	o := clientOptions{
		logger:               zap.NewNop(),
		tenant:               defaultTenant,
		maxConcurrentQueries: defaultMaxConcurrentQueries,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	return &Client{
		backend:              backend,
		logger:               o.logger.With(zap.String("component", "seekdb")),
		observer:             o.observer,
		tracer:               o.tracerProvider.Tracer(instrumentationName),
		tenant:               o.tenant,
		maxConcurrentQueries: o.maxConcurrentQueries,
	}, nil
}

// Tenant returns the tenant the client reports in Database results.
func (c *Client) Tenant() string { return c.tenant }

// CreateCollection creates the table of a new collection and returns a handle to it.
// A zero cfg.Dimension is taken from the embedding function given via
// WithEmbeddingFunction; an embedding function whose dimension differs from
// cfg.Dimension is rejected.
func (c *Client) CreateCollection(ctx context.Context, name string, cfg HNSWConfig, opts ...CollectionOption) (col *Collection, err error) {
	ctx, op := c.startOperation(ctx, "create_collection", name)
	defer func() { op.end(err, 0) }()

	if err = ValidateCollectionName(name); err != nil {
		return nil, err
	}
	co := applyCollectionOptions(opts)

	dimension := cfg.Dimension
	if ef := co.embeddingFunction; ef != nil {
		switch {
		case dimension == 0:
			dimension = ef.Dimension()
		case ef.Dimension() != dimension:
			return nil, invalidInput("embedding function dimension %d does not match configured dimension %d", ef.Dimension(), dimension)
		}
	}
	if dimension == 0 {
		return nil, configError("collection %q needs a dimension or an embedding function", name)
	}
	if !cfg.Distance.Valid() {
		return nil, configError("collection %q has invalid distance metric %q", name, cfg.Distance)
	}

	if _, err = c.exec(ctx, CreateTableSQL(TableName(name), dimension, cfg.Distance), nil); err != nil {
		return nil, err
	}
	c.logger.Info("collection created",
		zap.String("collection", name),
		zap.Uint32("dimension", dimension),
		zap.String("distance", string(cfg.Distance)),
	)

	return newCollection(c, name, dimension, cfg.Distance, co), nil
}

// GetCollection opens an existing collection, resolving its dimension and
// distance metric from the table definition.
func (c *Client) GetCollection(ctx context.Context, name string, opts ...CollectionOption) (col *Collection, err error) {
	ctx, op := c.startOperation(ctx, "get_collection", name)
	defer func() { op.end(err, 0) }()

	if err = ValidateCollectionName(name); err != nil {
		return nil, err
	}
	schema, err := resolveSchema(ctx, c, TableName(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewError(CategoryNotFound, err, "collection %q", name)
		}
		return nil, err
	}
	co := applyCollectionOptions(opts)
	if ef := co.embeddingFunction; ef != nil && ef.Dimension() != schema.dimension {
		return nil, invalidInput("embedding function dimension %d does not match collection dimension %d", ef.Dimension(), schema.dimension)
	}
	return newCollection(c, name, schema.dimension, schema.distance, co), nil
}

// DeleteCollection drops the table of a collection. Deleting a collection
// that does not exist is not an error.
func (c *Client) DeleteCollection(ctx context.Context, name string) (err error) {
	ctx, op := c.startOperation(ctx, "delete_collection", name)
	defer func() { op.end(err, 0) }()

	if err = ValidateCollectionName(name); err != nil {
		return err
	}
	_, err = c.exec(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(TableName(name)), nil)
	if err == nil {
		c.logger.Info("collection deleted", zap.String("collection", name))
	}
	return err
}

// ListCollections returns the names of all collections in the current database.
func (c *Client) ListCollections(ctx context.Context) (names []string, err error) {
	ctx, op := c.startOperation(ctx, "list_collections", "")
	defer func() { op.end(err, int64(len(names))) }()

	rows, err := c.query(ctx, "SHOW TABLES LIKE 'c$v1$%'", nil)
	if err != nil {
		c.logger.Debug("SHOW TABLES failed, falling back to information_schema", zap.Error(err))
		rows, err = c.query(ctx,
			"SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME LIKE 'c$v1$%'",
			nil)
		if err != nil {
			return nil, err
		}
	}

	names = make([]string, 0, len(rows))
	for _, row := range rows {
		table, ok := row.StringAt(0)
		if !ok {
			continue
		}
		if name, ok := CollectionNameFromTable(table); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// HasCollection reports whether a collection exists in the current database.
func (c *Client) HasCollection(ctx context.Context, name string) (exists bool, err error) {
	ctx, op := c.startOperation(ctx, "has_collection", name)
	defer func() { op.end(err, 0) }()

	if err = ValidateCollectionName(name); err != nil {
		return false, err
	}
	rows, err := c.query(ctx,
		"SELECT 1 FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? LIMIT 1",
		[]any{TableName(name)})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// GetOrCreateCollection opens a collection, creating it with cfg when it does not exist.
func (c *Client) GetOrCreateCollection(ctx context.Context, name string, cfg HNSWConfig, opts ...CollectionOption) (*Collection, error) {
	exists, err := c.HasCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return c.GetCollection(ctx, name, opts...)
	}
	return c.CreateCollection(ctx, name, cfg, opts...)
}

// CountCollections returns the number of collections in the current database.
func (c *Client) CountCollections(ctx context.Context) (int, error) {
	names, err := c.ListCollections(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Exec and Query let the client act as the Backend of the schema resolver
// while still logging and classifying statements.
func (c *Client) Exec(ctx context.Context, query string, args []any) (int64, error) {
	return c.exec(ctx, query, args)
}

func (c *Client) Query(ctx context.Context, query string, args []any) ([]Row, error) {
	return c.query(ctx, query, args)
}

func applyCollectionOptions(opts []CollectionOption) collectionOptions {
	var co collectionOptions
	for _, opt := range opts {
		opt(&co)
	}
	return co
}
