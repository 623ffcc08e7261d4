package seekdb

// Collection is a handle to one vector-capable table. Its dimension and
// distance metric are fixed when the handle is created; a Collection is safe
// for concurrent use.
type Collection struct {
	client            *Client
	name              string
	id                string
	dimension         uint32
	distance          DistanceMetric
	embeddingFunction EmbeddingFunction
	metadata          Metadata
}

func newCollection(client *Client, name string, dimension uint32, distance DistanceMetric, o collectionOptions) *Collection {
	return &Collection{
		client:            client,
		name:              name,
		id:                o.id,
		dimension:         dimension,
		distance:          distance,
		embeddingFunction: o.embeddingFunction,
		metadata:          o.metadata,
	}
}

// Name returns the logical collection name.
func (c *Collection) Name() string { return c.name }

// ID returns the identifier given with WithCollectionID, if any.
func (c *Collection) ID() string { return c.id }

// Dimension returns the length of every vector stored in the collection.
func (c *Collection) Dimension() uint32 { return c.dimension }

// Distance returns the metric the collection ranks by.
func (c *Collection) Distance() DistanceMetric { return c.distance }

// Metadata returns the metadata given with WithCollectionMetadata, if any.
func (c *Collection) Metadata() Metadata { return c.metadata }

// EmbeddingFunction returns the bound embedding function, or nil.
func (c *Collection) EmbeddingFunction() EmbeddingFunction { return c.embeddingFunction }

// TableName returns the physical table backing the collection.
func (c *Collection) TableName() string { return TableName(c.name) }

func (c *Collection) table() string { return quoteIdentifier(TableName(c.name)) }
