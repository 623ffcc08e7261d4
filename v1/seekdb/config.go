package seekdb

import (
	"regexp"
	"strings"
)

// DistanceMetric is the vector similarity function bound to a collection.
type DistanceMetric string

const (
	L2           DistanceMetric = "l2"
	Cosine       DistanceMetric = "cosine"
	InnerProduct DistanceMetric = "inner_product"
)

// ParseDistanceMetric parses a metric token as it appears in index options
// or on the command line.
func ParseDistanceMetric(s string) (DistanceMetric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2":
		return L2, nil
	case "cosine":
		return Cosine, nil
	case "inner_product", "ip":
		return InnerProduct, nil
	default:
		return "", configError("unknown distance metric %q", s)
	}
}

// Valid reports whether d is one of the supported metrics.
func (d DistanceMetric) Valid() bool {
	return d == L2 || d == Cosine || d == InnerProduct
}

// sqlFunction returns the SQL distance function used to rank by d.
func (d DistanceMetric) sqlFunction() string {
	switch d {
	case Cosine:
		return "cosine_distance"
	case InnerProduct:
		return "inner_product"
	default:
		return "l2_distance"
	}
}

// HNSWConfig configures the vector index of a new collection.
type HNSWConfig struct {
	// Dimension of stored vectors. Zero means "take it from the embedding function".
	Dimension uint32 `yaml:"dimension" json:"dimension"`
	// Distance metric of the index.
	Distance DistanceMetric `yaml:"distance" json:"distance"`
}

const (
	// CollectionTablePrefix is prepended to a collection name to form its table name.
	CollectionTablePrefix = "c$v1$"

	ColumnID        = "_id"
	ColumnDocument  = "document"
	ColumnEmbedding = "embedding"
	ColumnMetadata  = "metadata"

	maxCollectionNameLength = 64
)

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// TableName maps a collection name to its physical table name.
func TableName(collection string) string {
	return CollectionTablePrefix + collection
}

// CollectionNameFromTable reverses TableName. The boolean is false for
// tables that do not belong to a collection.
func CollectionNameFromTable(table string) (string, bool) {
	if !strings.HasPrefix(table, CollectionTablePrefix) {
		return "", false
	}
	return strings.TrimPrefix(table, CollectionTablePrefix), true
}

// ValidateCollectionName rejects names that cannot be used as part of a
// table identifier.
func ValidateCollectionName(name string) error {
	if name == "" {
		return invalidInput("collection name must not be empty")
	}
	if len(name) > maxCollectionNameLength {
		return invalidInput("collection name %q exceeds %d characters", name, maxCollectionNameLength)
	}
	if !collectionNamePattern.MatchString(name) {
		return invalidInput("collection name %q may only contain letters, digits and underscores", name)
	}
	return nil
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
