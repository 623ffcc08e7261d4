package seekdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CreateTableSQL returns the DDL of a collection table: a varbinary primary
// key, a full-text indexed document column, an HNSW indexed vector column and
// a JSON metadata column.
func CreateTableSQL(table string, dimension uint32, distance DistanceMetric) string {
	return fmt.Sprintf(`CREATE TABLE %s (
    _id varbinary(512) PRIMARY KEY NOT NULL,
    document text,
    embedding vector(%d),
    metadata json,
    FULLTEXT INDEX idx_fts(document) WITH PARSER ik,
    VECTOR INDEX idx_vec (embedding) with(distance=%s, type=hnsw, lib=vsag)
) ORGANIZATION = HEAP;`, quoteIdentifier(table), dimension, string(distance))
}

// ParseDimension extracts N from a column type such as "vector(384)".
func ParseDimension(columnType string) (uint32, error) {
	lower := strings.ToLower(columnType)
	start := strings.Index(lower, "vector(")
	if start < 0 {
		return 0, configError("column type %q is not a vector type", columnType)
	}
	rest := lower[start+len("vector("):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return 0, configError("column type %q has no closing parenthesis", columnType)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(rest[:end]), 10, 32)
	if err != nil || n == 0 {
		return 0, configError("column type %q has no positive dimension", columnType)
	}
	return uint32(n), nil
}

// ParseDistance extracts the distance metric from the "distance=<token>"
// option of a CREATE TABLE statement. A missing or unknown token is an
// error; no metric is assumed.
func ParseDistance(createStatement string) (DistanceMetric, error) {
	lower := strings.ToLower(createStatement)
	pos := strings.Index(lower, "distance=")
	if pos < 0 {
		return "", configError("no distance option in table definition")
	}
	rest := lower[pos+len("distance="):]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	if end >= 0 {
		rest = rest[:end]
	}
	return ParseDistanceMetric(rest)
}

// collectionSchema is what the resolver recovers from an existing table.
type collectionSchema struct {
	dimension uint32
	distance  DistanceMetric
}

// resolveSchema reads dimension and distance of a collection table from the
// server, so that tables created by other clients can be opened as well.
func resolveSchema(ctx context.Context, backend Backend, table string) (collectionSchema, error) {
	describe, err := backend.Query(ctx, "DESCRIBE "+quoteIdentifier(table), nil)
	if err != nil {
		return collectionSchema{}, classifyStatementError(err)
	}
	if len(describe) == 0 {
		return collectionSchema{}, notFound("table %s does not exist", table)
	}

	var columnType string
	for _, row := range describe {
		if field, _ := row.String("Field"); field == ColumnEmbedding {
			columnType, _ = row.String("Type")
			break
		}
	}
	if columnType == "" {
		return collectionSchema{}, configError("table %s has no %s column", table, ColumnEmbedding)
	}
	dimension, err := ParseDimension(columnType)
	if err != nil {
		return collectionSchema{}, err
	}

	create, err := backend.Query(ctx, "SHOW CREATE TABLE "+quoteIdentifier(table), nil)
	if err != nil {
		return collectionSchema{}, classifyStatementError(err)
	}
	if len(create) == 0 {
		return collectionSchema{}, notFound("table %s does not exist", table)
	}
	statement, ok := create[0].String("Create Table")
	if !ok {
		statement, _ = create[0].StringAt(1)
	}
	distance, err := ParseDistance(statement)
	if err != nil {
		return collectionSchema{}, err
	}

	return collectionSchema{dimension: dimension, distance: distance}, nil
}

// FormatVector renders a vector literal such as "[1,2.5,3]".
func FormatVector(v Embedding) string {
	var b strings.Builder
	b.Grow(len(v)*8 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseVector parses a vector literal as returned by the server. Elements
// that are not numbers are skipped.
func ParseVector(s string) Embedding {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return Embedding{}
	}
	parts := strings.Split(s, ",")
	out := make(Embedding, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			continue
		}
		out = append(out, float32(f))
	}
	return out
}
