package seekdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Backend executes SQL statements against a SeekDB server. Parameters are
// bound positionally to the `?` placeholders of the statement in slice order.
//
// Implementations must be safe for concurrent use. The server package
// provides the production implementation on top of a gorm connection pool.
//
//go:generate mockgen -source=backend.go -destination=mock_backend.go -package=seekdb
type Backend interface {
	// Exec runs a statement that returns no rows and reports the number of
	// affected rows.
	Exec(ctx context.Context, query string, args []any) (int64, error)

	// Query runs a statement and returns all result rows in order.
	Query(ctx context.Context, query string, args []any) ([]Row, error)
}

// Row is a single result row with its column names.
type Row struct {
	columns []string
	values  []any
}

// NewRow builds a Row. columns and values must have the same length.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// Columns returns the column names of the row.
func (r Row) Columns() []string { return r.columns }

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.values) }

func (r Row) index(column string) int {
	for i, c := range r.columns {
		if c == column {
			return i
		}
	}
	for i, c := range r.columns {
		if strings.EqualFold(c, column) {
			return i
		}
	}
	return -1
}

// Value returns the raw value of column. The boolean is false when the
// column does not exist.
func (r Row) Value(column string) (any, bool) {
	i := r.index(column)
	if i < 0 || i >= len(r.values) {
		return nil, false
	}
	return r.values[i], true
}

// Bytes returns column as raw bytes. The boolean is false when the column
// is missing or NULL.
func (r Row) Bytes(column string) ([]byte, bool) {
	v, ok := r.Value(column)
	if !ok || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	default:
		return []byte(fmt.Sprint(t)), true
	}
}

// String returns column as a string. The boolean is false when the column
// is missing or NULL.
func (r Row) String(column string) (string, bool) {
	v, ok := r.Value(column)
	if !ok {
		return "", false
	}
	return asString(v)
}

// StringAt returns the value at position i as a string.
func (r Row) StringAt(i int) (string, bool) {
	if i < 0 || i >= len(r.values) {
		return "", false
	}
	return asString(r.values[i])
}

// Float32 returns column as a float32. The boolean is false when the column
// is missing, NULL or not numeric.
func (r Row) Float32(column string) (float32, bool) {
	v, ok := r.Value(column)
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float32:
		return t, true
	case float64:
		return float32(t), true
	case int64:
		return float32(t), true
	case int:
		return float32(t), true
	case uint64:
		return float32(t), true
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 32)
		return float32(f), err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 32)
		return float32(f), err == nil
	default:
		return 0, false
	}
}

// Int64 returns column as an int64. The boolean is false when the column
// is missing, NULL or not an integer.
func (r Row) Int64(column string) (int64, bool) {
	v, ok := r.Value(column)
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case uint64:
		return int64(t), true
	case float64:
		return int64(t), true
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return fmt.Sprint(t), true
	}
}
