package seekdb

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	sqlTrue  = "1 = 1"
	sqlFalse = "1 = 0"
)

// SQLWhere is a compiled predicate: a clause without the WHERE keyword and
// the parameters bound to its placeholders, in order.
type SQLWhere struct {
	Clause string
	Params []any
}

// Empty reports whether the predicate has no clause.
func (w SQLWhere) Empty() bool { return w.Clause == "" }

// SQL renders the predicate as a statement suffix: " WHERE <clause>", or
// the empty string for an empty predicate.
func (w SQLWhere) SQL() string {
	if w.Clause == "" {
		return ""
	}
	return " WHERE " + w.Clause
}

// CompileFilter compiles a metadata filter into a parameterised SQL fragment.
// Values are always bound as parameters. A nil filter compiles to an empty
// SQLWhere.
//
// Empty compositions compile to constants: And() to "1 = 1", Or() to
// "1 = 0", In(field) to "1 = 0" and Nin(field) to "1 = 1".
//
// f must pass ValidateFilter; CompileFilter panics on an unknown operator.
// Collection operations validate their filters and return ErrInvalidInput
// instead.
func CompileFilter(f Filter) SQLWhere {
	var w SQLWhere
	w.Clause = compileFilter(f, &w.Params)
	return w
}

func compileFilter(f Filter, params *[]any) string {
	switch t := f.(type) {
	case nil:
		return ""
	case CompareCondition:
		*params = append(*params, bindValue(t.Value))
		return fmt.Sprintf("%s %s ?", metadataExpr(t.Field), compareOperator(t.Op))
	case InCondition:
		if len(t.Values) == 0 {
			if t.Negate {
				return sqlTrue
			}
			return sqlFalse
		}
		for _, v := range t.Values {
			*params = append(*params, bindValue(v))
		}
		op := "IN"
		if t.Negate {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", metadataExpr(t.Field), op, placeholders(len(t.Values)))
	case AndFilter:
		return joinCompiled(t.Filters, " AND ", sqlTrue, params)
	case OrFilter:
		return joinCompiled(t.Filters, " OR ", sqlFalse, params)
	case NotFilter:
		inner := compileFilter(t.Filter, params)
		if inner == "" {
			return ""
		}
		return "NOT (" + inner + ")"
	default:
		panic(fmt.Sprintf("seekdb: unknown filter type %T", f))
	}
}

func joinCompiled(children []Filter, sep, empty string, params *[]any) string {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		if c := compileFilter(child, params); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return empty
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func compareOperator(op Operator) string {
	switch op {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		return string(op)
	default:
		panic(fmt.Sprintf("seekdb: unknown comparison operator %q", op))
	}
}

// CompileDocFilter compiles a document filter. Full-text matches require
// the FULLTEXT index every collection table is created with.
func CompileDocFilter(f DocFilter) SQLWhere {
	var w SQLWhere
	w.Clause = compileDocFilter(f, &w.Params)
	return w
}

func compileDocFilter(f DocFilter, params *[]any) string {
	switch t := f.(type) {
	case nil:
		return ""
	case ContainsCondition:
		*params = append(*params, t.Text)
		return "MATCH(document) AGAINST (? IN NATURAL LANGUAGE MODE)"
	case RegexCondition:
		*params = append(*params, t.Pattern)
		return "document REGEXP ?"
	case DocAndFilter:
		return joinCompiledDoc(t.Filters, " AND ", sqlTrue, params)
	case DocOrFilter:
		return joinCompiledDoc(t.Filters, " OR ", sqlFalse, params)
	default:
		panic(fmt.Sprintf("seekdb: unknown document filter type %T", f))
	}
}

func joinCompiledDoc(children []DocFilter, sep, empty string, params *[]any) string {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		if c := compileDocFilter(child, params); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return empty
	}
	return "(" + strings.Join(parts, sep) + ")"
}

var simpleFieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// jsonPath returns the JSON path selecting field inside the metadata
// document. Dotted identifiers address nested objects; anything else is
// quoted as a single member name.
func jsonPath(field string) string {
	if simpleFieldPattern.MatchString(field) {
		return "$." + field
	}
	return `$."` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(field) + `"`
}

// metadataExpr is the SQL expression extracting field from the metadata column.
func metadataExpr(field string) string {
	return fmt.Sprintf("JSON_EXTRACT(%s, %s)", ColumnMetadata, sqlStringLiteral(jsonPath(field)))
}

func sqlStringLiteral(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `''`).Replace(s) + "'"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// bindValue converts a filter value to a driver-bindable parameter.
func bindValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return bindUnsigned(uint64(t))
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return bindUnsigned(t)
	case float32:
		return float64(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []byte:
		return string(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

func bindUnsigned(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}
