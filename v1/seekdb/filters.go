package seekdb

// ── Metadata filters ─────────────────────────────────────────────────────────

// Filter is a predicate over the metadata JSON document of a record.
// The set of implementations is closed; use the constructors below.
type Filter interface {
	isFilter()
}

// Operator is a comparison operator of a CompareCondition.
type Operator string

const (
	OpEq  Operator = "="
	OpNe  Operator = "!="
	OpLt  Operator = "<"
	OpLte Operator = "<="
	OpGt  Operator = ">"
	OpGte Operator = ">="
)

// CompareCondition compares a metadata field with a single value.
type CompareCondition struct {
	Field string
	Op    Operator
	Value any
}

// InCondition tests a metadata field for membership in a value list.
// Negate turns it into NOT IN.
type InCondition struct {
	Field  string
	Values []any
	Negate bool
}

// AndFilter matches when every child matches. An empty AndFilter matches everything.
type AndFilter struct {
	Filters []Filter
}

// OrFilter matches when any child matches. An empty OrFilter matches nothing.
type OrFilter struct {
	Filters []Filter
}

// NotFilter negates its child.
type NotFilter struct {
	Filter Filter
}

func (CompareCondition) isFilter() {}
func (InCondition) isFilter()      {}
func (AndFilter) isFilter()        {}
func (OrFilter) isFilter()         {}
func (NotFilter) isFilter()        {}

// Eq matches records whose field equals value.
func Eq(field string, value any) Filter {
	return CompareCondition{Field: field, Op: OpEq, Value: value}
}

// Ne matches records whose field differs from value.
func Ne(field string, value any) Filter {
	return CompareCondition{Field: field, Op: OpNe, Value: value}
}

// Lt matches records whose field is less than value.
func Lt(field string, value any) Filter {
	return CompareCondition{Field: field, Op: OpLt, Value: value}
}

// Lte matches records whose field is less than or equal to value.
func Lte(field string, value any) Filter {
	return CompareCondition{Field: field, Op: OpLte, Value: value}
}

// Gt matches records whose field is greater than value.
func Gt(field string, value any) Filter {
	return CompareCondition{Field: field, Op: OpGt, Value: value}
}

// Gte matches records whose field is greater than or equal to value.
func Gte(field string, value any) Filter {
	return CompareCondition{Field: field, Op: OpGte, Value: value}
}

// In matches records whose field equals one of values.
func In(field string, values ...any) Filter {
	return InCondition{Field: field, Values: values}
}

// Nin matches records whose field equals none of values.
func Nin(field string, values ...any) Filter {
	return InCondition{Field: field, Values: values, Negate: true}
}

// And combines filters with logical AND.
func And(filters ...Filter) Filter {
	return AndFilter{Filters: filters}
}

// Or combines filters with logical OR.
func Or(filters ...Filter) Filter {
	return OrFilter{Filters: filters}
}

// Not negates a filter.
func Not(filter Filter) Filter {
	return NotFilter{Filter: filter}
}

// combineFilters AND-merges two optional filters.
func combineFilters(a, b Filter) Filter {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return And(a, b)
	}
}

// ValidateFilter reports an ErrInvalidInput error for a filter that cannot
// be compiled: an unknown comparison operator or a Filter implementation
// defined outside this package. A nil filter is valid.
func ValidateFilter(f Filter) error {
	switch t := f.(type) {
	case nil, InCondition:
		return nil
	case CompareCondition:
		switch t.Op {
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
			return nil
		}
		return invalidInput("unknown comparison operator %q on field %q", string(t.Op), t.Field)
	case AndFilter:
		return validateFilters(t.Filters)
	case OrFilter:
		return validateFilters(t.Filters)
	case NotFilter:
		return ValidateFilter(t.Filter)
	default:
		return invalidInput("unsupported filter type %T", f)
	}
}

func validateFilters(filters []Filter) error {
	for _, f := range filters {
		if err := ValidateFilter(f); err != nil {
			return err
		}
	}
	return nil
}

// ── Document filters ─────────────────────────────────────────────────────────

// DocFilter is a predicate over the document text of a record.
type DocFilter interface {
	isDocFilter()
}

// ContainsCondition is a full-text match on the document column.
type ContainsCondition struct {
	Text string
}

// RegexCondition is a regular-expression match on the document column.
type RegexCondition struct {
	Pattern string
}

// DocAndFilter matches when every child matches.
type DocAndFilter struct {
	Filters []DocFilter
}

// DocOrFilter matches when any child matches.
type DocOrFilter struct {
	Filters []DocFilter
}

func (ContainsCondition) isDocFilter() {}
func (RegexCondition) isDocFilter()    {}
func (DocAndFilter) isDocFilter()      {}
func (DocOrFilter) isDocFilter()       {}

// Contains matches documents containing text according to the full-text index.
func Contains(text string) DocFilter {
	return ContainsCondition{Text: text}
}

// Regex matches documents matching pattern.
func Regex(pattern string) DocFilter {
	return RegexCondition{Pattern: pattern}
}

// DocAnd combines document filters with logical AND.
func DocAnd(filters ...DocFilter) DocFilter {
	return DocAndFilter{Filters: filters}
}

// DocOr combines document filters with logical OR.
func DocOr(filters ...DocFilter) DocFilter {
	return DocOrFilter{Filters: filters}
}

// ValidateDocFilter rejects DocFilter implementations defined outside this
// package with ErrInvalidInput. A nil filter is valid.
func ValidateDocFilter(f DocFilter) error {
	switch t := f.(type) {
	case nil, ContainsCondition, RegexCondition:
		return nil
	case DocAndFilter:
		return validateDocFilters(t.Filters)
	case DocOrFilter:
		return validateDocFilters(t.Filters)
	default:
		return invalidInput("unsupported document filter type %T", f)
	}
}

func validateDocFilters(filters []DocFilter) error {
	for _, f := range filters {
		if err := ValidateDocFilter(f); err != nil {
			return err
		}
	}
	return nil
}

// validateSelectors checks the filters of a request before any statement
// is built from them.
func validateSelectors(where Filter, whereDocument DocFilter) error {
	if err := ValidateFilter(where); err != nil {
		return err
	}
	return ValidateDocFilter(whereDocument)
}
