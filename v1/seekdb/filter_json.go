package seekdb

import (
	"bytes"
	"encoding/json"
	"sort"
)

// JSON form of filters, as used by the other SeekDB SDKs:
//
//	{"category": "news"}                         Eq
//	{"year": {"$gte": 2020}}                     Gte
//	{"tag": {"$in": ["a", "b"]}}                 In
//	{"$and": [{...}, {...}]}                     And
//	{"$not": {...}}                              Not
//	{"$contains": "vector"}                      document Contains
//	{"$regex": "^intro"}                         document Regex

var operatorsByKey = map[string]Operator{
	"$eq":  OpEq,
	"$ne":  OpNe,
	"$lt":  OpLt,
	"$lte": OpLte,
	"$gt":  OpGt,
	"$gte": OpGte,
}

var keysByOperator = map[Operator]string{
	OpEq:  "$eq",
	OpNe:  "$ne",
	OpLt:  "$lt",
	OpLte: "$lte",
	OpGt:  "$gt",
	OpGte: "$gte",
}

// ParseFilter parses a metadata filter from its JSON form. Malformed JSON
// yields ErrSerialization, unknown operators ErrInvalidInput.
func ParseFilter(data []byte) (Filter, error) {
	var raw any
	if err := decodeJSON(data, &raw); err != nil {
		return nil, serializationError(err, "decode metadata filter")
	}
	return filterFromValue(raw)
}

// ParseDocFilter parses a document filter from its JSON form.
func ParseDocFilter(data []byte) (DocFilter, error) {
	var raw any
	if err := decodeJSON(data, &raw); err != nil {
		return nil, serializationError(err, "decode document filter")
	}
	return docFilterFromValue(raw)
}

func decodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

func filterFromValue(raw any) (Filter, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, invalidInput("metadata filter must be a JSON object, got %T", raw)
	}
	if len(obj) == 0 {
		return nil, invalidInput("metadata filter must not be empty")
	}

	keys := sortedKeys(obj)
	filters := make([]Filter, 0, len(keys))
	for _, key := range keys {
		value := obj[key]
		switch key {
		case "$and", "$or":
			children, err := filterList(key, value)
			if err != nil {
				return nil, err
			}
			if key == "$and" {
				filters = append(filters, And(children...))
			} else {
				filters = append(filters, Or(children...))
			}
		case "$not":
			child, err := filterFromValue(value)
			if err != nil {
				return nil, err
			}
			filters = append(filters, Not(child))
		default:
			if len(key) > 0 && key[0] == '$' {
				return nil, invalidInput("unknown logical operator %q", key)
			}
			f, err := fieldFilter(key, value)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		}
	}

	if len(filters) == 1 {
		return filters[0], nil
	}
	return And(filters...), nil
}

func filterList(key string, value any) ([]Filter, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, invalidInput("%s expects an array of filters", key)
	}
	children := make([]Filter, 0, len(items))
	for _, item := range items {
		child, err := filterFromValue(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func fieldFilter(field string, value any) (Filter, error) {
	ops, ok := value.(map[string]any)
	if !ok {
		return Eq(field, value), nil
	}
	if len(ops) == 0 {
		return nil, invalidInput("field %q has an empty condition", field)
	}

	keys := sortedKeys(ops)
	filters := make([]Filter, 0, len(keys))
	for _, key := range keys {
		operand := ops[key]
		switch key {
		case "$in", "$nin":
			values, ok := operand.([]any)
			if !ok {
				return nil, invalidInput("%s on field %q expects an array", key, field)
			}
			if key == "$in" {
				filters = append(filters, In(field, values...))
			} else {
				filters = append(filters, Nin(field, values...))
			}
		default:
			op, ok := operatorsByKey[key]
			if !ok {
				return nil, invalidInput("unknown operator %q on field %q", key, field)
			}
			filters = append(filters, CompareCondition{Field: field, Op: op, Value: operand})
		}
	}

	if len(filters) == 1 {
		return filters[0], nil
	}
	return And(filters...), nil
}

func docFilterFromValue(raw any) (DocFilter, error) {
	obj, ok := raw.(map[string]any)
	if !ok || len(obj) != 1 {
		return nil, invalidInput("document filter must be an object with exactly one operator")
	}
	for key, value := range obj {
		switch key {
		case "$contains", "$regex":
			s, ok := value.(string)
			if !ok {
				return nil, invalidInput("%s expects a string", key)
			}
			if key == "$contains" {
				return Contains(s), nil
			}
			return Regex(s), nil
		case "$and", "$or":
			items, ok := value.([]any)
			if !ok {
				return nil, invalidInput("%s expects an array of document filters", key)
			}
			children := make([]DocFilter, 0, len(items))
			for _, item := range items {
				child, err := docFilterFromValue(item)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			if key == "$and" {
				return DocAnd(children...), nil
			}
			return DocOr(children...), nil
		default:
			return nil, invalidInput("unknown document filter operator %q", key)
		}
	}
	return nil, invalidInput("empty document filter")
}

// MarshalFilter renders a metadata filter in its JSON form.
func MarshalFilter(f Filter) ([]byte, error) {
	if err := ValidateFilter(f); err != nil {
		return nil, err
	}
	data, err := json.Marshal(filterToValue(f))
	if err != nil {
		return nil, serializationError(err, "encode metadata filter")
	}
	return data, nil
}

// MarshalDocFilter renders a document filter in its JSON form.
func MarshalDocFilter(f DocFilter) ([]byte, error) {
	if err := ValidateDocFilter(f); err != nil {
		return nil, err
	}
	data, err := json.Marshal(docFilterToValue(f))
	if err != nil {
		return nil, serializationError(err, "encode document filter")
	}
	return data, nil
}

func filterToValue(f Filter) any {
	switch t := f.(type) {
	case nil:
		return nil
	case CompareCondition:
		return map[string]any{t.Field: map[string]any{keysByOperator[t.Op]: t.Value}}
	case InCondition:
		key := "$in"
		if t.Negate {
			key = "$nin"
		}
		values := t.Values
		if values == nil {
			values = []any{}
		}
		return map[string]any{t.Field: map[string]any{key: values}}
	case AndFilter:
		return map[string]any{"$and": filtersToValues(t.Filters)}
	case OrFilter:
		return map[string]any{"$or": filtersToValues(t.Filters)}
	case NotFilter:
		return map[string]any{"$not": filterToValue(t.Filter)}
	default:
		return nil
	}
}

func filtersToValues(filters []Filter) []any {
	out := make([]any, 0, len(filters))
	for _, f := range filters {
		out = append(out, filterToValue(f))
	}
	return out
}

func docFilterToValue(f DocFilter) any {
	switch t := f.(type) {
	case ContainsCondition:
		return map[string]any{"$contains": t.Text}
	case RegexCondition:
		return map[string]any{"$regex": t.Pattern}
	case DocAndFilter:
		return map[string]any{"$and": docFiltersToValues(t.Filters)}
	case DocOrFilter:
		return map[string]any{"$or": docFiltersToValues(t.Filters)}
	default:
		return nil
	}
}

func docFiltersToValues(filters []DocFilter) []any {
	out := make([]any, 0, len(filters))
	for _, f := range filters {
		out = append(out, docFilterToValue(f))
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
