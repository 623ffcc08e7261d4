package seekdb

import "strings"

// BuildWhere assembles the predicate of a statement from an optional id
// list, metadata filter and document filter. Present parts are AND-joined in
// that fixed order; ids come first as "_id IN (...)" with one string
// parameter per id. An empty id list contributes nothing. When every part is
// absent the result is empty, and destructive callers must refuse it.
func BuildWhere(ids []string, where Filter, whereDocument DocFilter) SQLWhere {
	var (
		parts  []string
		params []any
	)

	if len(ids) > 0 {
		parts = append(parts, ColumnID+" IN ("+placeholders(len(ids))+")")
		for _, id := range ids {
			params = append(params, id)
		}
	}

	if c := compileFilter(where, &params); c != "" {
		parts = append(parts, c)
	}

	if c := compileDocFilter(whereDocument, &params); c != "" {
		parts = append(parts, c)
	}

	return SQLWhere{Clause: strings.Join(parts, " AND "), Params: params}
}
