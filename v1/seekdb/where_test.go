package seekdb

import (
	"reflect"
	"testing"
)

func TestBuildWhere_Empty(t *testing.T) {
	w := BuildWhere(nil, nil, nil)
	if !w.Empty() {
		t.Errorf("expected empty predicate, got %q", w.Clause)
	}
	if w := BuildWhere([]string{}, nil, nil); !w.Empty() {
		t.Errorf("empty id list should contribute nothing, got %q", w.Clause)
	}
}

func TestBuildWhere_IDsOnly(t *testing.T) {
	w := BuildWhere([]string{"a", "b"}, nil, nil)
	if w.Clause != "_id IN (?, ?)" {
		t.Errorf("unexpected clause %q", w.Clause)
	}
	if !reflect.DeepEqual(w.Params, []any{"a", "b"}) {
		t.Errorf("unexpected params %#v", w.Params)
	}
	if w.SQL() != " WHERE _id IN (?, ?)" {
		t.Errorf("unexpected SQL %q", w.SQL())
	}
}

func TestBuildWhere_Order(t *testing.T) {
	w := BuildWhere([]string{"id1"}, Eq("lang", "en"), Contains("vector"))

	want := "_id IN (?) AND JSON_EXTRACT(metadata, '$.lang') = ? AND MATCH(document) AGAINST (? IN NATURAL LANGUAGE MODE)"
	if w.Clause != want {
		t.Errorf("got  %q\nwant %q", w.Clause, want)
	}
	if !reflect.DeepEqual(w.Params, []any{"id1", "en", "vector"}) {
		t.Errorf("params must follow clause order, got %#v", w.Params)
	}
}

func TestBuildWhere_FiltersWithoutIDs(t *testing.T) {
	w := BuildWhere(nil, Gt("year", 2000), Regex("^a"))
	want := "JSON_EXTRACT(metadata, '$.year') > ? AND document REGEXP ?"
	if w.Clause != want {
		t.Errorf("got %q, want %q", w.Clause, want)
	}
	if !reflect.DeepEqual(w.Params, []any{int64(2000), "^a"}) {
		t.Errorf("unexpected params %#v", w.Params)
	}
}
