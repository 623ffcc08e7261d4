package seekdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// HybridQuery is the full-text and scalar branch of an advanced hybrid search.
type HybridQuery struct {
	Where         Filter
	WhereDocument DocFilter
}

// HybridKNN is the vector branch of an advanced hybrid search. QueryEmbeddings
// takes precedence over QueryTexts; only the first entry is sent to the
// engine.
type HybridKNN struct {
	QueryTexts      []string
	QueryEmbeddings []Embedding
	Where           Filter
	// NResults is the k of the vector branch. Nil means 10.
	NResults *uint32
}

// HybridRank selects how the engine fuses the branches of a hybrid search.
type HybridRank interface {
	rankValue() (any, error)
}

// RRF is Reciprocal Rank Fusion. Nil fields are left to the engine default.
type RRF struct {
	RankWindowSize *uint32
	RankConstant   *uint32
}

// RawRank passes a rank document to the engine unchanged.
type RawRank json.RawMessage

func (r RRF) rankValue() (any, error) {
	inner := map[string]any{}
	if r.RankWindowSize != nil {
		inner["rank_window_size"] = *r.RankWindowSize
	}
	if r.RankConstant != nil {
		inner["rank_constant"] = *r.RankConstant
	}
	return map[string]any{"rrf": inner}, nil
}

func (r RawRank) rankValue() (any, error) {
	if !json.Valid(r) {
		return nil, serializationError(nil, "raw rank is not valid JSON")
	}
	return json.RawMessage(r), nil
}

// searchParm is the document DBMS_HYBRID_SEARCH.GET_SQL turns into SQL.
type searchParm struct {
	Query any      `json:"query,omitempty"`
	KNN   *knnExpr `json:"knn,omitempty"`
	Rank  any      `json:"rank,omitempty"`
	Size  *uint32  `json:"size,omitempty"`
}

type knnExpr struct {
	Field       string    `json:"field"`
	K           uint32    `json:"k"`
	QueryVector Embedding `json:"query_vector"`
	Filter      []any     `json:"filter,omitempty"`
}

func (p searchParm) empty() bool {
	return p.Query == nil && p.KNN == nil && p.Rank == nil
}

func (p searchParm) marshal() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", serializationError(err, "encoding search_parm")
	}
	return string(data), nil
}

// buildSearchParm builds the document of a simple hybrid search: the
// filters become the query branch and the first query text, embedded, the
// vector branch. The returned string is empty when there is nothing to send.
func (c *Collection) buildSearchParm(ctx context.Context, queries []string, where Filter, whereDocument DocFilter, nResults uint32) (string, error) {
	if err := validateSelectors(where, whereDocument); err != nil {
		return "", err
	}
	nResults = nResultsOrDefault(nResults)
	conditions := metadataConditions(where)
	docQuery := documentQuery(whereDocument)

	var p searchParm
	switch {
	case docQuery != nil && len(conditions) > 0:
		p.Query = boolQuery("must", []any{docQuery}, "filter", conditions)
	case docQuery != nil:
		p.Query = docQuery
	case len(conditions) > 0:
		p.Query = boolQuery("filter", conditions)
	}

	if len(queries) > 0 {
		if c.embeddingFunction == nil {
			return "", embeddingError(nil, "hybrid search with query texts needs an embedding function on collection %q; pass search params with a query_vector instead", c.name)
		}
		vector, err := c.embedFirst(ctx, queries[0])
		if err != nil {
			return "", err
		}
		p.KNN = &knnExpr{Field: ColumnEmbedding, K: nResults, QueryVector: vector, Filter: conditions}
	}

	if p.empty() {
		return "", nil
	}
	p.Size = &nResults
	return p.marshal()
}

// buildAdvancedSearchParm builds the document of an advanced hybrid search.
func (c *Collection) buildAdvancedSearchParm(ctx context.Context, req AdvancedSearchRequest) (string, error) {
	var p searchParm
	if req.Query != nil {
		if err := validateSelectors(req.Query.Where, req.Query.WhereDocument); err != nil {
			return "", err
		}
		p.Query = advancedQueryExpr(req.Query)
	}
	if req.KNN != nil {
		knn, err := c.knnExpr(ctx, req.KNN)
		if err != nil {
			return "", err
		}
		p.KNN = knn
	}
	if req.Rank != nil {
		rank, err := req.Rank.rankValue()
		if err != nil {
			return "", err
		}
		p.Rank = rank
	}

	if p.empty() {
		return "", nil
	}
	n := nResultsOrDefault(req.NResults)
	p.Size = &n
	return p.marshal()
}

// advancedQueryExpr renders the query branch. A lone range or term condition
// is sent unwrapped.
func advancedQueryExpr(q *HybridQuery) any {
	conditions := metadataConditions(q.Where)

	if q.WhereDocument == nil {
		switch len(conditions) {
		case 0:
			return nil
		case 1:
			if m, ok := conditions[0].(map[string]any); ok {
				if _, isRange := m["range"]; isRange {
					return m
				}
				if _, isTerm := m["term"]; isTerm {
					return m
				}
			}
		}
		return boolQuery("filter", conditions)
	}

	docQuery := documentQuery(q.WhereDocument)
	if docQuery == nil {
		return nil
	}
	if len(conditions) == 0 {
		return docQuery
	}
	return boolQuery("must", []any{docQuery}, "filter", conditions)
}

func (c *Collection) knnExpr(ctx context.Context, knn *HybridKNN) (*knnExpr, error) {
	if err := ValidateFilter(knn.Where); err != nil {
		return nil, err
	}
	k := uint32(defaultNResults)
	if knn.NResults != nil {
		k = *knn.NResults
	}
	expr := &knnExpr{Field: ColumnEmbedding, K: k, Filter: metadataConditions(knn.Where)}

	switch {
	case knn.QueryEmbeddings != nil:
		if len(knn.QueryEmbeddings) == 0 {
			return nil, invalidInput("knn query embeddings must not be empty")
		}
		if err := c.validateVectors(1, knn.QueryEmbeddings[:1]); err != nil {
			return nil, err
		}
		expr.QueryVector = knn.QueryEmbeddings[0]
	case knn.QueryTexts != nil:
		if len(knn.QueryTexts) == 0 {
			return nil, invalidInput("knn query texts must not be empty")
		}
		if c.embeddingFunction == nil {
			return nil, embeddingError(nil, "knn query texts given but collection %q has no embedding function", c.name)
		}
		vector, err := c.embedFirst(ctx, knn.QueryTexts[0])
		if err != nil {
			return nil, err
		}
		expr.QueryVector = vector
	default:
		return nil, invalidInput("knn needs query embeddings or query texts")
	}
	return expr, nil
}

// embedFirst embeds a single text and checks the result dimension.
func (c *Collection) embedFirst(ctx context.Context, text string) (Embedding, error) {
	vectors, err := embedDocuments(ctx, c.embeddingFunction, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, invalidInput("embedding function returned no vector")
	}
	if err := c.validateVectors(1, vectors[:1]); err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// metadataConditions translates a metadata filter into search_parm filter
// clauses. Compositions without any condition vanish.
func metadataConditions(f Filter) []any {
	switch t := f.(type) {
	case nil:
		return nil
	case CompareCondition:
		path := searchPath(t.Field)
		switch t.Op {
		case OpEq:
			return []any{term(path, t.Value)}
		case OpNe:
			return []any{boolQuery("must_not", []any{term(path, t.Value)})}
		default:
			return []any{map[string]any{"range": map[string]any{path: map[string]any{rangeOperator(t.Op): t.Value}}}}
		}
	case InCondition:
		terms := map[string]any{"terms": map[string]any{searchPath(t.Field): nonNilValues(t.Values)}}
		if t.Negate {
			return []any{boolQuery("must_not", []any{terms})}
		}
		return []any{terms}
	case AndFilter:
		return compositeCondition("must", t.Filters)
	case OrFilter:
		return compositeCondition("should", t.Filters)
	case NotFilter:
		sub := metadataConditions(t.Filter)
		if len(sub) == 0 {
			return nil
		}
		return []any{boolQuery("must_not", sub)}
	default:
		panic("seekdb: unknown filter type")
	}
}

func compositeCondition(occur string, children []Filter) []any {
	var parts []any
	for _, child := range children {
		sub := metadataConditions(child)
		switch len(sub) {
		case 0:
		case 1:
			parts = append(parts, sub[0])
		default:
			parts = append(parts, boolQuery("must", sub))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return []any{boolQuery(occur, parts)}
}

// documentQuery translates a document filter into a query_string clause.
// Regex has no search_parm form and is dropped; composites keep only their
// direct Contains children.
func documentQuery(f DocFilter) map[string]any {
	var text string
	switch t := f.(type) {
	case ContainsCondition:
		text = t.Text
	case DocAndFilter:
		text = strings.Join(containedTexts(t.Filters), " ")
	case DocOrFilter:
		text = strings.Join(containedTexts(t.Filters), " OR ")
	default:
		return nil
	}
	if text == "" {
		return nil
	}
	return map[string]any{"query_string": map[string]any{
		"fields": []string{ColumnDocument},
		"query":  text,
	}}
}

func containedTexts(filters []DocFilter) []string {
	var texts []string
	for _, f := range filters {
		if c, ok := f.(ContainsCondition); ok {
			texts = append(texts, c.Text)
		}
	}
	return texts
}

func searchPath(field string) string {
	return "(" + metadataExpr(field) + ")"
}

func term(path string, value any) map[string]any {
	return map[string]any{"term": map[string]any{path: value}}
}

// boolQuery builds {"bool": {occur: clauses, ...}} from occur/clauses pairs.
func boolQuery(pairs ...any) map[string]any {
	inner := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		inner[pairs[i].(string)] = pairs[i+1]
	}
	return map[string]any{"bool": inner}
}

func rangeOperator(op Operator) string {
	switch op {
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	default:
		panic(fmt.Sprintf("seekdb: %q is not a range operator", op))
	}
}

func nonNilValues(values []any) []any {
	if values == nil {
		return []any{}
	}
	return values
}
