package seekdb

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// HybridSearchRequest describes a hybrid search driven by query texts and filters.
type HybridSearchRequest struct {
	Queries []string
	// SearchParams, when set, is sent to the engine verbatim and every other
	// field except Include is ignored.
	SearchParams  json.RawMessage
	Where         Filter
	WhereDocument DocFilter
	NResults      uint32
	Include       []IncludeField
}

// AdvancedSearchRequest describes a hybrid search built from typed branches.
// At least one of Query, KNN and Rank must be set.
type AdvancedSearchRequest struct {
	Query    *HybridQuery
	KNN      *HybridKNN
	Rank     HybridRank
	NResults uint32
	Include  []IncludeField
}

// HybridSearch combines vector similarity with full-text and metadata
// filtering in the engine. Without search params or filters it is a plain
// text query.
func (c *Collection) HybridSearch(ctx context.Context, req HybridSearchRequest) (result *QueryResult, err error) {
	ctx, op := c.client.startOperation(ctx, "hybrid_search", c.name)
	defer func() { op.end(err, resultSize(result)) }()

	if req.SearchParams == nil && req.Where == nil && req.WhereDocument == nil && len(req.Queries) > 0 {
		op.set("path", "query_texts")
		return c.QueryTexts(ctx, QueryRequest{Texts: req.Queries, NResults: req.NResults, Include: req.Include})
	}

	var parm string
	if req.SearchParams != nil {
		if !json.Valid(req.SearchParams) {
			return nil, serializationError(nil, "search params are not valid JSON")
		}
		parm = string(req.SearchParams)
	} else {
		parm, err = c.buildSearchParm(ctx, req.Queries, req.Where, req.WhereDocument, req.NResults)
		if err != nil {
			return nil, err
		}
	}
	if parm == "" {
		return nil, invalidInput("hybrid search needs queries, filters or search params")
	}

	op.set("path", "engine")
	return c.executeHybridSearch(ctx, parm, resolveInclude(req.Include))
}

// HybridSearchAdvanced runs a hybrid search from typed query, knn and rank
// branches. A knn-only request is answered by a vector query without the
// engine's hybrid facility. When the engine rejects the request as an
// invalid argument the search is retried client-side with the merged
// filters; the rank branch is not applied in that case.
func (c *Collection) HybridSearchAdvanced(ctx context.Context, req AdvancedSearchRequest) (result *QueryResult, err error) {
	ctx, op := c.client.startOperation(ctx, "hybrid_search_advanced", c.name)
	defer func() { op.end(err, resultSize(result)) }()

	if req.Query == nil && req.KNN == nil && req.Rank == nil {
		return nil, invalidInput("hybrid search needs at least one of query, knn or rank")
	}
	if req.KNN != nil && req.KNN.QueryEmbeddings == nil && req.KNN.QueryTexts == nil {
		return nil, invalidInput("knn needs query embeddings or query texts")
	}

	if req.Query == nil && req.Rank == nil {
		op.set("path", "knn_only")
		return c.searchKNN(ctx, req.KNN, nil, nil, req.NResults, req.Include)
	}

	parm, err := c.buildAdvancedSearchParm(ctx, req)
	if err != nil {
		return nil, err
	}
	if parm == "" {
		return nil, invalidInput("hybrid search request produced no search parameters")
	}

	result, err = c.executeHybridSearch(ctx, parm, resolveInclude(req.Include))
	if err == nil {
		op.set("path", "engine")
		return result, nil
	}
	if !IsHybridInvalidArgument(err) {
		return nil, err
	}

	c.client.logger.Warn("hybrid search rejected by engine, falling back to client-side search",
		logFields(c, zap.Error(err))...)
	op.set("path", "fallback")
	op.set("fallback", true)
	return c.hybridFallback(ctx, req)
}

func (c *Collection) hybridFallback(ctx context.Context, req AdvancedSearchRequest) (*QueryResult, error) {
	var (
		where         Filter
		whereDocument DocFilter
	)
	if req.Query != nil {
		where = req.Query.Where
		whereDocument = req.Query.WhereDocument
	}

	if req.KNN != nil {
		return c.searchKNN(ctx, req.KNN, where, whereDocument, req.NResults, req.Include)
	}

	got, err := c.get(ctx, GetRequest{
		Where:         where,
		WhereDocument: whereDocument,
		Limit:         ptr(nResultsOrDefault(req.NResults)),
		Offset:        ptr(uint32(0)),
		Include:       req.Include,
	})
	if err != nil {
		return nil, err
	}
	return got.asQueryResult(), nil
}

// searchKNN answers the vector branch with a regular query. where is
// AND-merged with the branch's own filter.
func (c *Collection) searchKNN(ctx context.Context, knn *HybridKNN, where Filter, whereDocument DocFilter, nResults uint32, include []IncludeField) (*QueryResult, error) {
	req := QueryRequest{
		NResults:      nResults,
		Where:         combineFilters(where, knn.Where),
		WhereDocument: whereDocument,
		Include:       include,
	}
	switch {
	case knn.QueryEmbeddings != nil:
		req.Embeddings = knn.QueryEmbeddings
		return c.QueryEmbeddings(ctx, req)
	case knn.QueryTexts != nil:
		req.Texts = knn.QueryTexts
		return c.QueryTexts(ctx, req)
	default:
		return nil, invalidInput("knn needs query embeddings or query texts")
	}
}

// executeHybridSearch asks the engine for the SQL of parm and runs it. Table
// name and document are bound in a single statement, so no session variable
// has to survive between pooled connections.
func (c *Collection) executeHybridSearch(ctx context.Context, parm string, include includeSet) (*QueryResult, error) {
	c.client.logger.Debug("hybrid search_parm", logFields(c, zap.String("search_parm", parm))...)

	rows, err := c.client.query(ctx,
		"SELECT DBMS_HYBRID_SEARCH.GET_SQL(?, ?) AS query_sql FROM dual",
		[]any{TableName(c.name), parm})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return emptyQueryResult(include), nil
	}

	generated, ok := rows[0].String("query_sql")
	if !ok {
		generated, _ = rows[0].StringAt(0)
	}
	generated = strings.Trim(generated, `'"`)
	if generated == "" {
		return emptyQueryResult(include), nil
	}

	hits, err := c.client.query(ctx, generated, nil)
	if err != nil {
		return nil, err
	}

	result := newQueryResult(include, 1)
	result.appendRow(decodeRows(hits, include), hybridDistances(hits))
	return result, nil
}

// hybridDistances reads the score of each generated-SQL row. Engine versions
// name the column differently; rows without one score 0.
func hybridDistances(rows []Row) []float32 {
	out := make([]float32, len(rows))
	for i, row := range rows {
		for _, col := range []string{"distance", "_distance", "_score", "score"} {
			if d, ok := row.Float32(col); ok {
				out[i] = d
				break
			}
		}
	}
	return out
}

func emptyQueryResult(include includeSet) *QueryResult {
	result := newQueryResult(include, 1)
	result.appendRow(decodeRows(nil, include), []float32{})
	return result
}
