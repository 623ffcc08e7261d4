package seekdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxLimit is the LIMIT used when only an offset is requested; MySQL syntax
// has no OFFSET without LIMIT.
const maxLimit = "18446744073709551615"

// nResultsOrDefault maps an unset result count to defaultNResults.
func nResultsOrDefault(n uint32) uint32 {
	if n == 0 {
		return defaultNResults
	}
	return n
}

// QueryRequest describes a ranked vector search. QueryEmbeddings reads
// Embeddings; QueryTexts reads Texts.
type QueryRequest struct {
	Embeddings    []Embedding
	Texts         []string
	NResults      uint32
	Where         Filter
	WhereDocument DocFilter
	// Include selects the optional result fields. Nil means documents and
	// metadatas; distances are always returned.
	Include []IncludeField
}

// GetRequest describes an unranked filtered read.
type GetRequest struct {
	IDs           []string
	Where         Filter
	WhereDocument DocFilter
	Limit         *uint32
	Offset        *uint32
	Include       []IncludeField
}

// QueryEmbeddings runs one nearest-neighbour search per query vector and
// returns the hits in query order. Searches run concurrently, bounded by
// WithMaxConcurrentQueries.
func (c *Collection) QueryEmbeddings(ctx context.Context, req QueryRequest) (result *QueryResult, err error) {
	ctx, op := c.client.startOperation(ctx, "query_embeddings", c.name)
	defer func() { op.end(err, resultSize(result)) }()

	if len(req.Embeddings) == 0 {
		return nil, invalidInput("query embeddings must not be empty")
	}
	if err = c.validateVectors(len(req.Embeddings), req.Embeddings); err != nil {
		return nil, err
	}
	op.set("queries", len(req.Embeddings))
	return c.queryEmbeddings(ctx, req)
}

// QueryTexts embeds req.Texts with the collection's embedding function and
// searches with the resulting vectors.
func (c *Collection) QueryTexts(ctx context.Context, req QueryRequest) (result *QueryResult, err error) {
	ctx, op := c.client.startOperation(ctx, "query_texts", c.name)
	defer func() { op.end(err, resultSize(result)) }()

	if len(req.Texts) == 0 {
		return nil, invalidInput("query texts must not be empty")
	}
	vectors, err := c.resolveEmbeddings(ctx, len(req.Texts), nil, req.Texts, policyQuery)
	if err != nil {
		return nil, err
	}
	req.Embeddings = vectors
	op.set("queries", len(vectors))
	return c.queryEmbeddings(ctx, req)
}

func (c *Collection) queryEmbeddings(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	if err := validateSelectors(req.Where, req.WhereDocument); err != nil {
		return nil, err
	}
	k := nResultsOrDefault(req.NResults)
	include := resolveInclude(req.Include)
	where := BuildWhere(nil, req.Where, req.WhereDocument)
	fn := c.distance.sqlFunction()
	columns := selectColumns(include)

	hits := make([]*GetResult, len(req.Embeddings))
	distances := make([][]float32, len(req.Embeddings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.client.maxConcurrentQueries)
	for i, vector := range req.Embeddings {
		g.Go(func() error {
			literal := sqlStringLiteral(FormatVector(vector))
			query := fmt.Sprintf("SELECT %s, %s(%s, %s) AS distance FROM %s%s ORDER BY %s(%s, %s) LIMIT %d",
				columns, fn, ColumnEmbedding, literal, c.table(), where.SQL(), fn, ColumnEmbedding, literal, k)

			rows, err := c.client.query(gctx, query, where.Params)
			if err != nil {
				return err
			}
			hits[i] = decodeRows(rows, include)
			distances[i] = make([]float32, len(rows))
			for j, row := range rows {
				distances[i][j], _ = row.Float32("distance")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := newQueryResult(include, len(hits))
	for i, h := range hits {
		result.appendRow(h, distances[i])
	}
	return result, nil
}

// Get reads records matching the request without ranking.
func (c *Collection) Get(ctx context.Context, req GetRequest) (result *GetResult, err error) {
	ctx, op := c.client.startOperation(ctx, "get", c.name)
	defer func() {
		var size int64
		if result != nil {
			size = int64(len(result.IDs))
		}
		op.end(err, size)
	}()

	return c.get(ctx, req)
}

func (c *Collection) get(ctx context.Context, req GetRequest) (*GetResult, error) {
	if err := validateSelectors(req.Where, req.WhereDocument); err != nil {
		return nil, err
	}
	include := resolveInclude(req.Include)
	where := BuildWhere(req.IDs, req.Where, req.WhereDocument)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s", selectColumns(include), c.table(), where.SQL())
	if req.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *req.Limit)
	}
	if req.Offset != nil {
		if req.Limit == nil {
			b.WriteString(" LIMIT " + maxLimit)
		}
		fmt.Fprintf(&b, " OFFSET %d", *req.Offset)
	}

	rows, err := c.client.query(ctx, b.String(), where.Params)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows, include), nil
}

// Count returns the number of records in the collection.
func (c *Collection) Count(ctx context.Context) (count uint64, err error) {
	ctx, op := c.client.startOperation(ctx, "count", c.name)
	defer func() { op.end(err, int64(count)) }()

	rows, err := c.client.query(ctx, "SELECT COUNT(*) AS cnt FROM "+c.table(), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, ok := rows[0].Int64("cnt")
	if !ok || n < 0 {
		return 0, nil
	}
	return uint64(n), nil
}

// Peek returns the first limit records with every field included.
func (c *Collection) Peek(ctx context.Context, limit uint32) (*GetResult, error) {
	return c.Get(ctx, GetRequest{Limit: &limit, Offset: ptr(uint32(0)), Include: IncludeAll})
}

// selectColumns lists the columns read for include. Metadata is cast so the
// driver returns its JSON text.
func selectColumns(include includeSet) string {
	cols := []string{ColumnID}
	if include.documents {
		cols = append(cols, ColumnDocument)
	}
	if include.metadatas {
		cols = append(cols, "CAST("+ColumnMetadata+" AS CHAR) AS "+ColumnMetadata)
	}
	if include.embeddings {
		cols = append(cols, ColumnEmbedding)
	}
	return strings.Join(cols, ", ")
}

// decodeRows converts result rows into a GetResult shaped by include.
func decodeRows(rows []Row, include includeSet) *GetResult {
	r := &GetResult{IDs: make([]string, 0, len(rows))}
	if include.documents {
		r.Documents = make([]string, 0, len(rows))
	}
	if include.metadatas {
		r.Metadatas = make([]Metadata, 0, len(rows))
	}
	if include.embeddings {
		r.Embeddings = make([]Embedding, 0, len(rows))
	}

	for _, row := range rows {
		r.IDs = append(r.IDs, rowID(row))
		if include.documents {
			doc, _ := row.String(ColumnDocument)
			r.Documents = append(r.Documents, doc)
		}
		if include.metadatas {
			r.Metadatas = append(r.Metadatas, rowMetadata(row))
		}
		if include.embeddings {
			r.Embeddings = append(r.Embeddings, rowEmbedding(row))
		}
	}
	return r
}

func rowID(row Row) string {
	if b, ok := row.Bytes(ColumnID); ok {
		return string(b)
	}
	id, _ := row.String(ColumnID)
	return id
}

// rowMetadata decodes the metadata column. NULL, JSON null and undecodable
// values yield nil.
func rowMetadata(row Row) Metadata {
	text, ok := row.String(ColumnMetadata)
	if !ok || text == "" {
		return nil
	}
	var m Metadata
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil
	}
	return m
}

func rowEmbedding(row Row) Embedding {
	for _, col := range []string{ColumnEmbedding, "_" + ColumnEmbedding} {
		if text, ok := row.String(col); ok {
			return ParseVector(text)
		}
	}
	return Embedding{}
}

func newQueryResult(include includeSet, capacity int) *QueryResult {
	r := &QueryResult{
		IDs:       make([][]string, 0, capacity),
		Distances: make([][]float32, 0, capacity),
	}
	if include.documents {
		r.Documents = make([][]string, 0, capacity)
	}
	if include.metadatas {
		r.Metadatas = make([][]Metadata, 0, capacity)
	}
	if include.embeddings {
		r.Embeddings = make([][]Embedding, 0, capacity)
	}
	return r
}

// appendRow adds one query row. Fields absent from the result are skipped.
func (r *QueryResult) appendRow(hits *GetResult, distances []float32) {
	r.IDs = append(r.IDs, hits.IDs)
	r.Distances = append(r.Distances, distances)
	if r.Documents != nil {
		r.Documents = append(r.Documents, hits.Documents)
	}
	if r.Metadatas != nil {
		r.Metadatas = append(r.Metadatas, hits.Metadatas)
	}
	if r.Embeddings != nil {
		r.Embeddings = append(r.Embeddings, hits.Embeddings)
	}
}

func resultSize(r *QueryResult) int64 {
	if r == nil {
		return 0
	}
	var n int64
	for _, ids := range r.IDs {
		n += int64(len(ids))
	}
	return n
}

func logFields(c *Collection, extra ...zap.Field) []zap.Field {
	return append([]zap.Field{zap.String("collection", c.name)}, extra...)
}
