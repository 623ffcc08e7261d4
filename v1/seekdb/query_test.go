package seekdb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var hitColumns = []string{"_id", "document", "metadata", "distance"}

func TestQueryEmbeddings_EmptyInput(t *testing.T) {
	backend := &fakeBackend{}
	col := newTestCollection(t, backend)

	_, err := col.QueryEmbeddings(context.Background(), QueryRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = col.QueryEmbeddings(context.Background(), QueryRequest{Embeddings: []Embedding{{1, 2}}})
	assert.ErrorIs(t, err, ErrInvalidInput, "dimension mismatch")

	_, err = col.QueryTexts(context.Background(), QueryRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, backend.recorded())
}

func TestQueryTexts_WithoutEmbeddingFunction(t *testing.T) {
	backend := &fakeBackend{}
	col := newTestCollection(t, backend)

	_, err := col.QueryTexts(context.Background(), QueryRequest{Texts: []string{"hello"}})
	assert.ErrorIs(t, err, ErrEmbedding)
	assert.Empty(t, backend.recorded())
}

func TestQueryEmbeddings_SQL(t *testing.T) {
	backend := &fakeBackend{}
	col := newTestCollection(t, backend)

	_, err := col.QueryEmbeddings(context.Background(), QueryRequest{
		Embeddings: []Embedding{{1, 2, 3}},
		NResults:   5,
		Where:      Eq("lang", "en"),
	})
	require.NoError(t, err)

	stmts := backend.recorded()
	require.Len(t, stmts, 1)
	want := "SELECT _id, document, CAST(metadata AS CHAR) AS metadata, l2_distance(embedding, '[1,2,3]') AS distance " +
		"FROM `c$v1$docs` WHERE JSON_EXTRACT(metadata, '$.lang') = ? " +
		"ORDER BY l2_distance(embedding, '[1,2,3]') LIMIT 5"
	assert.Equal(t, want, stmts[0].query)
	assert.Equal(t, []any{"en"}, stmts[0].args)
}

func TestQueryEmbeddings_DefaultLimitAndMetric(t *testing.T) {
	backend := &fakeBackend{}
	col := newCollection(newTestClient(t, backend), "docs", 2, Cosine, collectionOptions{})

	_, err := col.QueryEmbeddings(context.Background(), QueryRequest{
		Embeddings: []Embedding{{0.5, 1}},
		Include:    []IncludeField{IncludeEmbeddings},
	})
	require.NoError(t, err)

	q := backend.recorded()[0].query
	assert.True(t, strings.HasPrefix(q, "SELECT _id, embedding, cosine_distance(embedding, '[0.5,1]') AS distance"), q)
	assert.True(t, strings.HasSuffix(q, " LIMIT 10"), q)
}

func TestQueryEmbeddings_ResultsKeepQueryOrder(t *testing.T) {
	backend := &fakeBackend{onQuery: func(query string, _ []any) ([]Row, error) {
		switch {
		case strings.Contains(query, "'[1,0,0]'"):
			return []Row{
				row(hitColumns, []byte("a"), "doc a", `{"n":1}`, 0.1),
				row(hitColumns, []byte("b"), "doc b", nil, []byte("0.5")),
			}, nil
		case strings.Contains(query, "'[0,1,0]'"):
			return []Row{row(hitColumns, []byte("c"), "doc c", "not json", float32(0.2))}, nil
		default:
			return nil, nil
		}
	}}
	client := newTestClient(t, backend, WithMaxConcurrentQueries(3))
	col := newCollection(client, "docs", 3, L2, collectionOptions{})

	result, err := col.QueryEmbeddings(context.Background(), QueryRequest{
		Embeddings: []Embedding{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	})
	require.NoError(t, err)
	require.NoError(t, result.Validate())

	assert.Equal(t, [][]string{{"a", "b"}, {"c"}, {}}, result.IDs)
	assert.Equal(t, [][]string{{"doc a", "doc b"}, {"doc c"}, {}}, result.Documents)
	assert.Equal(t, [][]Metadata{{{"n": float64(1)}, nil}, {nil}, {}}, result.Metadatas)
	assert.Equal(t, [][]float32{{0.1, 0.5}, {0.2}, {}}, result.Distances)
	assert.Nil(t, result.Embeddings, "embeddings were not requested")
}

func TestQueryEmbeddings_FirstErrorWins(t *testing.T) {
	boom := errors.New("lost connection")
	backend := &fakeBackend{onQuery: func(string, []any) ([]Row, error) {
		return nil, NewError(CategoryConnection, boom, "query")
	}}
	col := newTestCollection(t, backend)

	_, err := col.QueryEmbeddings(context.Background(), QueryRequest{Embeddings: []Embedding{{1, 2, 3}, {4, 5, 6}}})
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, boom)
}

func TestQueryTexts_EmbedsQueries(t *testing.T) {
	ctrl := gomock.NewController(t)
	ef := NewMockEmbeddingFunction(ctrl)
	ef.EXPECT().Embed(gomock.Any(), []string{"vector search"}).Return([]Embedding{{0, 0, 1}}, nil)

	backend := &fakeBackend{}
	col := newTestCollection(t, backend, WithEmbeddingFunction(ef))

	result, err := col.QueryTexts(context.Background(), QueryRequest{Texts: []string{"vector search"}, NResults: 3})
	require.NoError(t, err)
	assert.Len(t, result.IDs, 1)

	stmts := backend.recorded()
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].query, "l2_distance(embedding, '[0,0,1]')")
	assert.Contains(t, stmts[0].query, "LIMIT 3")
}

func TestGet_SQL(t *testing.T) {
	tests := []struct {
		name string
		req  GetRequest
		want string
	}{
		{
			"default include",
			GetRequest{},
			"SELECT _id, document, CAST(metadata AS CHAR) AS metadata FROM `c$v1$docs`",
		},
		{
			"ids with limit and offset",
			GetRequest{IDs: []string{"a"}, Limit: ptr(uint32(5)), Offset: ptr(uint32(10)), Include: []IncludeField{}},
			"SELECT _id FROM `c$v1$docs` WHERE _id IN (?) LIMIT 5 OFFSET 10",
		},
		{
			"offset only",
			GetRequest{Offset: ptr(uint32(3)), Include: []IncludeField{IncludeDocuments}},
			"SELECT _id, document FROM `c$v1$docs` LIMIT 18446744073709551615 OFFSET 3",
		},
		{
			"document filter",
			GetRequest{WhereDocument: Contains("go"), Include: []IncludeField{}},
			"SELECT _id FROM `c$v1$docs` WHERE MATCH(document) AGAINST (? IN NATURAL LANGUAGE MODE)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			col := newTestCollection(t, backend)

			_, err := col.Get(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, backend.recorded()[0].query)
		})
	}
}

func TestPeek_IncludesEverything(t *testing.T) {
	columns := []string{"_id", "document", "metadata", "embedding"}
	backend := &fakeBackend{onQuery: func(string, []any) ([]Row, error) {
		return []Row{
			row(columns, []byte("a"), "doc", `{"k":"v"}`, "[1,2,3]"),
			row(columns, []byte("b"), nil, nil, nil),
		}, nil
	}}
	col := newTestCollection(t, backend)

	got, err := col.Peek(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, "SELECT _id, document, CAST(metadata AS CHAR) AS metadata, embedding FROM `c$v1$docs` LIMIT 2 OFFSET 0",
		backend.recorded()[0].query)
	assert.Equal(t, []string{"a", "b"}, got.IDs)
	assert.Equal(t, []string{"doc", ""}, got.Documents)
	assert.Equal(t, []Metadata{{"k": "v"}, nil}, got.Metadatas)
	assert.Equal(t, []Embedding{{1, 2, 3}, {}}, got.Embeddings)
}

func TestCount(t *testing.T) {
	backend := &fakeBackend{onQuery: func(string, []any) ([]Row, error) {
		return []Row{row([]string{"cnt"}, []byte("42"))}, nil
	}}
	col := newTestCollection(t, backend)

	n, err := col.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
	assert.Equal(t, "SELECT COUNT(*) AS cnt FROM `c$v1$docs`", backend.recorded()[0].query)
}

func TestOperations_RejectUnknownOperator(t *testing.T) {
	bad := CompareCondition{Field: "title", Op: "LIKE", Value: "go%"}
	knn := &HybridKNN{QueryEmbeddings: []Embedding{{1, 2, 3}}}

	tests := []struct {
		name string
		run  func(ctx context.Context, col *Collection) error
	}{
		{"delete", func(ctx context.Context, col *Collection) error {
			_, err := col.Delete(ctx, DeleteRequest{Where: bad})
			return err
		}},
		{"get", func(ctx context.Context, col *Collection) error {
			_, err := col.Get(ctx, GetRequest{Where: And(Eq("a", 1), bad)})
			return err
		}},
		{"query", func(ctx context.Context, col *Collection) error {
			_, err := col.QueryEmbeddings(ctx, QueryRequest{Embeddings: []Embedding{{1, 2, 3}}, Where: Not(bad)})
			return err
		}},
		{"hybrid", func(ctx context.Context, col *Collection) error {
			_, err := col.HybridSearch(ctx, HybridSearchRequest{Where: bad})
			return err
		}},
		{"hybrid advanced query", func(ctx context.Context, col *Collection) error {
			_, err := col.HybridSearchAdvanced(ctx, AdvancedSearchRequest{Query: &HybridQuery{Where: bad}, KNN: knn})
			return err
		}},
		{"hybrid advanced knn", func(ctx context.Context, col *Collection) error {
			_, err := col.HybridSearchAdvanced(ctx, AdvancedSearchRequest{
				Query: &HybridQuery{WhereDocument: Contains("go")},
				KNN:   &HybridKNN{QueryEmbeddings: []Embedding{{1, 2, 3}}, Where: bad},
			})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			col := newTestCollection(t, backend)

			var err error
			require.NotPanics(t, func() { err = tt.run(context.Background(), col) })
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, backend.recorded())
		})
	}

	_, err := MarshalFilter(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
