package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/Aleph-Alpha/seekdb/v1/logger"
	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
	"github.com/Aleph-Alpha/seekdb/v1/tracer"
)

const docsTable = "c$v1$docs"

// scriptedBackend answers the schema queries of a three-dimensional L2
// collection named "docs" and records every statement.
type scriptedBackend struct {
	mu      sync.Mutex
	execs   []string
	queries []string
	onQuery func(query string, args []any) ([]seekdb.Row, error)
}

func (b *scriptedBackend) Exec(_ context.Context, query string, _ []any) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.execs = append(b.execs, query)
	return 1, nil
}

func (b *scriptedBackend) Query(_ context.Context, query string, args []any) ([]seekdb.Row, error) {
	b.mu.Lock()
	b.queries = append(b.queries, query)
	b.mu.Unlock()

	switch {
	case strings.HasPrefix(query, "DESCRIBE `"+docsTable+"`"):
		cols := []string{"Field", "Type", "Null", "Key"}
		return []seekdb.Row{
			seekdb.NewRow(cols, []any{"_id", "varbinary(512)", "NO", "PRI"}),
			seekdb.NewRow(cols, []any{"embedding", "VECTOR(3)", "YES", ""}),
		}, nil
	case strings.HasPrefix(query, "SHOW CREATE TABLE `"+docsTable+"`"):
		return []seekdb.Row{seekdb.NewRow([]string{"Table", "Create Table"},
			[]any{docsTable, seekdb.CreateTableSQL(docsTable, 3, seekdb.L2)})}, nil
	case strings.HasPrefix(query, "DESCRIBE"):
		return nil, seekdb.NewError(seekdb.CategoryNotFound, nil, "table does not exist")
	}
	if b.onQuery != nil {
		return b.onQuery(query, args)
	}
	return nil, nil
}

func (b *scriptedBackend) execsMatching(substr string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, q := range b.execs {
		if strings.Contains(q, substr) {
			out = append(out, q)
		}
	}
	return out
}

func testOpen(t *testing.T, backend seekdb.Backend) openFunc {
	return func(ctx context.Context, cfg *Config, opts runtimeOptions) (*runtime, error) {
		tr, err := tracer.NewClient(tracer.Config{ServiceName: "seekdb-cli-test"}, nil)
		require.NoError(t, err)
		zl := zaptest.NewLogger(t)
		client, err := seekdb.NewClient(backend,
			seekdb.WithLogger(zl),
			seekdb.WithTracerProvider(tr.Provider()),
			seekdb.WithMaxConcurrentQueries(cfg.Client.MaxConcurrentQueries),
		)
		require.NoError(t, err)
		return &runtime{
			client: client,
			logger: &logger.Logger{Zap: zl},
			tracer: tr,
			stop:   tr.Shutdown,
		}, nil
	}
}

func execute(t *testing.T, open openFunc, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SEEKDB_CONFIG", "")
	t.Setenv("EMBEDDING_ENDPOINT", "")

	var out bytes.Buffer
	c := newCLI(&out)
	c.open = open
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func failOpen(t *testing.T) openFunc {
	return func(context.Context, *Config, runtimeOptions) (*runtime, error) {
		t.Fatal("runtime must not be opened")
		return nil, nil
	}
}

func TestCollectionsList(t *testing.T) {
	backend := &scriptedBackend{onQuery: func(query string, _ []any) ([]seekdb.Row, error) {
		col := []string{"Tables_in_test"}
		return []seekdb.Row{
			seekdb.NewRow(col, []any{"c$v1$alpha"}),
			seekdb.NewRow(col, []any{"c$v1$beta"}),
		}, nil
	}}

	out, err := execute(t, testOpen(t, backend), "collections", "list")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", out)
}

func TestCollectionsCreate(t *testing.T) {
	backend := &scriptedBackend{}

	out, err := execute(t, testOpen(t, backend), "collections", "create", "docs", "--dimension", "3", "--distance", "cosine")
	require.NoError(t, err)
	assert.Equal(t, "collection docs ready (dimension 3, distance cosine)\n", out)
	require.Len(t, backend.execsMatching("CREATE TABLE"), 1)
	assert.Contains(t, backend.execsMatching("CREATE TABLE")[0], "distance=cosine")
}

func TestCollectionsCreateUnknownDistance(t *testing.T) {
	_, err := execute(t, failOpen(t), "collections", "create", "docs", "--dimension", "3", "--distance", "manhattan")
	assert.ErrorIs(t, err, seekdb.ErrConfig)
}

func TestCollectionsInfo(t *testing.T) {
	backend := &scriptedBackend{onQuery: func(query string, _ []any) ([]seekdb.Row, error) {
		if strings.HasPrefix(query, "SELECT COUNT(*)") {
			return []seekdb.Row{seekdb.NewRow([]string{"cnt"}, []any{int64(7)})}, nil
		}
		return nil, nil
	}}

	out, err := execute(t, testOpen(t, backend), "collections", "info", "docs")
	require.NoError(t, err)

	var info collectionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, collectionInfo{Name: "docs", Table: docsTable, Dimension: 3, Distance: seekdb.L2, Count: 7}, info)
}

func TestAddGeneratesIDs(t *testing.T) {
	backend := &scriptedBackend{}

	out, err := execute(t, testOpen(t, backend), "add", "docs",
		"--embedding", "1,2,3", "--embedding", "[4, 5, 6]",
		"--document", "first", "--document", "second",
		"--metadata", `{"lang":"en"}`, "--metadata", `{"lang":"de"}`)
	require.NoError(t, err)

	assert.Len(t, backend.execsMatching("INSERT INTO `"+docsTable+"`"), 2)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		_, err := uuid.Parse(line)
		assert.NoError(t, err, "generated id %q", line)
	}
}

func TestAddWithoutEmbeddingFunction(t *testing.T) {
	backend := &scriptedBackend{}

	_, err := execute(t, testOpen(t, backend), "add", "docs", "--id", "a", "--document", "text only")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)
	assert.Empty(t, backend.execsMatching("INSERT"))
}

func TestUpdateRequiresIDs(t *testing.T) {
	_, err := execute(t, failOpen(t), "update", "docs", "--document", "x")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)
}

func TestDeleteWithoutSelector(t *testing.T) {
	backend := &scriptedBackend{}

	_, err := execute(t, testOpen(t, backend), "delete", "docs")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)
	assert.Empty(t, backend.execsMatching("DELETE"))
}

func TestDeleteByFilter(t *testing.T) {
	backend := &scriptedBackend{}

	out, err := execute(t, testOpen(t, backend), "delete", "docs", "--where", `{"lang":"en"}`)
	require.NoError(t, err)
	assert.Equal(t, "1 records deleted\n", out)
	require.Len(t, backend.execsMatching("DELETE FROM `"+docsTable+"`"), 1)
}

func TestQueryPrintsResult(t *testing.T) {
	backend := &scriptedBackend{onQuery: func(query string, _ []any) ([]seekdb.Row, error) {
		if strings.Contains(query, "l2_distance(embedding, '[1,0,0]')") {
			cols := []string{"_id", "document", "metadata", "distance"}
			return []seekdb.Row{
				seekdb.NewRow(cols, []any{[]byte("a"), "alpha", `{"lang":"en"}`, float64(0.5)}),
			}, nil
		}
		return nil, nil
	}}

	out, err := execute(t, testOpen(t, backend), "query", "docs", "--embedding", "1,0,0", "-n", "3")
	require.NoError(t, err)

	var res seekdb.QueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, [][]string{{"a"}}, res.IDs)
	assert.Equal(t, [][]string{{"alpha"}}, res.Documents)
	assert.Equal(t, [][]float32{{0.5}}, res.Distances)
	assert.Equal(t, "en", res.Metadatas[0][0]["lang"])
}

func TestQueryFlagConflicts(t *testing.T) {
	_, err := execute(t, failOpen(t), "query", "docs", "--text", "x", "--embedding", "1,2,3")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)

	_, err = execute(t, failOpen(t), "query", "docs", "--embedding", "1,x")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)

	_, err = execute(t, failOpen(t), "query", "docs", "--embedding", "1,2,3", "--include", "distances")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)

	_, err = execute(t, failOpen(t), "query", "docs", "--embedding", "1,2,3", "--where", `{"a":`)
	assert.ErrorIs(t, err, seekdb.ErrSerialization)
}

func TestHybridFlagConflicts(t *testing.T) {
	_, err := execute(t, failOpen(t), "hybrid", "docs", "--query", "x", "--rrf")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)

	_, err = execute(t, failOpen(t), "hybrid", "docs", "--search-params", "{not json")
	assert.ErrorIs(t, err, seekdb.ErrSerialization)
}

func TestHybridAdvancedKNNOnly(t *testing.T) {
	backend := &scriptedBackend{onQuery: func(query string, _ []any) ([]seekdb.Row, error) {
		if strings.Contains(query, "GET_SQL") {
			t.Errorf("knn-only search must not call the engine: %s", query)
		}
		if strings.Contains(query, "l2_distance") {
			cols := []string{"_id", "distance"}
			return []seekdb.Row{seekdb.NewRow(cols, []any{"a", float64(0.1)})}, nil
		}
		return nil, nil
	}}

	out, err := execute(t, testOpen(t, backend), "hybrid", "docs", "--knn-embedding", "1,2,3", "--knn-k", "2", "--include", "")
	require.NoError(t, err)

	var res seekdb.QueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, [][]string{{"a"}}, res.IDs)
}

func TestDatabasesList(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := seekdb.NewMockBackend(ctrl)
	cols := []string{"SCHEMA_NAME", "DEFAULT_CHARACTER_SET_NAME", "DEFAULT_COLLATION_NAME"}
	backend.EXPECT().
		Query(gomock.Any(), "SELECT SCHEMA_NAME, DEFAULT_CHARACTER_SET_NAME, DEFAULT_COLLATION_NAME FROM information_schema.SCHEMATA LIMIT 1 OFFSET 2", gomock.Any()).
		Return([]seekdb.Row{seekdb.NewRow(cols, []any{"test", "utf8mb4", "utf8mb4_bin"})}, nil)

	out, err := execute(t, testOpen(t, backend), "databases", "list", "--limit", "1", "--offset", "2")
	require.NoError(t, err)

	var dbs []seekdb.Database
	require.NoError(t, json.Unmarshal([]byte(out), &dbs))
	assert.Equal(t, []seekdb.Database{{Name: "test", Tenant: "sys", Charset: "utf8mb4", Collation: "utf8mb4_bin"}}, dbs)
}

func TestMonitorRejectsZeroInterval(t *testing.T) {
	_, err := execute(t, failOpen(t), "monitor", "--interval", "0s")
	assert.ErrorIs(t, err, seekdb.ErrInvalidInput)
}
