package seekdb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewClient_NilBackend(t *testing.T) {
	if _, err := NewClient(nil); !errors.Is(err, ErrConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := newTestClient(t, &fakeBackend{})
	if client.Tenant() != "sys" {
		t.Errorf("expected default tenant sys, got %q", client.Tenant())
	}
	if client.maxConcurrentQueries != 4 {
		t.Errorf("expected 4 concurrent queries, got %d", client.maxConcurrentQueries)
	}

	client = newTestClient(t, &fakeBackend{}, WithTenant("acme"), WithMaxConcurrentQueries(0))
	if client.Tenant() != "acme" || client.maxConcurrentQueries != 1 {
		t.Errorf("options not applied: tenant=%q concurrency=%d", client.Tenant(), client.maxConcurrentQueries)
	}
}

func TestCreateCollection(t *testing.T) {
	backend := &fakeBackend{}
	client := newTestClient(t, backend)

	col, err := client.CreateCollection(context.Background(), "docs", HNSWConfig{Dimension: 384, Distance: Cosine},
		WithCollectionID("id-1"), WithCollectionMetadata(Metadata{"owner": "team"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if col.Name() != "docs" || col.Dimension() != 384 || col.Distance() != Cosine {
		t.Errorf("unexpected handle %+v", col)
	}
	if col.ID() != "id-1" || col.Metadata()["owner"] != "team" {
		t.Errorf("collection options not applied: id=%q metadata=%v", col.ID(), col.Metadata())
	}
	if col.TableName() != "c$v1$docs" {
		t.Errorf("unexpected table name %q", col.TableName())
	}

	stmts := backend.recorded()
	if len(stmts) != 1 || !stmts[0].exec {
		t.Fatalf("expected one exec, got %+v", stmts)
	}
	if stmts[0].query != CreateTableSQL("c$v1$docs", 384, Cosine) {
		t.Errorf("unexpected DDL %q", stmts[0].query)
	}
}

func TestCreateCollection_DimensionFromEmbeddingFunction(t *testing.T) {
	ctrl := gomock.NewController(t)
	ef := NewMockEmbeddingFunction(ctrl)
	ef.EXPECT().Dimension().Return(uint32(8)).AnyTimes()

	backend := &fakeBackend{}
	client := newTestClient(t, backend)

	col, err := client.CreateCollection(context.Background(), "docs", HNSWConfig{Distance: L2}, WithEmbeddingFunction(ef))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Dimension() != 8 {
		t.Errorf("expected dimension 8, got %d", col.Dimension())
	}
	if col.EmbeddingFunction() != ef {
		t.Error("embedding function not bound")
	}

	_, err = client.CreateCollection(context.Background(), "docs", HNSWConfig{Dimension: 4, Distance: L2}, WithEmbeddingFunction(ef))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input for mismatched dimension, got %v", err)
	}
	if len(backend.recorded()) != 1 {
		t.Errorf("rejected create must not issue DDL, got %d statements", len(backend.recorded()))
	}
}

func TestCreateCollection_ConfigErrors(t *testing.T) {
	backend := &fakeBackend{}
	client := newTestClient(t, backend)
	ctx := context.Background()

	if _, err := client.CreateCollection(ctx, "docs", HNSWConfig{Distance: L2}); !errors.Is(err, ErrConfig) {
		t.Errorf("missing dimension: expected config error, got %v", err)
	}
	if _, err := client.CreateCollection(ctx, "docs", HNSWConfig{Dimension: 3, Distance: "manhattan"}); !errors.Is(err, ErrConfig) {
		t.Errorf("bad distance: expected config error, got %v", err)
	}
	if _, err := client.CreateCollection(ctx, "bad name", HNSWConfig{Dimension: 3, Distance: L2}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad name: expected invalid input, got %v", err)
	}
	if n := len(backend.recorded()); n != 0 {
		t.Errorf("expected no statements, got %d", n)
	}
}

// schemaBackend serves DESCRIBE and SHOW CREATE TABLE for a single table.
func schemaBackend(table, columnType, ddl string) *fakeBackend {
	return &fakeBackend{onQuery: func(query string, _ []any) ([]Row, error) {
		switch {
		case strings.HasPrefix(query, "DESCRIBE `"+table+"`"):
			cols := []string{"Field", "Type", "Null", "Key"}
			return []Row{
				row(cols, "_id", "varbinary(512)", "NO", "PRI"),
				row(cols, "embedding", columnType, "YES", ""),
			}, nil
		case strings.HasPrefix(query, "SHOW CREATE TABLE `"+table+"`"):
			return []Row{row([]string{"Table", "Create Table"}, table, ddl)}, nil
		case strings.HasPrefix(query, "DESCRIBE"):
			return nil, NewError(CategoryNotFound, nil, "table does not exist")
		}
		return nil, nil
	}}
}

func TestGetCollection_ResolvesSchema(t *testing.T) {
	backend := schemaBackend("c$v1$docs", "VECTOR(16)", CreateTableSQL("c$v1$docs", 16, InnerProduct))
	client := newTestClient(t, backend)

	col, err := client.GetCollection(context.Background(), "docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Dimension() != 16 || col.Distance() != InnerProduct {
		t.Errorf("expected 16/inner_product, got %d/%s", col.Dimension(), col.Distance())
	}
}

func TestGetCollection_Errors(t *testing.T) {
	ctx := context.Background()

	client := newTestClient(t, schemaBackend("c$v1$docs", "vector(16)", CreateTableSQL("c$v1$docs", 16, L2)))
	if _, err := client.GetCollection(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	ctrl := gomock.NewController(t)
	ef := NewMockEmbeddingFunction(ctrl)
	ef.EXPECT().Dimension().Return(uint32(32)).AnyTimes()
	if _, err := client.GetCollection(ctx, "docs", WithEmbeddingFunction(ef)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input for dimension mismatch, got %v", err)
	}

	client = newTestClient(t, schemaBackend("c$v1$docs", "vector(16)", "CREATE TABLE `c$v1$docs` (embedding vector(16))"))
	if _, err := client.GetCollection(ctx, "docs"); !errors.Is(err, ErrConfig) {
		t.Errorf("expected config error for missing distance, got %v", err)
	}
}

func TestListCollections(t *testing.T) {
	backend := &fakeBackend{onQuery: func(query string, _ []any) ([]Row, error) {
		if strings.HasPrefix(query, "SHOW TABLES") {
			return nil, errors.New("SHOW TABLES not supported")
		}
		col := []string{"TABLE_NAME"}
		return []Row{row(col, "c$v1$alpha"), row(col, "c$v1$beta"), row(col, "unrelated")}, nil
	}}
	client := newTestClient(t, backend)

	names, err := client.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("unexpected names %v", names)
	}
	if len(backend.matching("information_schema.TABLES")) != 1 {
		t.Error("expected fallback to information_schema")
	}

	n, err := client.CountCollections(context.Background())
	if err != nil || n != 2 {
		t.Errorf("CountCollections: got %d, %v", n, err)
	}
}

func TestHasCollectionAndGetOrCreate(t *testing.T) {
	exists := false
	backend := &fakeBackend{onQuery: func(query string, args []any) ([]Row, error) {
		if strings.HasPrefix(query, "SELECT 1 FROM information_schema.TABLES") && exists {
			return []Row{row([]string{"1"}, int64(1))}, nil
		}
		return nil, nil
	}}
	client := newTestClient(t, backend)
	ctx := context.Background()

	ok, err := client.HasCollection(ctx, "docs")
	if err != nil || ok {
		t.Fatalf("expected missing collection, got %v, %v", ok, err)
	}
	if args := backend.recorded()[0].args; len(args) != 1 || args[0] != "c$v1$docs" {
		t.Errorf("table name must be bound, got %v", args)
	}

	if _, err := client.GetOrCreateCollection(ctx, "docs", HNSWConfig{Dimension: 3, Distance: L2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.matching("CREATE TABLE")) != 1 {
		t.Error("expected the collection to be created")
	}

	exists = true
	if ok, _ := client.HasCollection(ctx, "docs"); !ok {
		t.Error("expected collection to exist")
	}
}

func TestDeleteCollection(t *testing.T) {
	backend := &fakeBackend{}
	client := newTestClient(t, backend)

	if err := client.DeleteCollection(context.Background(), "docs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := backend.recorded()[0].query; got != "DROP TABLE IF EXISTS `c$v1$docs`" {
		t.Errorf("unexpected statement %q", got)
	}
}

func TestDatabases(t *testing.T) {
	cols := []string{"SCHEMA_NAME", "DEFAULT_CHARACTER_SET_NAME", "DEFAULT_COLLATION_NAME"}
	backend := &fakeBackend{onQuery: func(query string, args []any) ([]Row, error) {
		if len(args) == 1 && args[0] == "missing" {
			return nil, nil
		}
		return []Row{row(cols, "test", "utf8mb4", "utf8mb4_general_ci")}, nil
	}}
	client := newTestClient(t, backend, WithTenant("acme"))
	ctx := context.Background()

	if err := client.CreateDatabase(ctx, "test"); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	db, err := client.GetDatabase(ctx, "test")
	if err != nil {
		t.Fatalf("GetDatabase: %v", err)
	}
	want := Database{Name: "test", Tenant: "acme", Charset: "utf8mb4", Collation: "utf8mb4_general_ci"}
	if *db != want {
		t.Errorf("got %+v, want %+v", *db, want)
	}
	if _, err := client.GetDatabase(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := client.CreateDatabase(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}

	offset := uint32(5)
	if _, err := client.ListDatabases(ctx, nil, &offset); err != nil {
		t.Fatalf("ListDatabases: %v", err)
	}
	if err := client.DeleteDatabase(ctx, "test"); err != nil {
		t.Fatalf("DeleteDatabase: %v", err)
	}

	stmts := backend.recorded()
	if stmts[0].query != "CREATE DATABASE IF NOT EXISTS `test`" {
		t.Errorf("unexpected create %q", stmts[0].query)
	}
	if !strings.HasSuffix(stmts[3].query, "SCHEMATA LIMIT 18446744073709551615 OFFSET 5") {
		t.Errorf("unexpected list %q", stmts[3].query)
	}
	if stmts[4].query != "DROP DATABASE IF EXISTS `test`" {
		t.Errorf("unexpected drop %q", stmts[4].query)
	}
}

func TestOperationsAreObserved(t *testing.T) {
	testObserver := &TestObserver{}
	backend := &fakeBackend{onExec: func(string, []any) (int64, error) {
		time.Sleep(time.Millisecond)
		return 3, nil
	}}
	client := newTestClient(t, backend, WithObserver(testObserver))
	col := newCollection(client, "docs", 3, L2, collectionOptions{})

	if _, err := col.Delete(context.Background(), DeleteRequest{IDs: []string{"a"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = col.Add(context.Background(), AddRequest{})

	ops := testObserver.GetOperations()
	if len(ops) != 2 {
		t.Fatalf("Expected 2 operations, got %d", len(ops))
	}

	op := ops[0]
	if op.Component != "seekdb" {
		t.Errorf("Expected component 'seekdb', got %s", op.Component)
	}
	if op.Operation != "delete" {
		t.Errorf("Expected operation 'delete', got %s", op.Operation)
	}
	if op.Resource != "docs" || op.SubResource != "c$v1$docs" {
		t.Errorf("unexpected resource %s/%s", op.Resource, op.SubResource)
	}
	if op.Size != 3 {
		t.Errorf("Expected size 3, got %d", op.Size)
	}
	if op.Duration <= 0 {
		t.Errorf("Expected positive duration, got %v", op.Duration)
	}
	if op.Error != nil {
		t.Errorf("Expected no error, got %v", op.Error)
	}

	if !errors.Is(ops[1].Error, ErrInvalidInput) {
		t.Errorf("Expected invalid input to be reported, got %v", ops[1].Error)
	}
}

func TestOperationsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	client := newTestClient(t, &fakeBackend{}, WithLogger(zap.New(core)))

	if _, err := client.CreateCollection(context.Background(), "docs", HNSWConfig{Dimension: 3, Distance: L2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if logs.FilterMessage("collection created").Len() != 1 {
		t.Error("expected an info log for the created collection")
	}
	completed := logs.FilterMessage("operation completed").All()
	if len(completed) != 1 {
		t.Fatalf("expected one operation log, got %d", len(completed))
	}
	fields := completed[0].ContextMap()
	if fields["operation"] != "create_collection" || fields["component"] != "seekdb" {
		t.Errorf("unexpected fields %v", fields)
	}
}
