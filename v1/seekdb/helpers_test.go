package seekdb

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

// statement is one call recorded by fakeBackend.
type statement struct {
	exec  bool
	query string
	args  []any
}

// fakeBackend records every statement and answers from scripted handlers.
// Unscripted queries return no rows; unscripted execs affect one row.
type fakeBackend struct {
	mu         sync.Mutex
	statements []statement
	onQuery    func(query string, args []any) ([]Row, error)
	onExec     func(query string, args []any) (int64, error)
}

func (f *fakeBackend) Exec(_ context.Context, query string, args []any) (int64, error) {
	f.mu.Lock()
	f.statements = append(f.statements, statement{exec: true, query: query, args: args})
	handler := f.onExec
	f.mu.Unlock()
	if handler != nil {
		return handler(query, args)
	}
	return 1, nil
}

func (f *fakeBackend) Query(_ context.Context, query string, args []any) ([]Row, error) {
	f.mu.Lock()
	f.statements = append(f.statements, statement{query: query, args: args})
	handler := f.onQuery
	f.mu.Unlock()
	if handler != nil {
		return handler(query, args)
	}
	return nil, nil
}

func (f *fakeBackend) recorded() []statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statement{}, f.statements...)
}

// matching returns the recorded statements whose SQL contains substr.
func (f *fakeBackend) matching(substr string) []statement {
	var out []statement
	for _, s := range f.recorded() {
		if strings.Contains(s.query, substr) {
			out = append(out, s)
		}
	}
	return out
}

// TestObserver is a mock observer for testing
type TestObserver struct {
	mu         sync.Mutex
	operations []observability.OperationContext
}

func (t *TestObserver) ObserveOperation(ctx observability.OperationContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = append(t.operations, ctx)
}

func (t *TestObserver) GetOperations() []observability.OperationContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]observability.OperationContext{}, t.operations...)
}

func newTestClient(t *testing.T, backend Backend, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(backend, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// newTestCollection returns a 3-dimensional L2 collection named "docs".
func newTestCollection(t *testing.T, backend Backend, opts ...CollectionOption) *Collection {
	t.Helper()
	return newCollection(newTestClient(t, backend), "docs", 3, L2, applyCollectionOptions(opts))
}

func row(columns []string, values ...any) Row {
	return NewRow(columns, values)
}
