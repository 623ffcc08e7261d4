package seekdb

import (
	"fmt"
	"strings"
)

// Embedding is a single dense vector.
type Embedding []float32

// Metadata is the JSON document stored alongside a record.
type Metadata map[string]any

// IncludeField selects an optional field of query and get results.
type IncludeField string

const (
	IncludeDocuments  IncludeField = "documents"
	IncludeMetadatas  IncludeField = "metadatas"
	IncludeEmbeddings IncludeField = "embeddings"
)

// IncludeAll selects every optional field.
var IncludeAll = []IncludeField{IncludeDocuments, IncludeMetadatas, IncludeEmbeddings}

// includeSet resolves a caller-supplied include list. A nil list means the
// default of documents and metadatas; a non-nil list means exactly its entries.
type includeSet struct {
	documents  bool
	metadatas  bool
	embeddings bool
}

func resolveInclude(include []IncludeField) includeSet {
	if include == nil {
		return includeSet{documents: true, metadatas: true}
	}
	var s includeSet
	for _, f := range include {
		switch f {
		case IncludeDocuments:
			s.documents = true
		case IncludeMetadatas:
			s.metadatas = true
		case IncludeEmbeddings:
			s.embeddings = true
		}
	}
	return s
}

// ParseIncludeField parses a field name as accepted on the command line.
func ParseIncludeField(s string) (IncludeField, error) {
	switch f := IncludeField(strings.ToLower(strings.TrimSpace(s))); f {
	case IncludeDocuments, IncludeMetadatas, IncludeEmbeddings:
		return f, nil
	default:
		return "", invalidInput("unknown include field %q", s)
	}
}

// QueryResult is the result of a ranked search. The outer index is the query,
// the inner index the hit. Optional fields are nil when not requested and
// otherwise have exactly the shape of IDs.
type QueryResult struct {
	IDs        [][]string    `json:"ids"`
	Documents  [][]string    `json:"documents,omitempty"`
	Metadatas  [][]Metadata  `json:"metadatas,omitempty"`
	Embeddings [][]Embedding `json:"embeddings,omitempty"`
	Distances  [][]float32   `json:"distances,omitempty"`
}

// Validate checks that every present optional array matches the shape of IDs.
func (r *QueryResult) Validate() error {
	check := func(name string, lens func(i int) int, outer int) error {
		if outer != len(r.IDs) {
			return fmt.Errorf("%s has %d query rows, ids has %d", name, outer, len(r.IDs))
		}
		for i := range r.IDs {
			if lens(i) != len(r.IDs[i]) {
				return fmt.Errorf("%s[%d] has %d hits, ids has %d", name, i, lens(i), len(r.IDs[i]))
			}
		}
		return nil
	}
	if r.Documents != nil {
		if err := check("documents", func(i int) int { return len(r.Documents[i]) }, len(r.Documents)); err != nil {
			return err
		}
	}
	if r.Metadatas != nil {
		if err := check("metadatas", func(i int) int { return len(r.Metadatas[i]) }, len(r.Metadatas)); err != nil {
			return err
		}
	}
	if r.Embeddings != nil {
		if err := check("embeddings", func(i int) int { return len(r.Embeddings[i]) }, len(r.Embeddings)); err != nil {
			return err
		}
	}
	if r.Distances != nil {
		if err := check("distances", func(i int) int { return len(r.Distances[i]) }, len(r.Distances)); err != nil {
			return err
		}
	}
	return nil
}

// GetResult is the result of an unranked read. Optional fields are nil when
// not requested and otherwise have the length of IDs.
type GetResult struct {
	IDs        []string    `json:"ids"`
	Documents  []string    `json:"documents,omitempty"`
	Metadatas  []Metadata  `json:"metadatas,omitempty"`
	Embeddings []Embedding `json:"embeddings,omitempty"`
}

// Validate checks that every present optional array matches the length of IDs.
func (r *GetResult) Validate() error {
	n := len(r.IDs)
	if r.Documents != nil && len(r.Documents) != n {
		return fmt.Errorf("documents has %d entries, ids has %d", len(r.Documents), n)
	}
	if r.Metadatas != nil && len(r.Metadatas) != n {
		return fmt.Errorf("metadatas has %d entries, ids has %d", len(r.Metadatas), n)
	}
	if r.Embeddings != nil && len(r.Embeddings) != n {
		return fmt.Errorf("embeddings has %d entries, ids has %d", len(r.Embeddings), n)
	}
	return nil
}

// asQueryResult wraps a get result as a single query row with zero distances.
func (r *GetResult) asQueryResult() *QueryResult {
	qr := &QueryResult{
		IDs:       [][]string{r.IDs},
		Distances: [][]float32{make([]float32, len(r.IDs))},
	}
	if r.Documents != nil {
		qr.Documents = [][]string{r.Documents}
	}
	if r.Metadatas != nil {
		qr.Metadatas = [][]Metadata{r.Metadatas}
	}
	if r.Embeddings != nil {
		qr.Embeddings = [][]Embedding{r.Embeddings}
	}
	return qr
}

// Database describes a database visible to the connected tenant.
type Database struct {
	Name      string `json:"name"`
	Tenant    string `json:"tenant,omitempty"`
	Charset   string `json:"charset,omitempty"`
	Collation string `json:"collation,omitempty"`
}
