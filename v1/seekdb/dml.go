package seekdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// AddRequest inserts new records. Embeddings may be omitted when Documents
// are given and the collection has an embedding function.
type AddRequest struct {
	IDs        []string
	Embeddings []Embedding
	Metadatas  []Metadata
	Documents  []string
}

// UpdateRequest overwrites the supplied fields of existing records. Fields
// left nil are not touched.
type UpdateRequest struct {
	IDs        []string
	Embeddings []Embedding
	Metadatas  []Metadata
	Documents  []string
}

// UpsertRequest updates existing records and inserts missing ones.
type UpsertRequest struct {
	IDs        []string
	Embeddings []Embedding
	Metadatas  []Metadata
	Documents  []string
}

// DeleteRequest selects the records to delete. At least one selector must be set.
type DeleteRequest struct {
	IDs           []string
	Where         Filter
	WhereDocument DocFilter
}

// record is one row of a write, with nil meaning "not supplied".
type record struct {
	id        string
	document  *string
	metadata  *string
	embedding *string
}

// Add inserts one row per id. A primary-key conflict is returned as ErrSQL;
// rows inserted before the conflict are kept.
func (c *Collection) Add(ctx context.Context, req AddRequest) (err error) {
	ctx, op := c.client.startOperation(ctx, "add", c.name)
	defer func() { op.end(err, int64(len(req.IDs))) }()

	if len(req.IDs) == 0 {
		return invalidInput("ids must not be empty")
	}
	if err = validateLengths(len(req.IDs), req.Embeddings, req.Metadatas, req.Documents); err != nil {
		return err
	}
	embeddings, err := c.resolveEmbeddings(ctx, len(req.IDs), req.Embeddings, req.Documents, policyAdd)
	if err != nil {
		return err
	}
	records, err := buildRecords(req.IDs, embeddings, req.Metadatas, req.Documents)
	if err != nil {
		return err
	}

	for _, r := range records {
		if err = c.insert(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Update overwrites the supplied fields of the given ids and returns the
// number of affected rows. Ids that do not exist are ignored. When
// Documents are given without Embeddings and an embedding function is
// bound, the embeddings are regenerated.
func (c *Collection) Update(ctx context.Context, req UpdateRequest) (affected int64, err error) {
	ctx, op := c.client.startOperation(ctx, "update", c.name)
	defer func() { op.end(err, affected) }()

	if len(req.IDs) == 0 {
		return 0, invalidInput("ids must not be empty")
	}
	if req.Embeddings == nil && req.Metadatas == nil && req.Documents == nil {
		return 0, invalidInput("nothing to update: provide embeddings, metadatas or documents")
	}
	if err = validateLengths(len(req.IDs), req.Embeddings, req.Metadatas, req.Documents); err != nil {
		return 0, err
	}
	embeddings, err := c.resolveEmbeddings(ctx, len(req.IDs), req.Embeddings, req.Documents, policyUpdate)
	if err != nil {
		return 0, err
	}
	records, err := buildRecords(req.IDs, embeddings, req.Metadatas, req.Documents)
	if err != nil {
		return 0, err
	}

	for _, r := range records {
		n, err := c.update(ctx, r)
		if err != nil {
			return affected, err
		}
		affected += n
	}
	return affected, nil
}

// Upsert updates the supplied fields of existing ids and inserts the rest.
// Inserted rows get an empty document, NULL metadata and no embedding for
// fields that were not supplied, which makes a documents-only upsert without
// an embedding function possible.
func (c *Collection) Upsert(ctx context.Context, req UpsertRequest) (err error) {
	ctx, op := c.client.startOperation(ctx, "upsert", c.name)
	defer func() { op.end(err, int64(len(req.IDs))) }()

	if len(req.IDs) == 0 {
		return invalidInput("ids must not be empty")
	}
	if req.Embeddings == nil && req.Metadatas == nil && req.Documents == nil {
		return invalidInput("upsert needs at least one of embeddings, metadatas or documents")
	}
	if err = validateLengths(len(req.IDs), req.Embeddings, req.Metadatas, req.Documents); err != nil {
		return err
	}
	embeddings, err := c.resolveEmbeddings(ctx, len(req.IDs), req.Embeddings, req.Documents, policyUpsert)
	if err != nil {
		return err
	}
	records, err := buildRecords(req.IDs, embeddings, req.Metadatas, req.Documents)
	if err != nil {
		return err
	}

	var inserted, updated int
	for _, r := range records {
		existing, err := c.get(ctx, GetRequest{IDs: []string{r.id}, Limit: ptr(uint32(1)), Include: []IncludeField{}})
		if err != nil {
			return err
		}
		if len(existing.IDs) > 0 {
			if _, err := c.update(ctx, r); err != nil {
				return err
			}
			updated++
			continue
		}
		if err := c.insert(ctx, r); err != nil {
			return err
		}
		inserted++
	}
	op.set("inserted", inserted)
	op.set("updated", updated)
	return nil
}

// Delete removes the selected records and returns the number of affected rows.
func (c *Collection) Delete(ctx context.Context, req DeleteRequest) (affected int64, err error) {
	ctx, op := c.client.startOperation(ctx, "delete", c.name)
	defer func() { op.end(err, affected) }()

	if req.IDs == nil && req.Where == nil && req.WhereDocument == nil {
		return 0, invalidInput("delete needs ids, where or where_document")
	}
	if err := validateSelectors(req.Where, req.WhereDocument); err != nil {
		return 0, err
	}
	where := BuildWhere(req.IDs, req.Where, req.WhereDocument)
	if where.Empty() {
		return 0, invalidInput("delete selectors compile to an empty predicate")
	}

	return c.client.exec(ctx, "DELETE FROM "+c.table()+where.SQL(), where.Params)
}

// insert writes r as a new row. An absent document is stored as the empty
// string; absent metadata and embedding are stored as NULL.
func (c *Collection) insert(ctx context.Context, r record) error {
	document := ""
	if r.document != nil {
		document = *r.document
	}
	query := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)",
		c.table(), ColumnID, ColumnDocument, ColumnMetadata, ColumnEmbedding)
	_, err := c.client.exec(ctx, query, []any{[]byte(r.id), document, nullable(r.metadata), nullable(r.embedding)})
	return err
}

// update writes the supplied fields of r. A record without fields is a no-op.
func (c *Collection) update(ctx context.Context, r record) (int64, error) {
	var (
		sets []string
		args []any
	)
	if r.document != nil {
		sets = append(sets, ColumnDocument+" = ?")
		args = append(args, *r.document)
	}
	if r.metadata != nil {
		sets = append(sets, ColumnMetadata+" = ?")
		args = append(args, *r.metadata)
	}
	if r.embedding != nil {
		sets = append(sets, ColumnEmbedding+" = ?")
		args = append(args, *r.embedding)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	args = append(args, []byte(r.id))

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", c.table(), strings.Join(sets, ", "), ColumnID)
	return c.client.exec(ctx, query, args)
}

// validateLengths checks that every supplied optional array has one entry
// per id. A non-nil empty slice counts as supplied.
func validateLengths(n int, embeddings []Embedding, metadatas []Metadata, documents []string) error {
	if embeddings != nil && len(embeddings) != n {
		return invalidInput("embeddings length %d does not match ids length %d", len(embeddings), n)
	}
	if metadatas != nil && len(metadatas) != n {
		return invalidInput("metadatas length %d does not match ids length %d", len(metadatas), n)
	}
	if documents != nil && len(documents) != n {
		return invalidInput("documents length %d does not match ids length %d", len(documents), n)
	}
	return nil
}

// buildRecords serializes every supplied field up front so that no
// statement is issued for a batch containing an unencodable value.
func buildRecords(ids []string, embeddings []Embedding, metadatas []Metadata, documents []string) ([]record, error) {
	records := make([]record, len(ids))
	for i, id := range ids {
		r := record{id: id}
		if documents != nil {
			doc := documents[i]
			r.document = &doc
		}
		if metadatas != nil {
			encoded, err := encodeMetadata(metadatas[i])
			if err != nil {
				return nil, serializationError(err, "metadata of id %q", id)
			}
			r.metadata = &encoded
		}
		if embeddings != nil {
			vec := FormatVector(embeddings[i])
			r.embedding = &vec
		}
		records[i] = r
	}
	return records, nil
}

func encodeMetadata(m Metadata) (string, error) {
	if m == nil {
		return "null", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func ptr[T any](v T) *T { return &v }
