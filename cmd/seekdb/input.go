package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// parseVector accepts "[0.1, 0.2]" or "0.1,0.2".
func parseVector(s string) (seekdb.Embedding, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		s = "[" + s + "]"
	}
	var v seekdb.Embedding
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, seekdb.NewError(seekdb.CategoryInvalidInput, err, "invalid vector %q", s)
	}
	if len(v) == 0 {
		return nil, seekdb.NewError(seekdb.CategoryInvalidInput, nil, "empty vector")
	}
	return v, nil
}

func parseVectors(values []string) ([]seekdb.Embedding, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]seekdb.Embedding, 0, len(values))
	for _, s := range values {
		v, err := parseVector(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// filterFlags are the selection flags shared by get, delete, query and hybrid.
type filterFlags struct {
	where         string
	whereDocument string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.where, "where", "", `metadata filter as JSON, e.g. '{"lang":"en","year":{"$gte":2020}}'`)
	cmd.Flags().StringVar(&f.whereDocument, "where-document", "", `document filter as JSON, e.g. '{"$contains":"hello"}'`)
}

func (f *filterFlags) parse() (seekdb.Filter, seekdb.DocFilter, error) {
	var (
		where    seekdb.Filter
		whereDoc seekdb.DocFilter
		err      error
	)
	if f.where != "" {
		if where, err = seekdb.ParseFilter([]byte(f.where)); err != nil {
			return nil, nil, err
		}
	}
	if f.whereDocument != "" {
		if whereDoc, err = seekdb.ParseDocFilter([]byte(f.whereDocument)); err != nil {
			return nil, nil, err
		}
	}
	return where, whereDoc, nil
}

// parseInclude returns nil when the flag was not given, so the client's
// default applies, and a non-nil list otherwise.
func parseInclude(cmd *cobra.Command, values []string) ([]seekdb.IncludeField, error) {
	if !cmd.Flags().Changed("include") {
		return nil, nil
	}
	out := make([]seekdb.IncludeField, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		f, err := seekdb.ParseIncludeField(v)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func optionalUint32(cmd *cobra.Command, name string, v uint32) *uint32 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// recordInput is one record of a --file batch.
type recordInput struct {
	ID        string           `json:"id"`
	Document  *string          `json:"document,omitempty"`
	Metadata  seekdb.Metadata  `json:"metadata,omitempty"`
	Embedding seekdb.Embedding `json:"embedding,omitempty"`
}

// recordBatch is a write in column form. Its layout matches the seekdb
// request types so it converts to each of them.
type recordBatch struct {
	IDs        []string
	Embeddings []seekdb.Embedding
	Metadatas  []seekdb.Metadata
	Documents  []string
}

// recordFlags collects records from repeated flags or a JSON file.
type recordFlags struct {
	ids        []string
	documents  []string
	metadatas  []string
	embeddings []string
	file       string
}

func (f *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.ids, "id", nil, "record ids; generated when omitted")
	cmd.Flags().StringArrayVar(&f.documents, "document", nil, "document text, repeatable")
	cmd.Flags().StringArrayVar(&f.metadatas, "metadata", nil, "metadata JSON object, repeatable")
	cmd.Flags().StringArrayVar(&f.embeddings, "embedding", nil, "embedding vector, repeatable")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `JSON array of {"id","document","metadata","embedding"} records, "-" for stdin`)
}

// batch builds the write. Ids are generated with uuid when none are given,
// so only the count of the other columns decides the number of records.
func (f *recordFlags) batch(stdin io.Reader, generateIDs bool) (*recordBatch, error) {
	records, err := f.records(stdin)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, seekdb.NewError(seekdb.CategoryInvalidInput, nil, "no records given")
	}

	b := &recordBatch{IDs: make([]string, len(records))}
	var withDoc, withMeta, withEmb int
	for _, r := range records {
		if r.Document != nil {
			withDoc++
		}
		if r.Metadata != nil {
			withMeta++
		}
		if r.Embedding != nil {
			withEmb++
		}
	}
	if withEmb != 0 && withEmb != len(records) {
		return nil, seekdb.NewError(seekdb.CategoryInvalidInput, nil,
			"embeddings must be given for all %d records or none, got %d", len(records), withEmb)
	}
	if withDoc > 0 {
		b.Documents = make([]string, len(records))
	}
	if withMeta > 0 {
		b.Metadatas = make([]seekdb.Metadata, len(records))
	}
	if withEmb > 0 {
		b.Embeddings = make([]seekdb.Embedding, len(records))
	}

	for i, r := range records {
		switch {
		case r.ID != "":
			b.IDs[i] = r.ID
		case generateIDs:
			b.IDs[i] = uuid.NewString()
		default:
			return nil, seekdb.NewError(seekdb.CategoryInvalidInput, nil, "record %d has no id", i)
		}
		if r.Document != nil {
			b.Documents[i] = *r.Document
		}
		if b.Metadatas != nil {
			b.Metadatas[i] = r.Metadata
		}
		if b.Embeddings != nil {
			b.Embeddings[i] = r.Embedding
		}
	}
	return b, nil
}

func (f *recordFlags) records(stdin io.Reader) ([]recordInput, error) {
	if f.file != "" {
		if len(f.ids)+len(f.documents)+len(f.metadatas)+len(f.embeddings) > 0 {
			return nil, seekdb.NewError(seekdb.CategoryInvalidInput, nil, "--file cannot be combined with record flags")
		}
		return readRecordFile(f.file, stdin)
	}

	n := max(len(f.ids), len(f.documents), len(f.metadatas), len(f.embeddings))
	for name, l := range map[string]int{"id": len(f.ids), "document": len(f.documents), "metadata": len(f.metadatas), "embedding": len(f.embeddings)} {
		if l != 0 && l != n {
			return nil, seekdb.NewError(seekdb.CategoryInvalidInput, nil, "got %d --%s values for %d records", l, name, n)
		}
	}

	records := make([]recordInput, n)
	for i := range records {
		if len(f.ids) > 0 {
			records[i].ID = f.ids[i]
		}
		if len(f.documents) > 0 {
			doc := f.documents[i]
			records[i].Document = &doc
		}
		if len(f.metadatas) > 0 {
			var m seekdb.Metadata
			if err := json.Unmarshal([]byte(f.metadatas[i]), &m); err != nil {
				return nil, seekdb.NewError(seekdb.CategorySerialization, err, "metadata %d", i)
			}
			records[i].Metadata = m
		}
		if len(f.embeddings) > 0 {
			v, err := parseVector(f.embeddings[i])
			if err != nil {
				return nil, err
			}
			records[i].Embedding = v
		}
	}
	return records, nil
}

func readRecordFile(path string, stdin io.Reader) ([]recordInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	var records []recordInput
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, seekdb.NewError(seekdb.CategorySerialization, err, "parsing records from %s", path)
	}
	return records, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
