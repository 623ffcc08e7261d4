package seekdb

import (
	"context"
)

// EmbeddingFunction turns documents into fixed-dimension vectors. A
// collection bound to an EmbeddingFunction can accept documents without
// explicit embeddings and can be queried by text.
//
// The embedding package provides an implementation backed by any
// OpenAI-compatible embeddings endpoint.
//
//go:generate mockgen -source=embedding.go -destination=mock_embedding.go -package=seekdb
type EmbeddingFunction interface {
	// Embed returns one vector per document, in order.
	Embed(ctx context.Context, documents []string) ([]Embedding, error)

	// Dimension reports the length of the vectors Embed returns.
	Dimension() uint32
}

// embeddingPolicy decides what happens when vectors must be derived from
// text but no EmbeddingFunction is bound, or when neither is supplied.
type embeddingPolicy int

const (
	// policyAdd: vectors are mandatory.
	policyAdd embeddingPolicy = iota
	// policyUpdate: vectors are optional, but documents cannot be written
	// without regenerating them.
	policyUpdate
	// policyUpsert: vectors are optional and documents may be written
	// without them.
	policyUpsert
	// policyQuery: vectors are mandatory and a missing EmbeddingFunction is
	// an embedding failure rather than a caller mistake.
	policyQuery
)

// resolveEmbeddings returns the vectors to write or search with for n
// records. The result is nil when the policy allows proceeding without
// vectors.
func (c *Collection) resolveEmbeddings(ctx context.Context, n int, vectors []Embedding, texts []string, policy embeddingPolicy) ([]Embedding, error) {
	if vectors != nil {
		if err := c.validateVectors(n, vectors); err != nil {
			return nil, err
		}
		return vectors, nil
	}

	if texts == nil {
		switch policy {
		case policyAdd:
			return nil, invalidInput("either embeddings or documents with an embedding function must be provided")
		case policyQuery:
			return nil, invalidInput("query embeddings or texts must be provided")
		default:
			return nil, nil
		}
	}

	if c.embeddingFunction == nil {
		switch policy {
		case policyUpsert:
			return nil, nil
		case policyQuery:
			return nil, embeddingError(nil, "collection %q has no embedding function; provide query embeddings instead of texts", c.name)
		default:
			return nil, invalidInput("documents provided without embeddings and collection %q has no embedding function", c.name)
		}
	}

	generated, err := embedDocuments(ctx, c.embeddingFunction, texts)
	if err != nil {
		return nil, err
	}
	if err := c.validateVectors(n, generated); err != nil {
		return nil, err
	}
	return generated, nil
}

// validateVectors checks the count and every vector's dimension.
func (c *Collection) validateVectors(n int, vectors []Embedding) error {
	if len(vectors) != n {
		return invalidInput("embeddings length %d does not match expected length %d", len(vectors), n)
	}
	for i, v := range vectors {
		if uint32(len(v)) != c.dimension {
			return invalidInput("embedding %d has dimension %d, collection %q has dimension %d", i, len(v), c.name, c.dimension)
		}
	}
	return nil
}

// embedDocuments runs the embedding function on its own goroutine so that a
// slow model or endpoint cannot hold the caller past ctx's deadline.
func embedDocuments(ctx context.Context, ef EmbeddingFunction, texts []string) ([]Embedding, error) {
	type result struct {
		vectors []Embedding
		err     error
	}

	done := make(chan result, 1)
	go func() {
		vectors, err := ef.Embed(ctx, texts)
		done <- result{vectors: vectors, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, embeddingError(ctx.Err(), "embedding %d documents", len(texts))
	case r := <-done:
		if r.err != nil {
			if GetErrorCategory(r.err) != CategoryUnknown {
				return nil, r.err
			}
			return nil, embeddingError(r.err, "embedding %d documents", len(texts))
		}
		return r.vectors, nil
	}
}
