// Package embedding computes text embeddings through any OpenAI-compatible
// embeddings endpoint and plugs them into seekdb collections.
//
// # Overview
//
// Client implements seekdb.EmbeddingFunction. Bind it to a collection and
// documents without explicit vectors are embedded on Add, Update, Upsert and
// QueryTexts:
//
//	cfg, err := embedding.NewConfig() // EMBEDDING_* variables
//	ef, err := embedding.NewClient(cfg, logger, nil)
//	coll, err := client.GetCollection(ctx, "docs", seekdb.WithEmbeddingFunction(ef))
//
// # Configuration
//
//	EMBEDDING_ENDPOINT              base URL, e.g. https://api.openai.com/v1
//	EMBEDDING_API_KEY               bearer token
//	EMBEDDING_MODEL                 model name
//	EMBEDDING_DIMENSION             vector length returned by the model
//	EMBEDDING_HTTP_TIMEOUT_SECONDS  per-request timeout (default 30)
//	EMBEDDING_BATCH_SIZE            documents per request (default 64)
//	EMBEDDING_OMIT_DIMENSIONS       do not send the "dimensions" field
//
// # Errors
//
// Every failure, including transport errors, non-2xx responses and vectors of
// the wrong length, is a *seekdb.Error of category CategoryEmbedding, so
// errors.Is(err, seekdb.ErrEmbedding) holds. Configuration problems are
// CategoryConfig.
//
// # Fx
//
//	fx.New(
//	    logger.FXModule,
//	    embedding.FXModule, // *Client and seekdb.EmbeddingFunction
//	)
package embedding
