// Package seekdb is a client for SeekDB, the vector-capable OceanBase
// derivative, over the MySQL wire protocol.
//
// A Client manages databases and collections; a Collection is a handle to
// one table holding records of an id, a document, a dense embedding and a
// JSON metadata document. Statements are executed through a Backend, which
// the server package implements on a gorm connection pool.
//
// # Architecture
//
//   - Filter and DocFilter are closed sets of predicate types over metadata
//     and document text. CompileFilter and CompileDocFilter turn them into
//     SQL fragments with every value bound as a parameter.
//   - BuildWhere assembles id, metadata and document predicates into one
//     WHERE clause.
//   - EmbeddingFunction is the optional capability turning documents into
//     vectors. It is used on writes without embeddings and on text queries.
//   - Collection implements writes (Add, Update, Upsert, Delete), reads
//     (QueryEmbeddings, QueryTexts, Get, Count, Peek) and hybrid search
//     (HybridSearch, HybridSearchAdvanced).
//
// # Usage
//
//	srv, err := server.NewServer(server.DefaultConfig(), log)
//	if err != nil {
//		return err
//	}
//	client, err := seekdb.NewClient(srv, seekdb.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	col, err := client.GetOrCreateCollection(ctx, "articles",
//		seekdb.HNSWConfig{Dimension: 384, Distance: seekdb.Cosine},
//		seekdb.WithEmbeddingFunction(ef))
//	if err != nil {
//		return err
//	}
//
//	err = col.Add(ctx, seekdb.AddRequest{
//		IDs:       []string{"a1", "a2"},
//		Documents: []string{"vector search in SQL", "hybrid ranking"},
//		Metadatas: []seekdb.Metadata{{"lang": "en"}, {"lang": "de"}},
//	})
//
//	res, err := col.QueryTexts(ctx, seekdb.QueryRequest{
//		Texts:    []string{"how do I search vectors?"},
//		NResults: 5,
//		Where:    seekdb.And(seekdb.Eq("lang", "en"), seekdb.Gte("year", 2020)),
//	})
//
// # Filters
//
// Metadata filters compile to JSON_EXTRACT predicates:
//
//	seekdb.Or(seekdb.In("tag", "go", "sql"), seekdb.Not(seekdb.Eq("draft", true)))
//	// (JSON_EXTRACT(metadata, '$.tag') IN (?, ?) OR NOT (JSON_EXTRACT(metadata, '$.draft') = ?))
//
// An empty And matches every record and an empty Or matches none. In with
// no values matches none and Nin with no values matches every record.
//
// Filters can also be read from the JSON form used on the command line:
//
//	f, err := seekdb.ParseFilter([]byte(`{"$and": [{"lang": "en"}, {"year": {"$gte": 2020}}]}`))
//
// # Hybrid Search
//
// HybridSearch and HybridSearchAdvanced let the engine combine full-text,
// metadata and vector search through DBMS_HYBRID_SEARCH. A request with
// only a knn branch is answered by a plain vector query. When the engine
// rejects a request with an invalid-argument error (see
// IsHybridInvalidArgument), HybridSearchAdvanced answers it client-side
// with the merged filters instead; the rank branch is ignored in that case.
// No other error triggers the fallback.
//
// # Error Handling
//
// Every returned error wraps one of ErrConnection, ErrSQL, ErrNotFound,
// ErrConfig, ErrEmbedding, ErrInvalidInput or ErrSerialization:
//
//	if errors.Is(err, seekdb.ErrInvalidInput) {
//		// rejected before any statement was sent
//	}
//
// Driver errors stay in the chain, so errors.As with *mysql.MySQLError works
// as well. Nothing in this package retries.
//
// # Observability
//
// Every public operation creates a client span, emits a debug log line and
// is reported to the Observer given with WithObserver. The metrics package
// provides a Prometheus Observer.
//
// # Thread Safety
//
// Client and Collection are immutable after construction and safe for
// concurrent use. Concurrency is bounded by the Backend's connection pool.
package seekdb
