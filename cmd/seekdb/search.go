package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

func (c *cli) queryCommand() *cobra.Command {
	var (
		texts      []string
		embeddings []string
		filters    filterFlags
		nResults   uint32
		include    []string
	)
	cmd := &cobra.Command{
		Use:   "query <collection>",
		Short: "Nearest-neighbour search by text or vector",
		Long: "Nearest-neighbour search. --text requires an embedding endpoint;\n" +
			"--embedding takes vectors directly. One result row is printed per query.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(texts) > 0 && len(embeddings) > 0 {
				return seekdb.NewError(seekdb.CategoryInvalidInput, nil, "--text and --embedding are mutually exclusive")
			}
			vectors, err := parseVectors(embeddings)
			if err != nil {
				return err
			}
			where, whereDoc, err := filters.parse()
			if err != nil {
				return err
			}
			fields, err := parseInclude(cmd, include)
			if err != nil {
				return err
			}
			req := seekdb.QueryRequest{
				Embeddings:    vectors,
				Texts:         texts,
				NResults:      nResults,
				Where:         where,
				WhereDocument: whereDoc,
				Include:       fields,
			}
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := openCollection(ctx, rt, args[0])
				if err != nil {
					return err
				}
				var res *seekdb.QueryResult
				if len(texts) > 0 {
					res, err = col.QueryTexts(ctx, req)
				} else {
					res, err = col.QueryEmbeddings(ctx, req)
				}
				if err != nil {
					return err
				}
				return printJSON(c.out, res)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&texts, "text", "t", nil, "query text, repeatable")
	cmd.Flags().StringArrayVarP(&embeddings, "embedding", "e", nil, "query vector, repeatable")
	filters.register(cmd)
	cmd.Flags().Uint32VarP(&nResults, "n-results", "n", 10, "hits per query")
	cmd.Flags().StringSliceVar(&include, "include", nil, "fields to return: documents, metadatas, embeddings")
	return cmd
}

// hybridFlags select between the simple and the advanced hybrid search. Any
// --knn-* or --rrf flag switches to the advanced form.
type hybridFlags struct {
	queries      []string
	searchParams string
	filters      filterFlags
	nResults     uint32
	include      []string

	knnTexts      []string
	knnEmbeddings []string
	knnWhere      string
	knnK          uint32
	rrf           bool
	rankWindow    uint32
	rankConstant  uint32
}

func (f *hybridFlags) advanced(cmd *cobra.Command) bool {
	for _, name := range []string{"knn-text", "knn-embedding", "knn-where", "knn-k", "rrf", "rank-window-size", "rank-constant"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (f *hybridFlags) advancedRequest(cmd *cobra.Command, include []seekdb.IncludeField) (seekdb.AdvancedSearchRequest, error) {
	req := seekdb.AdvancedSearchRequest{NResults: f.nResults, Include: include}

	where, whereDoc, err := f.filters.parse()
	if err != nil {
		return req, err
	}
	if where != nil || whereDoc != nil {
		req.Query = &seekdb.HybridQuery{Where: where, WhereDocument: whereDoc}
	}

	if len(f.knnTexts) > 0 || len(f.knnEmbeddings) > 0 {
		vectors, err := parseVectors(f.knnEmbeddings)
		if err != nil {
			return req, err
		}
		knn := &seekdb.HybridKNN{
			QueryTexts:      f.knnTexts,
			QueryEmbeddings: vectors,
			NResults:        optionalUint32(cmd, "knn-k", f.knnK),
		}
		if f.knnWhere != "" {
			if knn.Where, err = seekdb.ParseFilter([]byte(f.knnWhere)); err != nil {
				return req, err
			}
		}
		req.KNN = knn
	}

	if f.rrf || cmd.Flags().Changed("rank-window-size") || cmd.Flags().Changed("rank-constant") {
		req.Rank = seekdb.RRF{
			RankWindowSize: optionalUint32(cmd, "rank-window-size", f.rankWindow),
			RankConstant:   optionalUint32(cmd, "rank-constant", f.rankConstant),
		}
	}
	return req, nil
}

func (c *cli) hybridCommand() *cobra.Command {
	var f hybridFlags
	cmd := &cobra.Command{
		Use:   "hybrid <collection>",
		Short: "Hybrid full-text and vector search",
		Long: "Hybrid search executed by the engine. --query with filters runs the simple\n" +
			"form; --knn-text, --knn-embedding or --rrf run the advanced form with\n" +
			"separate query and knn branches. --search-params sends a raw document.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseInclude(cmd, f.include)
			if err != nil {
				return err
			}

			var search func(ctx context.Context, col *seekdb.Collection) (*seekdb.QueryResult, error)
			if f.advanced(cmd) {
				if len(f.queries) > 0 || f.searchParams != "" {
					return seekdb.NewError(seekdb.CategoryInvalidInput, nil, "--query and --search-params cannot be combined with knn or rank flags")
				}
				req, err := f.advancedRequest(cmd, fields)
				if err != nil {
					return err
				}
				search = func(ctx context.Context, col *seekdb.Collection) (*seekdb.QueryResult, error) {
					return col.HybridSearchAdvanced(ctx, req)
				}
			} else {
				where, whereDoc, err := f.filters.parse()
				if err != nil {
					return err
				}
				req := seekdb.HybridSearchRequest{
					Queries:       f.queries,
					Where:         where,
					WhereDocument: whereDoc,
					NResults:      f.nResults,
					Include:       fields,
				}
				if f.searchParams != "" {
					if !json.Valid([]byte(f.searchParams)) {
						return seekdb.NewError(seekdb.CategorySerialization, nil, "--search-params is not valid JSON")
					}
					req.SearchParams = json.RawMessage(f.searchParams)
				}
				search = func(ctx context.Context, col *seekdb.Collection) (*seekdb.QueryResult, error) {
					return col.HybridSearch(ctx, req)
				}
			}

			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := openCollection(ctx, rt, args[0])
				if err != nil {
					return err
				}
				res, err := search(ctx, col)
				if err != nil {
					return err
				}
				return printJSON(c.out, res)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&f.queries, "query", "q", nil, "query text, repeatable")
	cmd.Flags().StringVar(&f.searchParams, "search-params", "", "raw search document sent to the engine")
	f.filters.register(cmd)
	cmd.Flags().Uint32VarP(&f.nResults, "n-results", "n", 10, "number of hits")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "fields to return: documents, metadatas, embeddings")
	cmd.Flags().StringArrayVar(&f.knnTexts, "knn-text", nil, "text of the knn branch")
	cmd.Flags().StringArrayVar(&f.knnEmbeddings, "knn-embedding", nil, "vector of the knn branch")
	cmd.Flags().StringVar(&f.knnWhere, "knn-where", "", "metadata filter applied inside the knn branch")
	cmd.Flags().Uint32Var(&f.knnK, "knn-k", 10, "k of the knn branch")
	cmd.Flags().BoolVar(&f.rrf, "rrf", false, "fuse branches with reciprocal rank fusion")
	cmd.Flags().Uint32Var(&f.rankWindow, "rank-window-size", 0, "RRF rank window size")
	cmd.Flags().Uint32Var(&f.rankConstant, "rank-constant", 0, "RRF rank constant")
	return cmd
}
