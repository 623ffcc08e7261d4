package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// addCommand builds add, upsert and update, which differ only in the
// request they send.
func (c *cli) addCommand(use, short string) *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   use + " <collection>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := flags.batch(cmd.InOrStdin(), use != "update")
			if err != nil {
				return err
			}
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := openCollection(ctx, rt, args[0])
				if err != nil {
					return err
				}
				switch use {
				case "add":
					err = col.Add(ctx, seekdb.AddRequest(*batch))
				case "upsert":
					err = col.Upsert(ctx, seekdb.UpsertRequest(*batch))
				case "update":
					var affected int64
					affected, err = col.Update(ctx, seekdb.UpdateRequest(*batch))
					if err == nil {
						fmt.Fprintf(c.out, "%d records updated\n", affected)
						return nil
					}
				}
				if err != nil {
					return err
				}
				for _, id := range batch.IDs {
					fmt.Fprintln(c.out, id)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) deleteCommand() *cobra.Command {
	var (
		ids     []string
		filters filterFlags
	)
	cmd := &cobra.Command{
		Use:   "delete <collection>",
		Short: "Delete records by id or filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			where, whereDoc, err := filters.parse()
			if err != nil {
				return err
			}
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := openCollection(ctx, rt, args[0])
				if err != nil {
					return err
				}
				affected, err := col.Delete(ctx, seekdb.DeleteRequest{IDs: ids, Where: where, WhereDocument: whereDoc})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%d records deleted\n", affected)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "id", nil, "record ids")
	filters.register(cmd)
	return cmd
}

func (c *cli) getCommand() *cobra.Command {
	var (
		ids           []string
		filters       filterFlags
		limit, offset uint32
		include       []string
	)
	cmd := &cobra.Command{
		Use:   "get <collection>",
		Short: "Read records by id or filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			where, whereDoc, err := filters.parse()
			if err != nil {
				return err
			}
			fields, err := parseInclude(cmd, include)
			if err != nil {
				return err
			}
			req := seekdb.GetRequest{
				IDs:           ids,
				Where:         where,
				WhereDocument: whereDoc,
				Limit:         optionalUint32(cmd, "limit", limit),
				Offset:        optionalUint32(cmd, "offset", offset),
				Include:       fields,
			}
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := openCollection(ctx, rt, args[0])
				if err != nil {
					return err
				}
				res, err := col.Get(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(c.out, res)
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "id", nil, "record ids")
	filters.register(cmd)
	cmd.Flags().Uint32Var(&limit, "limit", 0, "maximum number of records")
	cmd.Flags().Uint32Var(&offset, "offset", 0, "records to skip")
	cmd.Flags().StringSliceVar(&include, "include", nil, "fields to return: documents, metadatas, embeddings")
	return cmd
}

func (c *cli) countCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection>",
		Short: "Count records in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := openCollection(ctx, rt, args[0])
				if err != nil {
					return err
				}
				n, err := col.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, n)
				return nil
			})
		},
	}
}

func (c *cli) peekCommand() *cobra.Command {
	var limit uint32
	cmd := &cobra.Command{
		Use:   "peek <collection>",
		Short: "Show the first records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := openCollection(ctx, rt, args[0])
				if err != nil {
					return err
				}
				res, err := col.Peek(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(c.out, res)
			})
		},
	}
	cmd.Flags().Uint32VarP(&limit, "limit", "n", 10, "number of records")
	return cmd
}
