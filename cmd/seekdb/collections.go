package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

func (c *cli) collectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "col"},
		Short:   "Manage collections",
	}
	cmd.AddCommand(
		c.collectionsListCommand(),
		c.collectionsCreateCommand(),
		c.collectionsDeleteCommand(),
		c.collectionsInfoCommand(),
		c.collectionsCountCommand(),
	)
	return cmd
}

func (c *cli) collectionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collection names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				names, err := rt.client.ListCollections(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(c.out, name)
				}
				return nil
			})
		},
	}
}

func (c *cli) collectionsCreateCommand() *cobra.Command {
	var (
		dimension   uint32
		distance    string
		getOrCreate bool
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Long: "Create a collection. Without --dimension the dimension of the configured\n" +
			"embedding function is used.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := seekdb.ParseDistanceMetric(distance)
			if err != nil {
				return err
			}
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				cfg := seekdb.HNSWConfig{Dimension: dimension, Distance: metric}
				var col *seekdb.Collection
				if getOrCreate {
					col, err = rt.client.GetOrCreateCollection(ctx, args[0], cfg, rt.collectionOptions()...)
				} else {
					col, err = rt.client.CreateCollection(ctx, args[0], cfg, rt.collectionOptions()...)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "collection %s ready (dimension %d, distance %s)\n", col.Name(), col.Dimension(), col.Distance())
				return nil
			})
		},
	}
	cmd.Flags().Uint32Var(&dimension, "dimension", 0, "vector dimension")
	cmd.Flags().StringVar(&distance, "distance", string(seekdb.L2), "distance metric: l2, cosine or inner_product")
	cmd.Flags().BoolVar(&getOrCreate, "get-or-create", false, "return the existing collection instead of failing")
	return cmd
}

func (c *cli) collectionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Drop a collection and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				if err := rt.client.DeleteCollection(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "collection %s deleted\n", args[0])
				return nil
			})
		},
	}
}

type collectionInfo struct {
	Name      string                `json:"name"`
	Table     string                `json:"table"`
	Dimension uint32                `json:"dimension"`
	Distance  seekdb.DistanceMetric `json:"distance"`
	Count     uint64                `json:"count"`
}

func (c *cli) collectionsInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show the schema and size of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				col, err := rt.client.GetCollection(ctx, args[0])
				if err != nil {
					return err
				}
				count, err := col.Count(ctx)
				if err != nil {
					return err
				}
				return printJSON(c.out, collectionInfo{
					Name:      col.Name(),
					Table:     col.TableName(),
					Dimension: col.Dimension(),
					Distance:  col.Distance(),
					Count:     count,
				})
			})
		},
	}
}

func (c *cli) collectionsCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				n, err := rt.client.CountCollections(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, n)
				return nil
			})
		},
	}
}

// openCollection resolves name with the configured embedding function bound.
func openCollection(ctx context.Context, rt *runtime, name string) (*seekdb.Collection, error) {
	return rt.client.GetCollection(ctx, name, rt.collectionOptions()...)
}
