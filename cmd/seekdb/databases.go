package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) databasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "databases",
		Aliases: []string{"database", "db"},
		Short:   "Manage databases of the connected tenant",
	}

	var limit, offset uint32
	list := &cobra.Command{
		Use:   "list",
		Short: "List databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				dbs, err := rt.client.ListDatabases(ctx, optionalUint32(cmd, "limit", limit), optionalUint32(cmd, "offset", offset))
				if err != nil {
					return err
				}
				return printJSON(c.out, dbs)
			})
		},
	}
	list.Flags().Uint32Var(&limit, "limit", 0, "maximum number of databases")
	list.Flags().Uint32Var(&offset, "offset", 0, "databases to skip")

	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				db, err := rt.client.GetDatabase(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(c.out, db)
			})
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				if err := rt.client.CreateDatabase(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "database %s created\n", args[0])
				return nil
			})
		},
	}

	drop := &cobra.Command{
		Use:   "delete <name>",
		Short: "Drop a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, runtimeOptions{}, func(ctx context.Context, rt *runtime) error {
				if err := rt.client.DeleteDatabase(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "database %s deleted\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, get, create, drop)
	return cmd
}
