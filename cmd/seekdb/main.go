// Command seekdb manages collections and records on a SeekDB or OceanBase
// server from the command line.
//
//	seekdb collections create docs --dimension 384 --distance cosine
//	seekdb add docs --document "hello world" --metadata '{"lang":"en"}'
//	seekdb query docs --text "greeting" --where '{"lang":"en"}' -n 5
//	seekdb hybrid docs --query "hello" --where-document '{"$contains":"world"}'
//
// Connection settings are read from SERVER_* variables, the embedding
// endpoint from EMBEDDING_* variables, and both can be overridden with a
// YAML file passed as --config. ${VAR} and ${VAR:-default} are expanded in
// the file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cli struct {
	configPath string
	verbose    bool
	out        io.Writer
	open       openFunc
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out, open: openRuntime}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "seekdb",
		Short:         "CLI for SeekDB and OceanBase vector collections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("SEEKDB_CONFIG"), "YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log application wiring")

	root.AddCommand(
		c.collectionsCommand(),
		c.addCommand("add", "Insert new records"),
		c.addCommand("upsert", "Update existing records and insert missing ones"),
		c.addCommand("update", "Overwrite fields of existing records"),
		c.deleteCommand(),
		c.getCommand(),
		c.countCommand(),
		c.peekCommand(),
		c.queryCommand(),
		c.hybridCommand(),
		c.databasesCommand(),
		c.monitorCommand(),
	)
	return root
}

// run loads the configuration, opens a runtime and calls fn inside a span
// named after the command.
func (c *cli) run(cmd *cobra.Command, opts runtimeOptions, fn func(ctx context.Context, rt *runtime) error) (err error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	opts.verbose = c.verbose

	ctx := cmd.Context()
	rt, err := c.open(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if stopErr := rt.stop(stopCtx); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	ctx, span := rt.tracer.StartSpan(ctx, "cli."+cmd.CommandPath())
	defer span.End()

	log := rt.logger.WithContext(ctx)
	start := time.Now()
	err = fn(ctx, rt)
	rt.tracer.RecordErrorOnSpan(span, err)
	if err != nil {
		log.Debug("command failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
		return err
	}
	log.Debug("command completed", zap.String("command", cmd.CommandPath()), zap.Duration("duration", time.Since(start)))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI(os.Stdout).rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
