package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/embedding"
	"github.com/Aleph-Alpha/seekdb/v1/logger"
	"github.com/Aleph-Alpha/seekdb/v1/metrics"
	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
	"github.com/Aleph-Alpha/seekdb/v1/server"
	"github.com/Aleph-Alpha/seekdb/v1/tracer"
)

// runtime is what a command runs against: a started application and the
// components it resolved.
type runtime struct {
	client *seekdb.Client
	ef     seekdb.EmbeddingFunction
	logger *logger.Logger
	tracer *tracer.Tracer
	// metrics is nil unless the command asked for it.
	metrics *metrics.Metrics
	stop    func(context.Context) error
}

// collectionOptions binds the configured embedding function, if any.
func (rt *runtime) collectionOptions() []seekdb.CollectionOption {
	if rt.ef == nil {
		return nil
	}
	return []seekdb.CollectionOption{seekdb.WithEmbeddingFunction(rt.ef)}
}

type runtimeOptions struct {
	// metrics starts the Prometheus endpoint and reports operations to it.
	metrics bool
	verbose bool
}

type openFunc func(ctx context.Context, cfg *Config, opts runtimeOptions) (*runtime, error)

// openRuntime builds and starts the fx application for one command.
func openRuntime(ctx context.Context, cfg *Config, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{}

	options := []fx.Option{
		fx.Supply(cfg.Logger, cfg.Tracer, cfg.Server),
		logger.FXModule,
		tracer.FXModule,
		server.FXModule,
		seekdb.FXModule,
		fx.Provide(fx.Annotate(
			func() seekdb.Option { return seekdb.WithMaxConcurrentQueries(cfg.Client.MaxConcurrentQueries) },
			fx.ResultTags(`group:"seekdb_options"`),
		)),
		fx.Populate(&rt.client, &rt.logger, &rt.tracer),
	}
	if opts.verbose {
		options = append(options, fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}))
	} else {
		options = append(options, fx.NopLogger)
	}
	if cfg.embeddingEnabled() {
		embCfg := cfg.Embedding
		options = append(options,
			fx.Supply(&embCfg),
			embedding.ClientModule,
			fx.Populate(&rt.ef),
		)
	}
	if opts.metrics {
		options = append(options, fx.Supply(cfg.Metrics), metrics.FXModule, fx.Populate(&rt.metrics))
	}

	app := fx.New(options...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	rt.stop = app.Stop
	rt.logger.Zap.Debug("runtime started", zap.Stringer("config", cfg))
	return rt, nil
}
