package embedding

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - *Config                  (NewConfig, from EMBEDDING_* variables)
//   - *Client                  (NewClientWithDI)
//   - seekdb.EmbeddingFunction (the same *Client)
//   - Lifecycle hook           (RegisterEmbeddingLifecycle)
//
// Supply your own *Config with fx.Supply and leave NewConfig out by using
// ClientModule instead.
var FXModule = fx.Module(
	"embedding",
	fx.Provide(NewConfig),
	clientProviders,
)

// ClientModule is FXModule without the environment-backed *Config.
var ClientModule = fx.Module(
	"embedding",
	clientProviders,
)

var clientProviders = fx.Options(
	fx.Provide(
		NewClientWithDI,
		func(c *Client) seekdb.EmbeddingFunction { return c },
	),
	fx.Invoke(RegisterEmbeddingLifecycle),
)

// ClientParams groups the dependencies of NewClientWithDI.
type ClientParams struct {
	fx.In

	Config   *Config
	Logger   *zap.Logger            `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Client from injected dependencies.
func NewClientWithDI(params ClientParams) (*Client, error) {
	return NewClient(params.Config, params.Logger, params.Observer)
}

// RegisterEmbeddingLifecycle releases the client's connections on shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
