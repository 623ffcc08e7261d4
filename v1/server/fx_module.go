package server

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// FXModule provides a *Server and exposes it as seekdb.Backend. The
// lifecycle starts connection monitoring and closes the pool on stop.
//
// Usage:
//
//	app := fx.New(
//	    server.FXModule,
//	    seekdb.FXModule,
//	    fx.Provide(func() server.Config { return server.DefaultConfig() }),
//	)
var FXModule = fx.Module("server",
	fx.Provide(
		NewServerWithDI,
		ProvideBackend,
	),
	fx.Invoke(RegisterServerLifecycle),
)

// ServerParams groups the dependencies of NewServerWithDI.
type ServerParams struct {
	fx.In

	Config Config
	Logger *zap.Logger `optional:"true"`
}

// NewServerWithDI opens the server connection from injected dependencies.
func NewServerWithDI(params ServerParams) (*Server, error) {
	return NewServer(params.Config, params.Logger)
}

// ProvideBackend exposes the server as the seekdb.Backend of the container.
func ProvideBackend(s *Server) seekdb.Backend {
	return s
}

// ServerLifeCycleParams groups the dependencies of RegisterServerLifecycle.
type ServerLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Server    *Server
}

// RegisterServerLifecycle runs MonitorConnection and RetryConnection for the
// lifetime of the application and closes the pool on stop. The loops get
// their own context; the start hook's context ends with OnStart.
func RegisterServerLifecycle(params ServerLifeCycleParams) {
	wg := &sync.WaitGroup{}
	loopCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				params.Server.MonitorConnection(loopCtx)
			}()
			go func() {
				defer wg.Done()
				params.Server.RetryConnection(loopCtx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			err := params.Server.Close()
			wg.Wait()
			return err
		},
	})
}
