package seekdb

import (
	"context"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
)

func TestFXModule(t *testing.T) {
	backend := &fakeBackend{}
	testObserver := &TestObserver{}

	var client *Client
	app := fxtest.New(t,
		fx.Provide(
			func() Backend { return backend },
			func() *zap.Logger { return zap.NewNop() },
			func() observability.Observer { return testObserver },
			fx.Annotate(
				func() Option { return WithTenant("acme") },
				fx.ResultTags(`group:"seekdb_options"`),
			),
		),
		FXModule,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	if client.Tenant() != "acme" {
		t.Errorf("grouped option not applied, tenant %q", client.Tenant())
	}
	if err := client.DeleteCollection(context.Background(), "docs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.recorded()) != 1 {
		t.Errorf("expected the injected backend to be used")
	}
	if len(testObserver.GetOperations()) != 1 {
		t.Errorf("expected the injected observer to be used")
	}
}
