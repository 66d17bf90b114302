package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/benchschema/internal/config"
	"github.com/zjrosen/benchschema/internal/flags"
	"github.com/zjrosen/benchschema/internal/infrastructure/sqlite"
	"github.com/zjrosen/benchschema/internal/log"
	regapp "github.com/zjrosen/benchschema/internal/registry/application"
	"github.com/zjrosen/benchschema/internal/schemaexport"
	"github.com/zjrosen/benchschema/internal/schemas"
	"github.com/zjrosen/benchschema/internal/tracing"
)

// runtime holds the services built from configuration for one command.
type runtime struct {
	service *regapp.RegistryService
	tracing *tracing.Provider
	db      *sqlite.DB // nil when history is disabled
}

// newRuntime loads user schemas, opens the history store and starts tracing.
func newRuntime(c config.Config) (*runtime, error) {
	user, err := regapp.LoadUserSpecs(c.Schemas.UserFiles)
	if err != nil {
		return nil, err
	}
	reg, err := regapp.NewUserRegistry(schemas.Builtins(), user)
	if err != nil {
		return nil, err
	}

	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	rt := &runtime{tracing: provider}

	opts := []regapp.ServiceOption{
		regapp.WithConcurrency(c.Validation.Concurrency),
		regapp.WithFlags(flags.New(c.Flags)),
		regapp.WithTracer(provider.Tracer()),
		regapp.WithExporter(schemaexport.NewExporter(c.Cache.TTL)),
	}

	if c.History.Enabled {
		path := c.History.Path
		if path == "" {
			path = config.DefaultHistoryPath()
		}
		db, err := sqlite.NewDB(path)
		if err != nil {
			_ = provider.Shutdown(context.Background())
			return nil, fmt.Errorf("open run history: %w", err)
		}
		rt.db = db
		opts = append(opts, regapp.WithHistory(db.Runs()))
	}

	rt.service = regapp.NewRegistryService(reg, opts...)
	log.Debug(log.CatRegistry, "Registry ready", "specs", len(reg.List()), "user", len(user))
	return rt, nil
}

// Close flushes traces and closes the history store.
func (r *runtime) Close(ctx context.Context) error {
	var errs []error
	if err := r.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close run history: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withRuntime builds the runtime for the loaded config, runs fn and closes it.
func withRuntime(ctx context.Context, fn func(rt *runtime) error) (err error) {
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(rt)
}
