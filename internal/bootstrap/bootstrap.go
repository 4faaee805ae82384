// Package bootstrap assembles the storefront services from configuration.
// The HTTP server and the catalogctl tool share it so both run the same wiring.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	appexport "github.com/storefront/backend/internal/application/export"
	importapp "github.com/storefront/backend/internal/application/import"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	searchinfra "github.com/storefront/backend/internal/infrastructure/search"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// App holds the wired services and the resources they depend on
type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB          *persistence.Database
	Bus         *event.InMemoryEventBus
	Index       search.Index
	Products    *persistence.GormProductRepository
	Idempotency shared.IdempotencyStore

	Catalog   *catalogapp.CatalogService
	Search    *catalogapp.SearchService
	Customers *tradeapp.CustomerService
	Orders    *tradeapp.OrderService
	Importer  *importapp.CatalogImportService
	Snapshots *appexport.SnapshotService

	closers []func() error
}

// Option adjusts how New wires the application
type Option func(*options)

type options struct {
	telemetry *telemetry.Provider
	skipSink  bool
}

// WithTelemetry instruments the database and feeds business metrics from the event bus
func WithTelemetry(p *telemetry.Provider) Option {
	return func(o *options) { o.telemetry = p }
}

// WithoutSnapshotSink skips creating the export sink, for commands that never export
func WithoutSnapshotSink() Option {
	return func(o *options) { o.skipSink = true }
}

// New opens the database and wires every service.
// Close releases what New acquired, also after a partial failure.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	app.DB, err = persistence.NewDatabase(&cfg.Database, log.Named("gorm"))
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, app.DB.Close)

	if o.telemetry != nil && o.telemetry.IsEnabled() {
		if err = telemetry.InstrumentGorm(app.DB.DB, telemetry.GormTracingConfig{
			DBSystem:       cfg.Database.Driver,
			TracerProvider: o.telemetry.TracerProvider(),
		}); err != nil {
			return nil, fmt.Errorf("instrument database: %w", err)
		}
	}

	categories := persistence.NewGormCategoryRepository(app.DB.DB)
	app.Products = persistence.NewGormProductRepository(app.DB.DB)
	scope := persistence.NewGormTransactionScope(app.DB.DB)

	app.Bus = event.NewInMemoryEventBus(log.Named("events"))
	if cfg.Search.Backend == "postgres" {
		// the tsvector column follows the row, so no event handler is needed
		app.Index = persistence.NewPostgresSearchIndex(app.DB.DB)
	} else {
		memory := searchinfra.NewMemoryIndex()
		app.Index = memory
		app.Bus.Subscribe(searchinfra.NewIndexHandler(memory, log.Named("search")))
	}

	if o.telemetry != nil {
		metrics, merr := telemetry.NewEventMetrics(o.telemetry.Meter(telemetry.MeterName))
		if merr != nil {
			return nil, fmt.Errorf("event metrics: %w", merr)
		}
		app.Bus.Subscribe(metrics)
	}

	app.Catalog = catalogapp.NewCatalogService(categories, app.Products, log.Named("catalog"))
	app.Catalog.SetEventPublisher(app.Bus)
	app.Search = catalogapp.NewSearchService(app.Index, app.Products, catalogapp.SearchServiceConfig{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}, log.Named("search"))

	app.Customers = tradeapp.NewCustomerService(persistence.NewGormCustomerRepository(app.DB.DB), scope, log.Named("customers"))
	app.Orders = tradeapp.NewOrderService(scope, persistence.NewGormOrderRepository(app.DB.DB), app.Products, app.Customers,
		tradeapp.OrderServiceConfig{
			NumberPrefix:   cfg.Order.NumberPrefix,
			NumberRetries:  cfg.Order.NumberRetries,
			IdempotencyTTL: cfg.Order.IdempotencyTTL,
		}, log.Named("orders"))
	app.Orders.SetEventPublisher(app.Bus)

	app.Idempotency, err = cache.OpenIdempotencyStore(ctx, cfg.Redis, !cfg.IsProduction(), log.Named("cache"))
	if err != nil {
		return nil, err
	}
	if c, ok := app.Idempotency.(io.Closer); ok {
		app.closers = append(app.closers, c.Close)
	}
	app.Orders.SetIdempotencyStore(app.Idempotency)

	app.Importer = importapp.NewCatalogImportService(categories, app.Catalog, importapp.Config{
		MaxErrors: cfg.Import.MaxErrors,
		Delimiter: []rune(cfg.Import.Delimiter)[0],
	}, log.Named("import"))

	if !o.skipSink {
		sink, serr := storage.NewSnapshotSink(ctx, &cfg.Export, log)
		if serr != nil {
			return nil, fmt.Errorf("snapshot sink: %w", serr)
		}
		app.Snapshots = appexport.NewSnapshotService(persistence.NewGormSnapshotScope(app.DB), sink, log.Named("export"))
	}

	if err = app.Bus.Start(ctx); err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error { return app.Bus.Stop(context.Background()) })

	return app, nil
}

// RebuildIndex reloads the in-memory index from the store.
// The Postgres backend reads the store directly and needs no rebuild.
func (a *App) RebuildIndex(ctx context.Context) (int, error) {
	if a.Config.Search.Backend == "postgres" {
		return 0, nil
	}
	return searchinfra.Rebuild(ctx, a.Products, a.Index, a.Config.Search.RebuildBatch, a.Logger.Named("search"))
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
