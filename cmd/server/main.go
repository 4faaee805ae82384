package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/bootstrap"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Conversational e-commerce core: catalog, search, orders and bulk import.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, telemetry.FromConfig(&cfg.Telemetry, cfg.App.Name, version), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = log.WithOptions(zap.WrapCore(tel.WrapCore))

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
		zap.String("search", cfg.Search.Backend),
	)

	app, err := bootstrap.New(ctx, cfg, log, bootstrap.WithTelemetry(tel))
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	indexed, err := app.RebuildIndex(ctx)
	if err != nil {
		return err
	}
	log.Info("Search index ready", zap.Int("documents", indexed))

	engine, cleanup, err := newEngine(cfg, log, tel, app)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newEngine builds the gin engine with the middleware chain and every route.
// The returned cleanup stops background work owned by the middleware.
func newEngine(cfg *config.Config, log *zap.Logger, tel *telemetry.Provider, app *bootstrap.App) (*gin.Engine, func(), error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	httpMetrics, err := middleware.HTTPMetrics(tel.Meter(telemetry.MeterName))
	if err != nil {
		return nil, nil, err
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.App.Name, tel.TracerProvider()),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log, "/api/v1/health"),
		logger.Recovery(log),
		httpMetrics,
		middleware.Secure(),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.HTTP.CORSOrigins...)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.RequestTimeout(cfg.HTTP.RequestTimeout),
	)

	guards := router.Guards{}
	if cfg.Auth.Enabled {
		guards.Verifier = auth.NewTokenService(cfg.Auth)
	} else {
		log.Warn("Admin API authentication is disabled")
	}
	var limiter *middleware.RateLimiter
	if cfg.HTTP.OrderRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.OrderRateLimit, time.Minute)
		guards.OrderLimiter = limiter
	}

	r := router.NewRouter(engine).Add(router.Storefront(router.Handlers{
		System:   handler.NewSystemHandler(cfg.App.Name, version, app.DB),
		Category: handler.NewCategoryHandler(app.Catalog),
		Product:  handler.NewProductHandler(app.Catalog),
		Search:   handler.NewSearchHandler(app.Search),
		Order:    handler.NewOrderHandler(app.Orders),
		Customer: handler.NewCustomerHandler(app.Customers),
		Import:   handler.NewImportHandler(app.Importer),
		Export:   handler.NewExportHandler(app.Snapshots),
	}, guards)...)
	r.Setup()

	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.String("group", route.Group),
		)
	}

	cleanup := func() {
		if limiter != nil {
			limiter.Close()
		}
	}
	return engine, cleanup, nil
}
