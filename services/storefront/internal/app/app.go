package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/config"
	"github.com/utafrali/storefront/services/storefront/internal/content"
	"github.com/utafrali/storefront/services/storefront/internal/event"
	handler "github.com/utafrali/storefront/services/storefront/internal/handler/http"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
	"github.com/utafrali/storefront/services/storefront/internal/repository/memory"
	postgresrepo "github.com/utafrali/storefront/services/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/services/storefront/internal/repository/redis"
	sqliterepo "github.com/utafrali/storefront/services/storefront/internal/repository/sqlite"
	"github.com/utafrali/storefront/services/storefront/internal/service"
	"github.com/utafrali/storefront/services/storefront/internal/storage"
)

const (
	serviceName     = "storefront"
	janitorInterval = time.Minute
	eventBuffer     = 256
)

// Startup steps that tests replace.
var (
	initTracer = tracing.InitTracer
	loadPages  = content.Load
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server

	kafka          *pkgkafka.Producer
	events         *event.Producer
	closeKV        func()
	stopJanitor    func()
	stopRateLimit  func()
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracer, err := initTracer(ctx, cfg.Tracing(serviceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryMillis)*time.Millisecond, logger)

	store, closeKV, err := openKVStore(ctx, cfg, logger)
	if err != nil {
		shutdownOnError(ctx, shutdownTracer, logger)
		return nil, err
	}
	logger.Info("visitor state storage ready", slog.String("backend", cfg.KVBackend))

	// Build the dependency graph.
	bridge := storage.NewBridge(store, logger)
	client := api.NewClient(cfg.APIBaseURL, api.NewDoer(api.Config{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.APITimeout(),
		CircuitBreaker: cfg.APICircuitBreaker,
	}, logger), logger)
	registry := service.NewRegistry(bridge, client, logger, cfg.VisitorIdle())
	catalog := service.NewCatalog(client.Products(), logger)

	pages, err := loadPages()
	if err != nil {
		closeKV()
		shutdownOnError(ctx, shutdownTracer, logger)
		return nil, fmt.Errorf("load content pages: %w", err)
	}

	// Health checks. The storefront keeps serving from memory when its
	// storage or event broker is unreachable.
	healthHandler := health.NewHandler()
	healthHandler.RegisterOptional("kv", store.Ping)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		closeKV:        closeKV,
		shutdownTracer: shutdownTracer,
	}

	// Change events are published only when brokers are configured.
	if len(cfg.KafkaBrokers) > 0 {
		a.kafka = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.events = event.NewProducer(a.kafka, logger, eventBuffer)
		registry.OnCreate(a.events.Attach)
		healthHandler.RegisterOptional("kafka", a.kafka.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	rateLimit, stopRateLimit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	a.stopRateLimit = stopRateLimit
	a.stopJanitor = registry.StartJanitor(janitorInterval)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins

	router := handler.NewRouter(handler.Deps{
		Visitors:       registry,
		Catalog:        catalog,
		Checkout:       service.NewCheckoutService(logger),
		Pages:          pages,
		Health:         healthHandler,
		Logger:         logger,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		CORS:           cors,
		Visitor:        middleware.VisitorConfig{MaxAge: cfg.KVTTL(), Secure: cfg.CookieSecure},
		RateLimit:      rateLimit,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeout)*time.Second + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// shutdownOnError flushes the tracer when NewApp gives up part way.
func shutdownOnError(ctx context.Context, shutdown func(context.Context) error, logger *slog.Logger) {
	if err := shutdown(ctx); err != nil {
		logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
}

// openKVStore connects the configured backend. The returned func releases it.
func openKVStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.KVStore, func(), error) {
	switch cfg.KVBackend {
	case config.KVBackendRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return nil, nil, err
		}
		return redisrepo.NewKVStore(rdb, cfg.KVTTL()), func() {
			if err := rdb.Close(); err != nil {
				logger.Error("redis close error", slog.String("error", err.Error()))
			}
		}, nil

	case config.KVBackendSQLite:
		db, err := database.OpenSQLite(ctx, database.SQLiteConfig{Path: cfg.SQLitePath})
		if err != nil {
			return nil, nil, err
		}
		store, err := sqliterepo.NewKVStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() {
			if err := db.Close(); err != nil {
				logger.Error("sqlite close error", slog.String("error", err.Error()))
			}
		}, nil

	case config.KVBackendPostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := postgresrepo.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		collector := database.NewPoolStatsCollector(pool, serviceName)
		if err := prometheus.Register(collector); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		return postgresrepo.NewKVStore(pool), func() {
			prometheus.Unregister(collector)
			pool.Close()
		}, nil

	default:
		return memory.NewKVStore(), func() {}, nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.stopJanitor()
	a.stopRateLimit()

	// Drain queued change events before the writer goes away.
	if a.events != nil {
		a.events.Close()
	}
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.closeKV()

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
