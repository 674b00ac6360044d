package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	offerserver "github.com/Apurer/supplier-offers/go"

	offermemory "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/memory"
	offersobs "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/observability"
	offerspostgres "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/persistence/postgres"
	offersworkflows "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/workflows"
	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
	offersports "github.com/Apurer/supplier-offers/internal/domains/offers/ports"
	"github.com/Apurer/supplier-offers/internal/platform/migrations"
	platformobservability "github.com/Apurer/supplier-offers/internal/platform/observability"
	platformpostgres "github.com/Apurer/supplier-offers/internal/platform/postgres"
)

// ErrPostgresRequired is returned when a process that must share the API's
// database starts without POSTGRES_DSN.
var ErrPostgresRequired = errors.New("POSTGRES_DSN is required")

// Run boots the offers HTTP API with observability, storage, and repair workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "supplier-offers-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	uow, cleanup := BuildUnitOfWork(ctx, cfg, logger)
	defer cleanup()
	offerService := BuildOfferService(uow, cfg, instruments)

	var repairs offersports.RepairOrchestrator = offersworkflows.NewInlineRepairs(offerService, cfg.RepairDefaults())
	if temporalClient, err := ConnectTemporalClient(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running catalog repair inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		repairs = offersworkflows.NewTemporalRepairs(temporalClient, cfg.RepairDefaults())
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := offerserver.ApiHandleFunctions{
		OfferAPI: offerserver.NewOfferAPI(offerService, repairs),
	}
	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := offerserver.NewRouterWithGinEngine(engine, handlers)
	addr := ":" + cfg.Port
	logger.Info("Supplier offers API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("Supplier offers API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// BuildUnitOfWork prefers PostgreSQL and falls back to the in-memory store when
// no DSN is configured or the database is unreachable.
func BuildUnitOfWork(ctx context.Context, cfg Config, logger *slog.Logger) (offersports.UnitOfWork, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory offer store")
		return offermemory.NewStore(), func() {}
	}
	uow, cleanup, err := OpenPostgresUnitOfWork(ctx, cfg)
	if err != nil {
		logger.Warn("postgres unavailable, falling back to in-memory offer store", slog.String("error", err.Error()))
		return offermemory.NewStore(), func() {}
	}
	logger.Info("offer store configured with postgres")
	return uow, cleanup
}

// OpenPostgresUnitOfWork connects and migrates PostgreSQL with no memory fallback.
func OpenPostgresUnitOfWork(ctx context.Context, cfg Config) (offersports.UnitOfWork, func(), error) {
	if cfg.PostgresDSN == "" {
		return nil, func() {}, ErrPostgresRequired
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, platformpostgres.WithMaxOpenConns(cfg.PostgresMaxOpenConns))
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect postgres: %w", err)
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("migrate offers schema: %w", err)
	}
	return offerspostgres.NewUnitOfWork(db), cleanup, nil
}

// BuildOfferService wraps the core service with logging, tracing, and metrics.
func BuildOfferService(uow offersports.UnitOfWork, cfg Config, instruments *platformobservability.Instruments) offersports.Service {
	core := offersapp.NewService(uow, offersapp.WithDefaultCurrency(cfg.DefaultCurrency))
	return offersobs.New(
		core,
		offersobs.WithLogger(effectiveLogger(instruments)),
		offersobs.WithTracer(instruments.Tracer("internal.offers.application")),
		offersobs.WithMeter(instruments.Meter("internal.offers.application")),
	)
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
