package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/supplier-offers/internal/app/api"
	platformobservability "github.com/Apurer/supplier-offers/internal/platform/observability"
	catalogactivities "github.com/Apurer/supplier-offers/internal/platform/temporal/activities/catalog"
	catalogworkflows "github.com/Apurer/supplier-offers/internal/platform/temporal/workflows/catalog"
)

func main() {
	ctx := context.Background()
	const serviceName = "supplier-offers-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	uow, cleanup, err := api.OpenPostgresUnitOfWork(ctx, cfg)
	if err != nil {
		logger.Error("catalog repair worker needs the offers database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	offerService := api.BuildOfferService(uow, cfg, instruments)
	catalogActivities := catalogactivities.NewActivities(offerService)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, catalogworkflows.CatalogRepairTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(catalogworkflows.CatalogRepairWorkflow, workflow.RegisterOptions{Name: catalogworkflows.CatalogRepairWorkflowName})
	w.RegisterActivityWithOptions(catalogActivities.ListProductPage, activity.RegisterOptions{Name: catalogactivities.ListProductPageActivityName})
	w.RegisterActivityWithOptions(catalogActivities.RepairProductPage, activity.RegisterOptions{Name: catalogactivities.RepairProductPageActivityName})

	logger.Info("worker listening", slog.String("taskQueue", catalogworkflows.CatalogRepairTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
