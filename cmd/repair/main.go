package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Apurer/supplier-offers/internal/app/api"
	offersworkflows "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/workflows"
	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
)

// repair runs one catalog repair sweep in-process and exits. It is meant for
// cron jobs and operators without a Temporal worker at hand.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	uow, cleanup, err := api.OpenPostgresUnitOfWork(ctx, cfg)
	if err != nil {
		log.Fatalf("cannot repair catalog: %v", err)
	}
	defer cleanup()

	service := offersapp.NewService(uow, offersapp.WithDefaultCurrency(cfg.DefaultCurrency))
	summary, err := offersworkflows.NewInlineRepairs(service, cfg.RepairDefaults()).RepairCatalog(ctx, cfg.RepairDefaults())
	if err != nil {
		log.Fatalf("catalog repair failed: %v", err)
	}
	logger.Info("catalog repair completed",
		slog.Int("examined", summary.ProductsExamined),
		slog.Int("changed", summary.ProductsChanged),
		slog.Int("offersFixed", summary.OffersFixed),
		slog.Int("failed", len(summary.Failed)),
	)
	if len(summary.Failed) > 0 {
		logger.Warn("some products could not be repaired", slog.Any("productIds", summary.Failed))
		os.Exit(2)
	}
}
