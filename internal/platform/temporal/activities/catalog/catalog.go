package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	offersports "github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

const (
	// ListProductPageActivityName returns one keyset page of product ids.
	ListProductPageActivityName = "catalog.activities.ListProductPage"
	// RepairProductPageActivityName repairs every product of one page.
	RepairProductPageActivityName = "catalog.activities.RepairProductPage"
)

// RepairPageInput names the products one activity attempt repairs.
type RepairPageInput struct {
	ProductIDs    []uuid.UUID
	RatePerSecond float64
}

// Activities groups activities that operate on the offers catalog.
type Activities struct {
	service offersports.Service
}

// NewActivities wires the offers service into the Temporal activities bundle.
func NewActivities(service offersports.Service) *Activities {
	return &Activities{service: service}
}

// ListProductPage pages product ids. Validation failures are not retried.
func (a *Activities) ListProductPage(ctx context.Context, input offerstypes.ProductPageInput) (*offerstypes.ProductPage, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("catalog activities not initialized")
		return nil, errors.New("catalog activities not initialized")
	}
	page, err := a.service.ListProductIDs(ctx, input)
	if err != nil {
		logger.Error("ListProductPage failed", "after", input.After.String(), "error", err)
		return nil, classify(err)
	}
	logger.Info("ListProductPage completed", "after", input.After.String(), "count", len(page.ProductIDs), "done", page.Done)
	return page, nil
}

// RepairProductPage repairs each product in its own transaction. Progress is
// heartbeated so a retried attempt resumes after the last repaired product.
func (a *Activities) RepairProductPage(ctx context.Context, input RepairPageInput) (*offerstypes.CatalogRepairSummary, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("catalog activities not initialized")
		return nil, errors.New("catalog activities not initialized")
	}

	hb := resumePoint(ctx, len(input.ProductIDs))

	summary := hb.Summary
	sweeper := offersapp.NewSweeper(a.service, input.RatePerSecond)
	err := sweeper.RepairProducts(ctx, input.ProductIDs[hb.Done:], &summary, func(done int) {
		activity.RecordHeartbeat(ctx, repairHeartbeat{Done: hb.Done + done, Summary: summary})
	})
	if err != nil {
		logger.Error("RepairProductPage failed", "error", err)
		return nil, err
	}
	logger.Info("RepairProductPage completed",
		"examined", summary.ProductsExamined,
		"changed", summary.ProductsChanged,
		"failed", len(summary.Failed),
	)
	return &summary, nil
}

type repairHeartbeat struct {
	Done    int
	Summary offerstypes.CatalogRepairSummary
}

// resumePoint reads the progress of a prior attempt. Unreadable details
// restart the page from its first product.
func resumePoint(ctx context.Context, total int) repairHeartbeat {
	logger := activity.GetLogger(ctx)
	if !activity.HasHeartbeatDetails(ctx) {
		return repairHeartbeat{}
	}
	var hb repairHeartbeat
	if err := activity.GetHeartbeatDetails(ctx, &hb); err != nil {
		logger.Warn("RepairProductPage ignoring unreadable heartbeat, restarting page", "error", err)
		return repairHeartbeat{}
	}
	if hb.Done < 0 || hb.Done > total {
		logger.Warn("RepairProductPage ignoring out-of-range heartbeat, restarting page", "done", hb.Done, "total", total)
		return repairHeartbeat{}
	}
	if hb.Done > 0 {
		logger.Info("RepairProductPage resuming from prior attempt", "done", hb.Done)
	}
	return hb
}

// classify marks caller mistakes as non-retryable so Temporal fails fast.
func classify(err error) error {
	switch offersapp.KindOf(err) {
	case offersapp.KindValidation, offersapp.KindNotFound:
		return temporal.NewNonRetryableApplicationError(err.Error(), string(offersapp.KindOf(err)), err)
	default:
		return err
	}
}
