package sequences

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	catalogactivities "github.com/Apurer/supplier-offers/internal/platform/temporal/activities/catalog"
)

// CatalogRepairProgress is where a sweep stands after a run of pages.
type CatalogRepairProgress struct {
	After   uuid.UUID
	Summary offerstypes.CatalogRepairSummary
	Done    bool
}

// RunCatalogRepairSequence repairs at most maxPages pages starting after the
// cursor and reports how far it got.
func RunCatalogRepairSequence(ctx workflow.Context, input offerstypes.RepairCatalogInput, start CatalogRepairProgress, maxPages int) (*CatalogRepairProgress, error) {
	logger := workflow.GetLogger(ctx)
	listOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	repairOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}

	progress := start
	for pages := 0; pages < maxPages; pages++ {
		var page offerstypes.ProductPage
		pageInput := offerstypes.ProductPageInput{After: progress.After, Limit: input.BatchSize}
		if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, listOptions), catalogactivities.ListProductPageActivityName, pageInput).Get(ctx, &page); err != nil {
			logger.Error("catalog repair sequence failed to list products", "after", progress.After.String(), "error", err)
			return nil, err
		}
		if len(page.ProductIDs) > 0 {
			var pageSummary offerstypes.CatalogRepairSummary
			repairInput := catalogactivities.RepairPageInput{ProductIDs: page.ProductIDs, RatePerSecond: input.RatePerSecond}
			if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, repairOptions), catalogactivities.RepairProductPageActivityName, repairInput).Get(ctx, &pageSummary); err != nil {
				logger.Error("catalog repair sequence failed to repair page", "after", progress.After.String(), "error", err)
				return nil, err
			}
			progress.Summary.Merge(pageSummary)
			progress.After = page.Next
		}
		logger.Info("catalog repair sequence page done",
			"count", len(page.ProductIDs),
			"examined", progress.Summary.ProductsExamined,
		)
		if page.Done || len(page.ProductIDs) == 0 {
			progress.Done = true
			return &progress, nil
		}
	}
	return &progress, nil
}
