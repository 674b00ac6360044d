package catalog

import (
	"github.com/google/uuid"
	"go.temporal.io/sdk/workflow"

	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/platform/temporal/sequences"
)

const (
	// CatalogRepairWorkflowName is the public identifier for registering the workflow.
	CatalogRepairWorkflowName = "catalog.workflows.Repair"
	// CatalogRepairTaskQueue is the queue consumed by the worker processing repair sweeps.
	CatalogRepairTaskQueue = "CATALOG_REPAIR"
	// CatalogRepairWorkflowID allows a single sweep at a time.
	CatalogRepairWorkflowID = "catalog-repair"

	defaultPagesPerRun = 50
)

// CatalogRepairWorkflowInput carries the sweep settings and, across
// continue-as-new, the cursor and the totals so far.
type CatalogRepairWorkflowInput struct {
	Command     offerstypes.RepairCatalogInput
	After       uuid.UUID
	Summary     offerstypes.CatalogRepairSummary
	PagesPerRun int
	TraceID     string
}

// CatalogRepairWorkflow sweeps every product. Long sweeps continue as new
// every PagesPerRun pages to keep the history bounded.
func CatalogRepairWorkflow(ctx workflow.Context, input CatalogRepairWorkflowInput) (*offerstypes.CatalogRepairSummary, error) {
	logger := workflow.GetLogger(ctx)
	pages := input.PagesPerRun
	if pages <= 0 {
		pages = defaultPagesPerRun
	}
	logger.Info("CatalogRepairWorkflow started", withTraceID(input.TraceID, "after", input.After.String())...)

	start := sequences.CatalogRepairProgress{After: input.After, Summary: input.Summary}
	progress, err := sequences.RunCatalogRepairSequence(ctx, input.Command, start, pages)
	if err != nil {
		logger.Error("CatalogRepairWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	if !progress.Done {
		next := input
		next.After = progress.After
		next.Summary = progress.Summary
		logger.Info("CatalogRepairWorkflow continuing as new", withTraceID(input.TraceID, "after", next.After.String())...)
		return nil, workflow.NewContinueAsNewError(ctx, CatalogRepairWorkflowName, next)
	}
	logger.Info("CatalogRepairWorkflow completed", withTraceID(input.TraceID,
		"examined", progress.Summary.ProductsExamined,
		"changed", progress.Summary.ProductsChanged,
		"failed", len(progress.Summary.Failed),
	)...)
	summary := progress.Summary
	return &summary, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
