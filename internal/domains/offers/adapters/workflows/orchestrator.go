package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
	catalogworkflows "github.com/Apurer/supplier-offers/internal/platform/temporal/workflows/catalog"
)

var (
	_ ports.RepairOrchestrator = (*TemporalRepairs)(nil)
	_ ports.RepairOrchestrator = (*InlineRepairs)(nil)
)

// TemporalRepairs starts catalog repair sweeps on a Temporal cluster.
type TemporalRepairs struct {
	client    client.Client
	taskQueue string
	defaults  offerstypes.RepairCatalogInput
}

// NewTemporalRepairs wires a Temporal client into the orchestrator. defaults
// fill any zero field of an incoming request.
func NewTemporalRepairs(c client.Client, defaults offerstypes.RepairCatalogInput) *TemporalRepairs {
	return &TemporalRepairs{client: c, taskQueue: catalogworkflows.CatalogRepairTaskQueue, defaults: defaults}
}

// RepairCatalog starts the sweep, or joins the one already running, and waits for its summary.
func (o *TemporalRepairs) RepairCatalog(ctx context.Context, input offerstypes.RepairCatalogInput) (*offerstypes.CatalogRepairSummary, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal repair workflows not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                                       catalogworkflows.CatalogRepairWorkflowID,
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		catalogworkflows.CatalogRepairWorkflowName,
		catalogworkflows.CatalogRepairWorkflowInput{
			Command: withDefaults(input, o.defaults),
			TraceID: workflowTraceComponent(ctx),
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, catalogworkflows.CatalogRepairWorkflowID, alreadyStarted.RunId)
	}
	var summary offerstypes.CatalogRepairSummary
	if err := run.Get(ctx, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// InlineRepairs runs the sweep in-process without Temporal, useful for tests or dev fallbacks.
type InlineRepairs struct {
	service  ports.Service
	defaults offerstypes.RepairCatalogInput
}

// NewInlineRepairs wraps the offers service for synchronous sweeps.
func NewInlineRepairs(service ports.Service, defaults offerstypes.RepairCatalogInput) *InlineRepairs {
	return &InlineRepairs{service: service, defaults: defaults}
}

// RepairCatalog pages and repairs every product before returning.
func (o *InlineRepairs) RepairCatalog(ctx context.Context, input offerstypes.RepairCatalogInput) (*offerstypes.CatalogRepairSummary, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline repair workflows not configured")
	}
	input = withDefaults(input, o.defaults)
	return offersapp.NewSweeper(o.service, input.RatePerSecond).RepairCatalog(ctx, input)
}

func withDefaults(input, defaults offerstypes.RepairCatalogInput) offerstypes.RepairCatalogInput {
	if input.BatchSize <= 0 {
		input.BatchSize = defaults.BatchSize
	}
	if input.RatePerSecond <= 0 {
		input.RatePerSecond = defaults.RatePerSecond
	}
	return input
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
