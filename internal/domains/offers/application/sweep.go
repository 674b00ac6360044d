package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

// DefaultRepairBatchSize is the page size used when a sweep names none.
const DefaultRepairBatchSize = 100

// Sweeper repairs many products, one transaction per product, throttled by a
// token bucket so a sweep never starves interactive writers.
type Sweeper struct {
	service ports.Service
	limiter *rate.Limiter
}

// NewSweeper builds a sweeper. A non-positive rate disables throttling.
func NewSweeper(service ports.Service, ratePerSecond float64) *Sweeper {
	limit := rate.Inf
	burst := 1
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
		if ratePerSecond > 1 {
			burst = int(ratePerSecond)
		}
	}
	return &Sweeper{service: service, limiter: rate.NewLimiter(limit, burst)}
}

// RepairProducts repairs ids in order and folds each report into summary.
// Per-product failures are recorded and skipped; only cancellation stops the
// run. progress, when set, is called with the number of ids handled so far.
func (s *Sweeper) RepairProducts(ctx context.Context, ids []uuid.UUID, summary *types.CatalogRepairSummary, progress func(done int)) error {
	for i, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		report, err := s.service.RepairProductOffers(ctx, types.RepairProductInput{ProductID: id})
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			summary.ProductsExamined++
			summary.Failed = append(summary.Failed, id.String())
		default:
			summary.Add(report)
		}
		if progress != nil {
			progress(i + 1)
		}
	}
	return nil
}

// RepairCatalog pages through every product id and repairs each one.
func (s *Sweeper) RepairCatalog(ctx context.Context, input types.RepairCatalogInput) (*types.CatalogRepairSummary, error) {
	batch := input.BatchSize
	if batch <= 0 {
		batch = DefaultRepairBatchSize
	}
	summary := &types.CatalogRepairSummary{}
	cursor := uuid.Nil
	for {
		page, err := s.service.ListProductIDs(ctx, types.ProductPageInput{After: cursor, Limit: batch})
		if err != nil {
			return nil, err
		}
		if err := s.RepairProducts(ctx, page.ProductIDs, summary, nil); err != nil {
			return nil, err
		}
		if page.Done || len(page.ProductIDs) == 0 {
			return summary, nil
		}
		cursor = page.Next
	}
}
