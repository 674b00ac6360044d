package workflows

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

type pagingService struct {
	ports.Service
	ids      []uuid.UUID
	limits   []int
	repaired []uuid.UUID
}

func (s *pagingService) ListProductIDs(_ context.Context, input offerstypes.ProductPageInput) (*offerstypes.ProductPage, error) {
	s.limits = append(s.limits, input.Limit)
	var page []uuid.UUID
	for _, id := range s.ids {
		if input.After != uuid.Nil && id.String() <= input.After.String() {
			continue
		}
		if len(page) == input.Limit {
			break
		}
		page = append(page, id)
	}
	next := input.After
	if len(page) > 0 {
		next = page[len(page)-1]
	}
	return &offerstypes.ProductPage{ProductIDs: page, Next: next, Done: len(page) < input.Limit}, nil
}

func (s *pagingService) RepairProductOffers(_ context.Context, input offerstypes.RepairProductInput) (*offerstypes.RepairReport, error) {
	s.repaired = append(s.repaired, input.ProductID)
	return &offerstypes.RepairReport{ProductID: input.ProductID, BaseLinksFixed: 1}, nil
}

func sortedIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.MustParse("00000000-0000-0000-0000-00000000000" + string(rune('1'+i)))
	}
	return ids
}

func TestInlineRepairs_AppliesDefaultsAndSweepsEverything(t *testing.T) {
	svc := &pagingService{ids: sortedIDs(3)}
	repairs := NewInlineRepairs(svc, offerstypes.RepairCatalogInput{BatchSize: 2})

	summary, err := repairs.RepairCatalog(context.Background(), offerstypes.RepairCatalogInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ProductsExamined)
	assert.Equal(t, 3, summary.ProductsChanged)
	assert.Equal(t, 3, summary.OffersFixed)
	assert.Equal(t, svc.ids, svc.repaired)
	assert.Equal(t, []int{2, 2}, svc.limits)
}

func TestInlineRepairs_RequestOverridesDefaults(t *testing.T) {
	svc := &pagingService{ids: sortedIDs(3)}
	repairs := NewInlineRepairs(svc, offerstypes.RepairCatalogInput{BatchSize: 2})

	_, err := repairs.RepairCatalog(context.Background(), offerstypes.RepairCatalogInput{BatchSize: 5})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, svc.limits)
}

func TestInlineRepairs_NotConfigured(t *testing.T) {
	var repairs *InlineRepairs
	_, err := repairs.RepairCatalog(context.Background(), offerstypes.RepairCatalogInput{})
	require.Error(t, err)

	var temporalRepairs *TemporalRepairs
	_, err = temporalRepairs.RepairCatalog(context.Background(), offerstypes.RepairCatalogInput{})
	require.Error(t, err)
}

func TestWorkflowTraceComponentFallsBack(t *testing.T) {
	assert.Contains(t, workflowTraceComponent(context.Background()), "fallback-")
}
