package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

func TestSweeper_RepairCatalogPagesEveryProduct(t *testing.T) {
	f := newFixture(t, domain.PricingModeManual)
	ctx := context.Background()

	_, err := f.svc.UpsertBaseOffer(ctx, types.UpsertBaseOfferInput{Actor: actor(f.ready), ProductID: f.p1, Fields: terms("10", 1)})
	require.NoError(t, err)
	_, err = f.svc.UpsertVariantOffer(ctx, types.UpsertVariantOfferInput{Actor: actor(f.ready), VariantID: f.v1, Fields: terms("11", 2)})
	require.NoError(t, err)

	// Unlink the variant offer behind the service's back to create drift.
	require.NoError(t, f.store.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		offer, err := tx.Offers().FindVariant(ctx, f.ready, f.v1)
		if err != nil {
			return err
		}
		offer.BaseOfferID = nil
		_, err = tx.Offers().UpdateVariant(ctx, offer)
		return err
	}))

	summary, err := NewSweeper(f.svc, 0).RepairCatalog(ctx, types.RepairCatalogInput{BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ProductsExamined)
	assert.Equal(t, 1, summary.ProductsChanged)
	assert.Equal(t, 1, summary.OffersFixed)
	assert.Empty(t, summary.Failed)

	again, err := NewSweeper(f.svc, 1000).RepairCatalog(ctx, types.RepairCatalogInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.ProductsChanged)
}

func TestSweeper_RecordsFailuresAndStopsOnCancel(t *testing.T) {
	f := newFixture(t, domain.PricingModeManual)
	missing := uuid.New()
	summary := &types.CatalogRepairSummary{}

	var progressed []int
	err := NewSweeper(f.svc, 0).RepairProducts(context.Background(), []uuid.UUID{missing, f.p1}, summary, func(done int) {
		progressed = append(progressed, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{missing.String()}, summary.Failed)
	assert.Equal(t, 2, summary.ProductsExamined)
	assert.Equal(t, []int{1, 2}, progressed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewSweeper(f.svc, 0).RepairProducts(ctx, []uuid.UUID{f.p1}, &types.CatalogRepairSummary{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
