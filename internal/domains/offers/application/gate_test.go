package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	offermemory "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/memory"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

func TestPayoutGate(t *testing.T) {
	f := newFixture(t, domain.PricingModeManual)
	gate := PayoutGate{}

	require.True(t, gate.OfferBecomesPurchasable(true, true, 1, decimal.NewFromInt(1)))
	require.False(t, gate.OfferBecomesPurchasable(true, true, 1, decimal.Zero))
	require.False(t, gate.OfferBecomesPurchasable(false, true, 1, decimal.NewFromInt(1)))

	err := f.store.Do(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		ready, err := gate.IsPayoutReady(ctx, tx.Suppliers(), f.ready)
		require.NoError(t, err)
		require.True(t, ready)

		ready, err = gate.IsPayoutReady(ctx, tx.Suppliers(), f.unready)
		require.NoError(t, err)
		require.False(t, ready)

		_, err = gate.IsPayoutReady(ctx, tx.Suppliers(), f.stranger)
		require.ErrorIs(t, err, ports.ErrSupplierNotFound)

		require.NoError(t, gate.AssertPayoutReady(ctx, tx.Suppliers(), f.unready, false))
		require.NoError(t, gate.AssertPayoutReady(ctx, tx.Suppliers(), f.ready, true))

		err = gate.AssertPayoutReady(ctx, tx.Suppliers(), f.unready, true)
		var notReady *domain.PayoutNotReadyError
		require.True(t, errors.As(err, &notReady))
		require.Equal(t, f.unready, notReady.SupplierID)
		require.ErrorIs(t, err, domain.ErrPayoutNotReady)
		return nil
	})
	require.NoError(t, err)
}

func TestIntegrityGuard(t *testing.T) {
	f := newFixture(t, domain.PricingModeManual)
	guard := IntegrityGuard{}
	baseID := uuid.New()
	variantOfferID := uuid.New()
	f.store.AddOrderItem(offermemory.OrderItem{ProductID: f.p2, BaseOfferID: &baseID})

	err := f.store.Do(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		err := guard.AssertDeletable(ctx, tx, OfferScope(domain.BaseRef(baseID)))
		require.ErrorIs(t, err, domain.ErrOfferReferenced)
		require.Contains(t, err.Error(), "1 order item")

		require.NoError(t, guard.AssertDeletable(ctx, tx, OfferScope(domain.VariantRef(variantOfferID))))
		require.NoError(t, guard.AssertDeletable(ctx, tx, ProductScope(f.p1)))

		err = guard.AssertDeletable(ctx, tx, ProductScope(f.p2))
		require.ErrorIs(t, err, domain.ErrProductReferenced)

		err = guard.AssertDeletable(ctx, tx, OfferScope(domain.OfferRef{}))
		require.ErrorIs(t, err, domain.ErrInvalidOfferRef)
		return nil
	})
	require.NoError(t, err)
}

func TestMapError_Classes(t *testing.T) {
	cases := []struct {
		in   error
		want Kind
	}{
		{in: domain.ErrNegativePrice, want: KindValidation},
		{in: domain.ErrVariantNotInProduct, want: KindValidation},
		{in: ports.ErrProductNotFound, want: KindNotFound},
		{in: domain.ErrOfferNotOwned, want: KindNotFound},
		{in: domain.ErrOfferReferenced, want: KindConflict},
		{in: ports.ErrDuplicate, want: KindConflict},
		{in: &domain.PayoutNotReadyError{}, want: KindPayoutNotReady},
		{in: domain.ErrDeleteNotApplied, want: KindInternal},
		{in: errors.New("boom"), want: KindInternal},
	}
	for _, tc := range cases {
		got := mapError(tc.in)
		require.Equal(t, tc.want, KindOf(got), tc.in.Error())
		require.ErrorIs(t, got, tc.in)
	}

	classified := mapError(mapError(domain.ErrMissingProduct))
	require.Equal(t, KindValidation, KindOf(classified))
	require.NoError(t, mapError(nil))
	require.Equal(t, KindNone, KindOf(nil))
}
