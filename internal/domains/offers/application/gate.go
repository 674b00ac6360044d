package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

// PayoutGate decides whether a supplier may publish purchasable offers.
// It only reads persisted profile fields.
type PayoutGate struct{}

// IsPayoutReady loads the supplier's payout profile and checks readiness.
func (PayoutGate) IsPayoutReady(ctx context.Context, suppliers ports.SupplierDirectory, supplierID uuid.UUID) (bool, error) {
	profile, err := suppliers.PayoutProfile(ctx, supplierID)
	if err != nil {
		return false, err
	}
	return profile.IsPayoutReady(), nil
}

// OfferBecomesPurchasable mirrors domain.OfferBecomesPurchasable for callers holding only the gate.
func (PayoutGate) OfferBecomesPurchasable(isActive, inStock bool, qty int, price decimal.Decimal) bool {
	return domain.OfferBecomesPurchasable(isActive, inStock, qty, price)
}

// AssertPayoutReady is a no-op unless the write would be purchasable, in which
// case an unready supplier yields a *domain.PayoutNotReadyError.
func (PayoutGate) AssertPayoutReady(ctx context.Context, suppliers ports.SupplierDirectory, supplierID uuid.UUID, wouldBePurchasable bool) error {
	if !wouldBePurchasable {
		return nil
	}
	profile, err := suppliers.PayoutProfile(ctx, supplierID)
	if err != nil {
		return err
	}
	if missing := profile.MissingPayoutFields(); len(missing) > 0 {
		return &domain.PayoutNotReadyError{SupplierID: supplierID, Missing: missing}
	}
	return nil
}

// assertTerms gates a pending write on its resulting terms.
func (g PayoutGate) assertTerms(ctx context.Context, suppliers ports.SupplierDirectory, supplierID uuid.UUID, terms domain.Terms) error {
	return g.AssertPayoutReady(ctx, suppliers, supplierID, terms.Purchasable())
}
