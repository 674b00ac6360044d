package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

// StockAggregator rebuilds the cached product availability and price from
// the live offer set. It always runs inside the caller's unit of work.
type StockAggregator struct {
	gate PayoutGate
}

// Recompute locks the product row, derives the caches and writes them back.
func (a StockAggregator) Recompute(ctx context.Context, tx ports.Tx, productID uuid.UUID) (domain.ProductStock, error) {
	product, err := tx.Catalog().LockProduct(ctx, productID)
	if err != nil {
		return domain.ProductStock{}, err
	}
	variants, err := tx.Catalog().ListVariants(ctx, productID)
	if err != nil {
		return domain.ProductStock{}, err
	}
	variantIDs := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		variantIDs = append(variantIDs, v.ID)
	}
	bases, err := tx.Offers().ListBaseByProduct(ctx, productID)
	if err != nil {
		return domain.ProductStock{}, err
	}
	variantOffers, err := tx.Offers().ListVariantByProduct(ctx, productID, variantIDs)
	if err != nil {
		return domain.ProductStock{}, err
	}

	ready := map[uuid.UUID]bool{}
	if product.PricingMode == domain.PricingModeAuto {
		for _, offer := range bases {
			if !offer.Purchasable() {
				continue
			}
			if _, seen := ready[offer.SupplierID]; seen {
				continue
			}
			ok, err := a.gate.IsPayoutReady(ctx, tx.Suppliers(), offer.SupplierID)
			if err != nil && !errors.Is(err, ports.ErrSupplierNotFound) {
				return domain.ProductStock{}, err
			}
			ready[offer.SupplierID] = ok
		}
	}

	stock := domain.ComputeProductStock(domain.StockInput{
		Product:       product,
		Variants:      variants,
		BaseOffers:    bases,
		VariantOffers: variantOffers,
		PayoutReady:   ready,
	})
	if err := tx.Catalog().SaveStock(ctx, stock); err != nil {
		return domain.ProductStock{}, err
	}
	return stock, nil
}
