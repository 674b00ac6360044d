package domain

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingMode selects whether the product price follows its offers.
type PricingMode string

const (
	PricingModeManual PricingMode = "manual"
	PricingModeAuto   PricingMode = "auto"
)

// Product holds the cached availability and price the aggregator maintains.
type Product struct {
	ID           uuid.UUID
	PricingMode  PricingMode
	AvailableQty int
	InStock      bool
	AutoPrice    *decimal.Decimal
}

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Options   map[string]string
	// Legacy caches kept in sync for older readers.
	AvailableQty int
	InStock      bool
}

// ProductStock is the aggregate the recompute writes back to the catalog.
type ProductStock struct {
	ProductID    uuid.UUID
	PricingMode  PricingMode
	AvailableQty int
	InStock      bool
	AutoPrice    *decimal.Decimal
	Variants     []VariantStock
}

// VariantStock is the per-variant share of a ProductStock.
type VariantStock struct {
	VariantID    uuid.UUID
	AvailableQty int
	InStock      bool
}

// Counts reports whether an offer contributes quantity to the product caches.
func (t Terms) Counts() bool {
	return t.IsActive && t.InStock && t.AvailableQty > 0
}

// StockInput is everything ComputeProductStock needs, already loaded.
type StockInput struct {
	Product       *Product
	Variants      []*Variant
	BaseOffers    []*BaseOffer
	VariantOffers []*VariantOffer
	// PayoutReady answers readiness for suppliers of base offers.
	PayoutReady map[uuid.UUID]bool
}

// ComputeProductStock derives the product caches from the live offer set.
// The result depends only on its input, so recomputing twice is a no-op.
func ComputeProductStock(in StockInput) ProductStock {
	stock := ProductStock{ProductID: in.Product.ID, PricingMode: in.Product.PricingMode}

	perVariant := make(map[uuid.UUID]int, len(in.Variants))
	owned := make(map[uuid.UUID]bool, len(in.Variants))
	for _, v := range in.Variants {
		owned[v.ID] = true
		perVariant[v.ID] = 0
	}

	for _, offer := range in.BaseOffers {
		if offer.ProductID != in.Product.ID || !offer.Counts() {
			continue
		}
		stock.AvailableQty += offer.AvailableQty
	}
	for _, offer := range in.VariantOffers {
		if !owned[offer.VariantID] || !offer.Counts() {
			continue
		}
		stock.AvailableQty += offer.AvailableQty
		perVariant[offer.VariantID] += offer.AvailableQty
	}
	stock.InStock = stock.AvailableQty > 0

	if in.Product.PricingMode == PricingModeAuto {
		var best *decimal.Decimal
		for _, offer := range in.BaseOffers {
			if offer.ProductID != in.Product.ID || !offer.Purchasable() || !in.PayoutReady[offer.SupplierID] {
				continue
			}
			if best == nil || offer.Price.LessThan(*best) {
				price := offer.Price
				best = &price
			}
		}
		stock.AutoPrice = best
	}

	stock.Variants = make([]VariantStock, 0, len(perVariant))
	for id, qty := range perVariant {
		stock.Variants = append(stock.Variants, VariantStock{VariantID: id, AvailableQty: qty, InStock: qty > 0})
	}
	sort.Slice(stock.Variants, func(i, j int) bool {
		return stock.Variants[i].VariantID.String() < stock.Variants[j].VariantID.String()
	})
	return stock
}
