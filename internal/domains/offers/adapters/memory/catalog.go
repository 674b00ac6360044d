package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

var (
	_ ports.CatalogRepository = (*catalogRepository)(nil)
	_ ports.SupplierDirectory = (*supplierDirectory)(nil)
	_ ports.OrderReferences   = (*orderReferences)(nil)
)

type catalogRepository struct {
	tx *memTx
}

func (r *catalogRepository) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := r.tx.data.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

// LockProduct needs no extra work: the store lock already serializes units of work.
func (r *catalogRepository) LockProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r *catalogRepository) GetVariant(_ context.Context, id uuid.UUID) (*domain.Variant, error) {
	variant, ok := r.tx.data.variants[id]
	if !ok {
		return nil, ports.ErrVariantNotFound
	}
	return cloneVariant(variant), nil
}

func (r *catalogRepository) ListVariants(_ context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	var list []*domain.Variant
	for _, variant := range r.tx.data.variants {
		if variant.ProductID == productID {
			list = append(list, cloneVariant(variant))
		}
	}
	sort.Slice(list, func(i, j int) bool { return bytes.Compare(list[i].ID[:], list[j].ID[:]) < 0 })
	return list, nil
}

func (r *catalogRepository) SaveStock(_ context.Context, stock domain.ProductStock) error {
	product, ok := r.tx.data.products[stock.ProductID]
	if !ok {
		return ports.ErrProductNotFound
	}
	product.AvailableQty = stock.AvailableQty
	product.InStock = stock.InStock
	product.AutoPrice = nil
	if stock.AutoPrice != nil {
		price := *stock.AutoPrice
		product.AutoPrice = &price
	}
	for _, vs := range stock.Variants {
		if variant, ok := r.tx.data.variants[vs.VariantID]; ok {
			variant.AvailableQty = vs.AvailableQty
			variant.InStock = vs.InStock
		}
	}
	return nil
}

func (r *catalogRepository) ListProductIDs(_ context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.tx.data.products))
	for id := range r.tx.data.products {
		if bytes.Compare(id[:], after[:]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type supplierDirectory struct {
	tx *memTx
}

func (d *supplierDirectory) PayoutProfile(_ context.Context, supplierID uuid.UUID) (*domain.PayoutProfile, error) {
	profile, ok := d.tx.data.suppliers[supplierID]
	if !ok {
		return nil, ports.ErrSupplierNotFound
	}
	clone := *profile
	return &clone, nil
}

type orderReferences struct {
	tx *memTx
}

func (o *orderReferences) CountReferences(_ context.Context, query ports.ReferenceQuery) (int64, error) {
	if query.IsEmpty() {
		return 0, nil
	}
	products := toSet(query.ProductIDs)
	variants := toSet(query.VariantIDs)
	bases := toSet(query.BaseOfferIDs)
	variantOffers := toSet(query.VariantOfferIDs)

	var count int64
	for _, item := range o.tx.data.orderItems {
		if products[item.ProductID] ||
			(item.VariantID != nil && variants[*item.VariantID]) ||
			(item.BaseOfferID != nil && bases[*item.BaseOfferID]) ||
			(item.VariantOfferID != nil && variantOffers[*item.VariantOfferID]) {
			count++
		}
	}
	return count, nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func lessByCreation(a, b time.Time, aID, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return bytes.Compare(aID[:], bID[:]) < 0
}
