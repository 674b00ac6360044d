package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

var _ ports.OfferRepository = (*offerRepository)(nil)

type offerRepository struct {
	tx *memTx
}

func (r *offerRepository) GetBase(_ context.Context, id uuid.UUID) (*domain.BaseOffer, error) {
	offer, ok := r.tx.data.bases[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return offer.Clone(), nil
}

func (r *offerRepository) FindBase(_ context.Context, supplierID, productID uuid.UUID) (*domain.BaseOffer, error) {
	if offer := r.baseByKey(supplierID, productID); offer != nil {
		return offer.Clone(), nil
	}
	return nil, nil
}

func (r *offerRepository) ListBaseByProduct(_ context.Context, productID uuid.UUID) ([]*domain.BaseOffer, error) {
	var list []*domain.BaseOffer
	for _, offer := range r.tx.data.bases {
		if offer.ProductID == productID {
			list = append(list, offer.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return lessByCreation(list[i].CreatedAt, list[j].CreatedAt, list[i].ID, list[j].ID)
	})
	return list, nil
}

func (r *offerRepository) CreateBase(_ context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error) {
	if offer == nil {
		return nil, errors.New("base offer is nil")
	}
	if r.baseByKey(offer.SupplierID, offer.ProductID) != nil {
		return nil, ports.ErrDuplicate
	}
	if _, taken := r.tx.data.bases[offer.ID]; taken || offer.ID == uuid.Nil {
		offer = offer.Clone()
		offer.ID = uuid.New()
	}
	return r.insertBase(offer), nil
}

func (r *offerRepository) UpsertBase(_ context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error) {
	if offer == nil {
		return nil, errors.New("base offer is nil")
	}
	existing := r.baseByKey(offer.SupplierID, offer.ProductID)
	if existing == nil {
		if offer.ID == uuid.Nil {
			offer = offer.Clone()
			offer.ID = uuid.New()
		}
		return r.insertBase(offer), nil
	}
	existing.Terms = offer.Clone().Terms
	existing.Refresh()
	existing.UpdatedAt = r.tx.now()
	return existing.Clone(), nil
}

func (r *offerRepository) UpdateBase(_ context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error) {
	if offer == nil {
		return nil, errors.New("base offer is nil")
	}
	existing, ok := r.tx.data.bases[offer.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if other := r.baseByKey(offer.SupplierID, offer.ProductID); other != nil && other.ID != offer.ID {
		return nil, ports.ErrDuplicate
	}
	updated := offer.Clone()
	updated.Refresh()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.tx.now()
	r.tx.data.bases[offer.ID] = updated
	return updated.Clone(), nil
}

func (r *offerRepository) DeleteBase(_ context.Context, id uuid.UUID) error {
	if _, ok := r.tx.data.bases[id]; !ok {
		return ports.ErrNotFound
	}
	if r.tx.keep(domain.BaseRef(id)) {
		return nil
	}
	delete(r.tx.data.bases, id)
	return nil
}

func (r *offerRepository) GetVariant(_ context.Context, id uuid.UUID) (*domain.VariantOffer, error) {
	offer, ok := r.tx.data.variantOffers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return offer.Clone(), nil
}

func (r *offerRepository) FindVariant(_ context.Context, supplierID, variantID uuid.UUID) (*domain.VariantOffer, error) {
	if offer := r.variantByKey(supplierID, variantID); offer != nil {
		return offer.Clone(), nil
	}
	return nil, nil
}

func (r *offerRepository) ListVariantByProduct(_ context.Context, productID uuid.UUID, variantIDs []uuid.UUID) ([]*domain.VariantOffer, error) {
	wanted := make(map[uuid.UUID]bool, len(variantIDs))
	for _, id := range variantIDs {
		wanted[id] = true
	}
	var list []*domain.VariantOffer
	for _, offer := range r.tx.data.variantOffers {
		if offer.ProductID == productID || wanted[offer.VariantID] {
			list = append(list, offer.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return lessByCreation(list[i].CreatedAt, list[j].CreatedAt, list[i].ID, list[j].ID)
	})
	return list, nil
}

func (r *offerRepository) CreateVariant(_ context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error) {
	if offer == nil {
		return nil, errors.New("variant offer is nil")
	}
	if r.variantByKey(offer.SupplierID, offer.VariantID) != nil {
		return nil, ports.ErrDuplicate
	}
	if _, taken := r.tx.data.variantOffers[offer.ID]; taken || offer.ID == uuid.Nil {
		offer = offer.Clone()
		offer.ID = uuid.New()
	}
	return r.insertVariant(offer), nil
}

func (r *offerRepository) UpsertVariant(_ context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error) {
	if offer == nil {
		return nil, errors.New("variant offer is nil")
	}
	existing := r.variantByKey(offer.SupplierID, offer.VariantID)
	if existing == nil {
		if offer.ID == uuid.Nil {
			offer = offer.Clone()
			offer.ID = uuid.New()
		}
		return r.insertVariant(offer), nil
	}
	incoming := offer.Clone()
	existing.ProductID = incoming.ProductID
	existing.BaseOfferID = incoming.BaseOfferID
	existing.Terms = incoming.Terms
	existing.Refresh()
	existing.UpdatedAt = r.tx.now()
	return existing.Clone(), nil
}

func (r *offerRepository) UpdateVariant(_ context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error) {
	if offer == nil {
		return nil, errors.New("variant offer is nil")
	}
	existing, ok := r.tx.data.variantOffers[offer.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if other := r.variantByKey(offer.SupplierID, offer.VariantID); other != nil && other.ID != offer.ID {
		return nil, ports.ErrDuplicate
	}
	updated := offer.Clone()
	updated.Refresh()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.tx.now()
	r.tx.data.variantOffers[offer.ID] = updated
	return updated.Clone(), nil
}

func (r *offerRepository) DeleteVariant(_ context.Context, id uuid.UUID) error {
	if _, ok := r.tx.data.variantOffers[id]; !ok {
		return ports.ErrNotFound
	}
	if r.tx.keep(domain.VariantRef(id)) {
		return nil
	}
	delete(r.tx.data.variantOffers, id)
	return nil
}

func (r *offerRepository) DetachBase(_ context.Context, baseOfferID uuid.UUID) (int64, error) {
	var detached int64
	for _, offer := range r.tx.data.variantOffers {
		if offer.BaseOfferID != nil && *offer.BaseOfferID == baseOfferID {
			offer.BaseOfferID = nil
			offer.UpdatedAt = r.tx.now()
			detached++
		}
	}
	return detached, nil
}

func (r *offerRepository) insertBase(offer *domain.BaseOffer) *domain.BaseOffer {
	stored := offer.Clone()
	stored.Refresh()
	stored.CreatedAt = r.tx.now()
	stored.UpdatedAt = stored.CreatedAt
	r.tx.data.bases[stored.ID] = stored
	return stored.Clone()
}

func (r *offerRepository) insertVariant(offer *domain.VariantOffer) *domain.VariantOffer {
	stored := offer.Clone()
	stored.Refresh()
	stored.CreatedAt = r.tx.now()
	stored.UpdatedAt = stored.CreatedAt
	r.tx.data.variantOffers[stored.ID] = stored
	return stored.Clone()
}

func (r *offerRepository) baseByKey(supplierID, productID uuid.UUID) *domain.BaseOffer {
	for _, offer := range r.tx.data.bases {
		if offer.SupplierID == supplierID && offer.ProductID == productID {
			return offer
		}
	}
	return nil
}

func (r *offerRepository) variantByKey(supplierID, variantID uuid.UUID) *domain.VariantOffer {
	for _, offer := range r.tx.data.variantOffers {
		if offer.SupplierID == supplierID && offer.VariantID == variantID {
			return offer
		}
	}
	return nil
}
