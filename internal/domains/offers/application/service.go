package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

const (
	// DefaultCurrency applies to new offers that name no currency and have no base to inherit from.
	DefaultCurrency = "USD"

	defaultPageSize = 100
	maxPageSize     = 1000
)

// Service runs every offer mutation as one unit of work: validate, gate,
// guard, write, then recompute the product caches before commit.
type Service struct {
	uow             ports.UnitOfWork
	gate            PayoutGate
	guard           IntegrityGuard
	aggregator      StockAggregator
	defaultCurrency string
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithDefaultCurrency overrides DefaultCurrency. Invalid codes are ignored.
func WithDefaultCurrency(code string) Option {
	return func(s *Service) {
		if normalized, err := domain.NormalizeCurrency(code); err == nil {
			s.defaultCurrency = normalized
		}
	}
}

// NewService wires the offer service onto a unit of work.
func NewService(uow ports.UnitOfWork, opts ...Option) *Service {
	s := &Service{uow: uow, defaultCurrency: DefaultCurrency}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// UpsertBaseOffer creates or updates the caller's offer for a whole product.
func (s *Service) UpsertBaseOffer(ctx context.Context, input types.UpsertBaseOfferInput) (*types.OfferMutationResult, error) {
	supplierID := input.Actor.SupplierID
	if supplierID == uuid.Nil {
		return nil, mapError(domain.ErrMissingSupplier)
	}
	if input.ProductID == uuid.Nil {
		return nil, mapError(domain.ErrMissingProduct)
	}
	var result types.OfferMutationResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		if _, err := tx.Catalog().GetProduct(ctx, input.ProductID); err != nil {
			return err
		}
		if _, err := tx.Suppliers().PayoutProfile(ctx, supplierID); err != nil {
			return err
		}
		offer, err := tx.Offers().FindBase(ctx, supplierID, input.ProductID)
		if err != nil {
			return err
		}
		if offer == nil {
			terms, err := domain.NewTerms(input.Fields, s.defaultCurrency)
			if err != nil {
				return err
			}
			if offer, err = domain.NewBaseOffer(supplierID, input.ProductID, terms); err != nil {
				return err
			}
		} else {
			input.Fields.ApplyTo(&offer.Terms)
			if err := offer.Validate(); err != nil {
				return err
			}
		}
		if err := s.gate.assertTerms(ctx, tx.Suppliers(), supplierID, offer.Terms); err != nil {
			return err
		}
		saved, err := tx.Offers().UpsertBase(ctx, offer)
		if err != nil {
			return err
		}
		stock, err := s.aggregator.Recompute(ctx, tx, input.ProductID)
		if err != nil {
			return err
		}
		result = types.OfferMutationResult{Offer: types.BaseView(saved), Stock: stock}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &result, nil
}

// UpsertVariantOffer creates or updates the caller's offer for one variant.
// New offers link to the supplier's base offer on the same product and inherit
// its currency when none is given.
func (s *Service) UpsertVariantOffer(ctx context.Context, input types.UpsertVariantOfferInput) (*types.OfferMutationResult, error) {
	supplierID := input.Actor.SupplierID
	if supplierID == uuid.Nil {
		return nil, mapError(domain.ErrMissingSupplier)
	}
	if input.VariantID == uuid.Nil {
		return nil, mapError(domain.ErrMissingVariant)
	}
	var result types.OfferMutationResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		variant, err := tx.Catalog().GetVariant(ctx, input.VariantID)
		if err != nil {
			return err
		}
		if input.ExpectedProductID != nil && *input.ExpectedProductID != variant.ProductID {
			return domain.ErrVariantNotInProduct
		}
		if _, err := tx.Catalog().GetProduct(ctx, variant.ProductID); err != nil {
			return err
		}
		if _, err := tx.Suppliers().PayoutProfile(ctx, supplierID); err != nil {
			return err
		}
		base, err := tx.Offers().FindBase(ctx, supplierID, variant.ProductID)
		if err != nil {
			return err
		}
		offer, err := tx.Offers().FindVariant(ctx, supplierID, variant.ID)
		if err != nil {
			return err
		}
		touched := []uuid.UUID{variant.ProductID}
		if offer == nil {
			currency := s.defaultCurrency
			if base != nil {
				currency = base.Currency
			}
			terms, err := domain.NewTerms(input.Fields, currency)
			if err != nil {
				return err
			}
			if offer, err = domain.NewVariantOffer(supplierID, variant, nil, terms); err != nil {
				return err
			}
		} else {
			if offer.ProductID != variant.ProductID {
				touched = append(touched, offer.ProductID)
				offer.ProductID = variant.ProductID
			}
			input.Fields.ApplyTo(&offer.Terms)
			if err := offer.Validate(); err != nil {
				return err
			}
		}
		offer.LinkBase(base)
		if err := s.gate.assertTerms(ctx, tx.Suppliers(), supplierID, offer.Terms); err != nil {
			return err
		}
		saved, err := tx.Offers().UpsertVariant(ctx, offer)
		if err != nil {
			return err
		}
		stock, err := s.recompute(ctx, tx, touched...)
		if err != nil {
			return err
		}
		result = types.OfferMutationResult{Offer: types.VariantView(saved), Stock: stock}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &result, nil
}

// PatchOffer applies a partial update to an offer the caller owns.
func (s *Service) PatchOffer(ctx context.Context, input types.PatchOfferInput) (*types.OfferMutationResult, error) {
	var result types.OfferMutationResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		view, err := s.loadOwned(ctx, tx, input.Actor, input.Ref)
		if err != nil {
			return err
		}
		switch {
		case view.Base != nil:
			offer := view.Base
			input.Fields.ApplyTo(&offer.Terms)
			if err := offer.Validate(); err != nil {
				return err
			}
			if err := s.gate.assertTerms(ctx, tx.Suppliers(), offer.SupplierID, offer.Terms); err != nil {
				return err
			}
			saved, err := tx.Offers().UpdateBase(ctx, offer)
			if err != nil {
				return err
			}
			stock, err := s.recompute(ctx, tx, saved.ProductID)
			if err != nil {
				return err
			}
			result = types.OfferMutationResult{Offer: types.BaseView(saved), Stock: stock}
		default:
			offer := view.Variant
			input.Fields.ApplyTo(&offer.Terms)
			if err := offer.Validate(); err != nil {
				return err
			}
			if err := s.gate.assertTerms(ctx, tx.Suppliers(), offer.SupplierID, offer.Terms); err != nil {
				return err
			}
			saved, err := tx.Offers().UpdateVariant(ctx, offer)
			if err != nil {
				return err
			}
			stock, err := s.recompute(ctx, tx, saved.ProductID)
			if err != nil {
				return err
			}
			result = types.OfferMutationResult{Offer: types.VariantView(saved), Stock: stock}
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &result, nil
}

// ConvertOffer moves an offer between the base and variant tables, carrying
// price, currency, quantity, lead time and active flag across.
func (s *Service) ConvertOffer(ctx context.Context, input types.ConvertOfferInput) (*types.OfferMutationResult, error) {
	var result types.OfferMutationResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		view, err := s.loadOwned(ctx, tx, input.Actor, input.Ref)
		if err != nil {
			return err
		}
		if view.Base != nil {
			if input.TargetVariantID == nil || *input.TargetVariantID == uuid.Nil {
				return domain.ErrConversionTarget
			}
			return s.convertToVariant(ctx, tx, view.Base, *input.TargetVariantID, &result)
		}
		if input.TargetVariantID != nil {
			return domain.ErrConversionSameKind
		}
		return s.convertToBase(ctx, tx, view.Variant, &result)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &result, nil
}

func (s *Service) convertToVariant(ctx context.Context, tx ports.Tx, base *domain.BaseOffer, variantID uuid.UUID, result *types.OfferMutationResult) error {
	variant, err := tx.Catalog().GetVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if variant.ProductID != base.ProductID {
		return domain.ErrConversionCrossProduct
	}
	if err := s.guard.AssertDeletable(ctx, tx, OfferScope(base.Ref())); err != nil {
		return err
	}
	existing, err := tx.Offers().FindVariant(ctx, base.SupplierID, variant.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: supplier already has %s for variant %s", domain.ErrDuplicateOffer, existing.Ref(), variant.ID)
	}
	converted, err := base.ToVariant(variant)
	if err != nil {
		return err
	}
	if err := s.gate.assertTerms(ctx, tx.Suppliers(), converted.SupplierID, converted.Terms); err != nil {
		return err
	}
	if err := s.removeBase(ctx, tx, base.ID); err != nil {
		return err
	}
	created, err := tx.Offers().CreateVariant(ctx, converted)
	if err != nil {
		return err
	}
	stock, err := s.recompute(ctx, tx, base.ProductID)
	if err != nil {
		return err
	}
	*result = types.OfferMutationResult{Offer: types.VariantView(created), Stock: stock}
	return nil
}

func (s *Service) convertToBase(ctx context.Context, tx ports.Tx, offer *domain.VariantOffer, result *types.OfferMutationResult) error {
	variant, err := tx.Catalog().GetVariant(ctx, offer.VariantID)
	if err != nil {
		return err
	}
	touched := []uuid.UUID{variant.ProductID}
	if offer.ProductID != variant.ProductID {
		touched = append(touched, offer.ProductID)
		offer.ProductID = variant.ProductID
	}
	if err := s.guard.AssertDeletable(ctx, tx, OfferScope(offer.Ref())); err != nil {
		return err
	}
	existing, err := tx.Offers().FindBase(ctx, offer.SupplierID, offer.ProductID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: supplier already has %s for product %s", domain.ErrDuplicateOffer, existing.Ref(), offer.ProductID)
	}
	converted, err := offer.ToBase()
	if err != nil {
		return err
	}
	if err := s.gate.assertTerms(ctx, tx.Suppliers(), converted.SupplierID, converted.Terms); err != nil {
		return err
	}
	if err := s.removeVariant(ctx, tx, offer.ID); err != nil {
		return err
	}
	created, err := tx.Offers().CreateBase(ctx, converted)
	if err != nil {
		return err
	}
	stock, err := s.recompute(ctx, tx, touched...)
	if err != nil {
		return err
	}
	*result = types.OfferMutationResult{Offer: types.BaseView(created), Stock: stock}
	return nil
}

// DeleteOffer removes one offer. Variant offers linked to a deleted base
// offer are detached, never cascaded.
func (s *Service) DeleteOffer(ctx context.Context, input types.DeleteOfferInput) (*types.DeleteOfferResult, error) {
	var result types.DeleteOfferResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		view, err := s.loadOwned(ctx, tx, input.Actor, input.Ref)
		if err != nil {
			return err
		}
		if err := s.guard.AssertDeletable(ctx, tx, OfferScope(view.Ref())); err != nil {
			return err
		}
		touched := []uuid.UUID{view.ProductID()}
		if view.Base != nil {
			if err := s.removeBase(ctx, tx, view.Base.ID); err != nil {
				return err
			}
		} else {
			if variant, err := tx.Catalog().GetVariant(ctx, view.Variant.VariantID); err == nil && variant.ProductID != view.Variant.ProductID {
				touched = append(touched, variant.ProductID)
			}
			if err := s.removeVariant(ctx, tx, view.Variant.ID); err != nil {
				return err
			}
		}
		stock, err := s.recompute(ctx, tx, touched...)
		if err != nil {
			return err
		}
		result = types.DeleteOfferResult{Ref: view.Ref(), Stock: stock}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &result, nil
}

// DeleteProductOffers removes every base and variant offer of a product
// once no order item references the product, its variants or its offers.
func (s *Service) DeleteProductOffers(ctx context.Context, input types.DeleteProductOffersInput) (*types.DeleteProductOffersResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, mapError(domain.ErrMissingProduct)
	}
	var result types.DeleteProductOffersResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		if _, err := tx.Catalog().GetProduct(ctx, input.ProductID); err != nil {
			return err
		}
		if err := s.guard.AssertDeletable(ctx, tx, ProductScope(input.ProductID)); err != nil {
			return err
		}
		query, err := productReferenceQuery(ctx, tx, input.ProductID)
		if err != nil {
			return err
		}
		for _, id := range query.VariantOfferIDs {
			if err := s.removeVariant(ctx, tx, id); err != nil {
				return err
			}
		}
		for _, id := range query.BaseOfferIDs {
			if err := s.removeBase(ctx, tx, id); err != nil {
				return err
			}
		}
		stock, err := s.recompute(ctx, tx, input.ProductID)
		if err != nil {
			return err
		}
		result = types.DeleteProductOffersResult{
			ProductID:            input.ProductID,
			BaseOffersDeleted:    len(query.BaseOfferIDs),
			VariantOffersDeleted: len(query.VariantOfferIDs),
			Stock:                stock,
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &result, nil
}

// RepairProductOffers re-derives the denormalized product id and base link of
// every variant offer touching the product, then recomputes every product
// whose caches could have shifted. Running it twice changes nothing.
func (s *Service) RepairProductOffers(ctx context.Context, input types.RepairProductInput) (*types.RepairReport, error) {
	if input.ProductID == uuid.Nil {
		return nil, mapError(domain.ErrMissingProduct)
	}
	var report types.RepairReport
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		report = types.RepairReport{ProductID: input.ProductID}
		if _, err := tx.Catalog().GetProduct(ctx, input.ProductID); err != nil {
			return err
		}
		variants, err := tx.Catalog().ListVariants(ctx, input.ProductID)
		if err != nil {
			return err
		}
		owner := make(map[uuid.UUID]uuid.UUID, len(variants))
		variantIDs := make([]uuid.UUID, 0, len(variants))
		for _, v := range variants {
			owner[v.ID] = v.ProductID
			variantIDs = append(variantIDs, v.ID)
		}
		offers, err := tx.Offers().ListVariantByProduct(ctx, input.ProductID, variantIDs)
		if err != nil {
			return err
		}

		affected := map[uuid.UUID]bool{input.ProductID: true}
		for _, offer := range offers {
			report.Examined++
			productID, ok := owner[offer.VariantID]
			if !ok {
				variant, err := tx.Catalog().GetVariant(ctx, offer.VariantID)
				if errors.Is(err, ports.ErrVariantNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				productID = variant.ProductID
			}
			changed := false
			if offer.ProductID != productID {
				affected[offer.ProductID] = true
				affected[productID] = true
				offer.ProductID = productID
				report.ProductIDsFixed++
				changed = true
			}
			base, err := tx.Offers().FindBase(ctx, offer.SupplierID, offer.ProductID)
			if err != nil {
				return err
			}
			if offer.LinkBase(base) {
				report.BaseLinksFixed++
				changed = true
			}
			if !changed {
				continue
			}
			if _, err := tx.Offers().UpdateVariant(ctx, offer); err != nil {
				return err
			}
		}

		ids := make([]uuid.UUID, 0, len(affected))
		ids = append(ids, input.ProductID)
		for id := range affected {
			if id != input.ProductID {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids[1:], func(i, j int) bool { return ids[1+i].String() < ids[1+j].String() })
		stock, err := s.recompute(ctx, tx, ids...)
		if err != nil {
			return err
		}
		report.Stock = stock
		report.AffectedProducts = ids
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &report, nil
}

// RecomputeProductStock rebuilds the product caches on demand.
func (s *Service) RecomputeProductStock(ctx context.Context, productID uuid.UUID) (*domain.ProductStock, error) {
	var stock domain.ProductStock
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		stock, err = s.aggregator.Recompute(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &stock, nil
}

// GetOffer loads an offer by tagged reference.
func (s *Service) GetOffer(ctx context.Context, ref domain.OfferRef) (*types.OfferView, error) {
	var view types.OfferView
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		view, err = loadOffer(ctx, tx, ref)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &view, nil
}

// ListProductOffers returns the product caches with every offer on it.
func (s *Service) ListProductOffers(ctx context.Context, productID uuid.UUID) (*types.ProductOffers, error) {
	var result types.ProductOffers
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		product, err := tx.Catalog().GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		variants, err := tx.Catalog().ListVariants(ctx, productID)
		if err != nil {
			return err
		}
		variantIDs := make([]uuid.UUID, 0, len(variants))
		for _, v := range variants {
			variantIDs = append(variantIDs, v.ID)
		}
		bases, err := tx.Offers().ListBaseByProduct(ctx, productID)
		if err != nil {
			return err
		}
		variantOffers, err := tx.Offers().ListVariantByProduct(ctx, productID, variantIDs)
		if err != nil {
			return err
		}
		result = types.ProductOffers{Product: *product, Variants: variants, BaseOffers: bases, VariantOffers: variantOffers}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &result, nil
}

// PayoutStatus reports readiness and what is missing for a supplier.
func (s *Service) PayoutStatus(ctx context.Context, supplierID uuid.UUID) (*types.PayoutStatus, error) {
	var status types.PayoutStatus
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		profile, err := tx.Suppliers().PayoutProfile(ctx, supplierID)
		if err != nil {
			return err
		}
		missing := profile.MissingPayoutFields()
		status = types.PayoutStatus{SupplierID: supplierID, Ready: len(missing) == 0, Missing: missing}
		if !status.Ready {
			status.Remediation = (&domain.PayoutNotReadyError{SupplierID: supplierID, Missing: missing}).Remediation()
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &status, nil
}

// ListProductIDs pages through product ids in ascending order.
func (s *Service) ListProductIDs(ctx context.Context, input types.ProductPageInput) (*types.ProductPage, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	var page types.ProductPage
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		ids, err := tx.Catalog().ListProductIDs(ctx, input.After, limit)
		if err != nil {
			return err
		}
		page = types.ProductPage{ProductIDs: ids, Next: input.After, Done: len(ids) < limit}
		if len(ids) > 0 {
			page.Next = ids[len(ids)-1]
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &page, nil
}

func (s *Service) loadOwned(ctx context.Context, tx ports.Tx, actor types.SupplierContext, ref domain.OfferRef) (types.OfferView, error) {
	if actor.SupplierID == uuid.Nil {
		return types.OfferView{}, domain.ErrMissingSupplier
	}
	view, err := loadOffer(ctx, tx, ref)
	if err != nil {
		return types.OfferView{}, err
	}
	if view.SupplierID() != actor.SupplierID {
		return types.OfferView{}, fmt.Errorf("%w: %s", domain.ErrOfferNotOwned, ref)
	}
	return view, nil
}

func loadOffer(ctx context.Context, tx ports.Tx, ref domain.OfferRef) (types.OfferView, error) {
	switch ref.Kind {
	case domain.OfferKindBase:
		offer, err := tx.Offers().GetBase(ctx, ref.ID)
		if err != nil {
			return types.OfferView{}, err
		}
		return types.BaseView(offer), nil
	case domain.OfferKindVariant:
		offer, err := tx.Offers().GetVariant(ctx, ref.ID)
		if err != nil {
			return types.OfferView{}, err
		}
		return types.VariantView(offer), nil
	default:
		return types.OfferView{}, fmt.Errorf("%w: %q", domain.ErrInvalidOfferRef, ref.String())
	}
}

// removeBase detaches linked variant offers, deletes the row and confirms it is gone.
func (s *Service) removeBase(ctx context.Context, tx ports.Tx, id uuid.UUID) error {
	if _, err := tx.Offers().DetachBase(ctx, id); err != nil {
		return err
	}
	if err := tx.Offers().DeleteBase(ctx, id); err != nil {
		return err
	}
	_, err := tx.Offers().GetBase(ctx, id)
	return deletedOrFail(err, domain.BaseRef(id))
}

func (s *Service) removeVariant(ctx context.Context, tx ports.Tx, id uuid.UUID) error {
	if err := tx.Offers().DeleteVariant(ctx, id); err != nil {
		return err
	}
	_, err := tx.Offers().GetVariant(ctx, id)
	return deletedOrFail(err, domain.VariantRef(id))
}

// deletedOrFail turns a successful re-read after delete into ErrDeleteNotApplied.
func deletedOrFail(err error, ref domain.OfferRef) error {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("%w: %s", domain.ErrDeleteNotApplied, ref)
	}
}

// recompute refreshes each distinct product and returns the first one's stock.
func (s *Service) recompute(ctx context.Context, tx ports.Tx, productIDs ...uuid.UUID) (domain.ProductStock, error) {
	var first domain.ProductStock
	seen := make(map[uuid.UUID]bool, len(productIDs))
	for i, id := range productIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		stock, err := s.aggregator.Recompute(ctx, tx, id)
		if err != nil {
			if i > 0 && errors.Is(err, ports.ErrProductNotFound) {
				continue
			}
			return domain.ProductStock{}, err
		}
		if i == 0 {
			first = stock
		}
	}
	return first, nil
}

var _ ports.Service = (*Service)(nil)
