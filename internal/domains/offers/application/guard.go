package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

// DeleteScope names what is about to disappear: one offer or a whole product.
type DeleteScope struct {
	Offer     *domain.OfferRef
	ProductID uuid.UUID
}

func OfferScope(ref domain.OfferRef) DeleteScope { return DeleteScope{Offer: &ref} }

func ProductScope(productID uuid.UUID) DeleteScope { return DeleteScope{ProductID: productID} }

// IntegrityGuard refuses deletes and conversions that would orphan order items.
type IntegrityGuard struct{}

// AssertDeletable fails with a Conflict-class error while any order item
// references the scope.
func (IntegrityGuard) AssertDeletable(ctx context.Context, tx ports.Tx, scope DeleteScope) error {
	if scope.Offer != nil {
		query := ports.ReferenceQuery{}
		switch scope.Offer.Kind {
		case domain.OfferKindBase:
			query.BaseOfferIDs = []uuid.UUID{scope.Offer.ID}
		case domain.OfferKindVariant:
			query.VariantOfferIDs = []uuid.UUID{scope.Offer.ID}
		default:
			return domain.ErrInvalidOfferRef
		}
		count, err := tx.Orders().CountReferences(ctx, query)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %s is referenced by %d order item(s) and cannot be deleted or converted",
				domain.ErrOfferReferenced, scope.Offer, count)
		}
		return nil
	}

	query, err := productReferenceQuery(ctx, tx, scope.ProductID)
	if err != nil {
		return err
	}
	count, err := tx.Orders().CountReferences(ctx, query)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: product %s is referenced by %d order item(s); its offers cannot be removed",
			domain.ErrProductReferenced, scope.ProductID, count)
	}
	return nil
}

// productReferenceQuery covers the product, its variants and every offer on them.
func productReferenceQuery(ctx context.Context, tx ports.Tx, productID uuid.UUID) (ports.ReferenceQuery, error) {
	variants, err := tx.Catalog().ListVariants(ctx, productID)
	if err != nil {
		return ports.ReferenceQuery{}, err
	}
	query := ports.ReferenceQuery{ProductIDs: []uuid.UUID{productID}}
	for _, v := range variants {
		query.VariantIDs = append(query.VariantIDs, v.ID)
	}
	bases, err := tx.Offers().ListBaseByProduct(ctx, productID)
	if err != nil {
		return ports.ReferenceQuery{}, err
	}
	for _, o := range bases {
		query.BaseOfferIDs = append(query.BaseOfferIDs, o.ID)
	}
	variantOffers, err := tx.Offers().ListVariantByProduct(ctx, productID, query.VariantIDs)
	if err != nil {
		return ports.ReferenceQuery{}, err
	}
	for _, o := range variantOffers {
		query.VariantOfferIDs = append(query.VariantOfferIDs, o.ID)
	}
	return query, nil
}
