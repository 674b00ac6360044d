package types

import (
	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

// SupplierContext is resolved by the auth layer and trusted by the core.
type SupplierContext struct {
	SupplierID           uuid.UUID
	IsAdminImpersonating bool
}

// UpsertBaseOfferInput creates or updates the caller's offer for a product.
type UpsertBaseOfferInput struct {
	Actor     SupplierContext
	ProductID uuid.UUID
	Fields    domain.OfferFields
}

// UpsertVariantOfferInput creates or updates the caller's offer for a variant.
// ExpectedProductID, when set, must match the variant's product.
type UpsertVariantOfferInput struct {
	Actor             SupplierContext
	VariantID         uuid.UUID
	ExpectedProductID *uuid.UUID
	Fields            domain.OfferFields
}

// PatchOfferInput updates selected terms of an existing offer.
type PatchOfferInput struct {
	Actor  SupplierContext
	Ref    domain.OfferRef
	Fields domain.OfferFields
}

// ConvertOfferInput flips an offer between base and variant kind.
// TargetVariantID is required when converting a base offer.
type ConvertOfferInput struct {
	Actor           SupplierContext
	Ref             domain.OfferRef
	TargetVariantID *uuid.UUID
}

type DeleteOfferInput struct {
	Actor SupplierContext
	Ref   domain.OfferRef
}

type DeleteProductOffersInput struct {
	Actor     SupplierContext
	ProductID uuid.UUID
}

type RepairProductInput struct {
	ProductID uuid.UUID
}

// ProductPageInput is a keyset cursor over product ids.
type ProductPageInput struct {
	After uuid.UUID
	Limit int
}

// RepairCatalogInput configures a catalog-wide repair sweep.
type RepairCatalogInput struct {
	BatchSize     int
	RatePerSecond float64
}
