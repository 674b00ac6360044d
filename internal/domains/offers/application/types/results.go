package types

import (
	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

// OfferView holds exactly one of Base or Variant.
type OfferView struct {
	Base    *domain.BaseOffer    `json:"base,omitempty"`
	Variant *domain.VariantOffer `json:"variant,omitempty"`
}

func BaseView(o *domain.BaseOffer) OfferView       { return OfferView{Base: o} }
func VariantView(o *domain.VariantOffer) OfferView { return OfferView{Variant: o} }

func (v OfferView) Ref() domain.OfferRef {
	switch {
	case v.Base != nil:
		return v.Base.Ref()
	case v.Variant != nil:
		return v.Variant.Ref()
	default:
		return domain.OfferRef{}
	}
}

func (v OfferView) Kind() domain.OfferKind { return v.Ref().Kind }

func (v OfferView) SupplierID() uuid.UUID {
	if v.Base != nil {
		return v.Base.SupplierID
	}
	if v.Variant != nil {
		return v.Variant.SupplierID
	}
	return uuid.Nil
}

func (v OfferView) ProductID() uuid.UUID {
	if v.Base != nil {
		return v.Base.ProductID
	}
	if v.Variant != nil {
		return v.Variant.ProductID
	}
	return uuid.Nil
}

// Terms returns the commercial fields of whichever offer is set.
func (v OfferView) Terms() domain.Terms {
	if v.Base != nil {
		return v.Base.Terms
	}
	if v.Variant != nil {
		return v.Variant.Terms
	}
	return domain.Terms{}
}

// OfferMutationResult is returned by every write that leaves an offer behind.
type OfferMutationResult struct {
	Offer OfferView
	Stock domain.ProductStock
}

type DeleteOfferResult struct {
	Ref   domain.OfferRef
	Stock domain.ProductStock
}

type DeleteProductOffersResult struct {
	ProductID            uuid.UUID
	BaseOffersDeleted    int
	VariantOffersDeleted int
	Stock                domain.ProductStock
}

// RepairReport summarizes one product repair.
type RepairReport struct {
	ProductID        uuid.UUID
	Examined         int
	ProductIDsFixed  int
	BaseLinksFixed   int
	AffectedProducts []uuid.UUID
	Stock            domain.ProductStock
}

// Changed reports whether the repair rewrote any row.
func (r RepairReport) Changed() bool {
	return r.ProductIDsFixed > 0 || r.BaseLinksFixed > 0
}

// ProductOffers is the read model for one product.
type ProductOffers struct {
	Product       domain.Product
	Variants      []*domain.Variant
	BaseOffers    []*domain.BaseOffer
	VariantOffers []*domain.VariantOffer
}

// PayoutStatus tells a supplier whether they may publish purchasable offers.
type PayoutStatus struct {
	SupplierID  uuid.UUID
	Ready       bool
	Missing     []string
	Remediation string
}

type ProductPage struct {
	ProductIDs []uuid.UUID
	Next       uuid.UUID
	Done       bool
}

// CatalogRepairSummary aggregates a sweep over many products.
type CatalogRepairSummary struct {
	ProductsExamined int
	ProductsChanged  int
	OffersFixed      int
	Failed           []string
}

// Add folds one product report into the summary.
func (s *CatalogRepairSummary) Add(report *RepairReport) {
	s.ProductsExamined++
	if report == nil {
		return
	}
	if report.Changed() {
		s.ProductsChanged++
	}
	s.OffersFixed += report.ProductIDsFixed + report.BaseLinksFixed
}

// Merge folds a partial summary, such as one page of a sweep, into s.
func (s *CatalogRepairSummary) Merge(other CatalogRepairSummary) {
	s.ProductsExamined += other.ProductsExamined
	s.ProductsChanged += other.ProductsChanged
	s.OffersFixed += other.OffersFixed
	s.Failed = append(s.Failed, other.Failed...)
}
