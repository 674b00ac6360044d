package mapper

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

// OfferPayload is the inbound body for upserts and patches. Quantity may
// arrive as availableQty, qty or stock; the first present alias wins in
// that order.
type OfferPayload struct {
	Price        Loose `json:"price"`
	Currency     Loose `json:"currency"`
	AvailableQty Loose `json:"availableQty"`
	Qty          Loose `json:"qty"`
	Stock        Loose `json:"stock"`
	LeadDays     Loose `json:"leadDays"`
	IsActive     Loose `json:"isActive"`
	// ProductID is only read by variant upserts to cross-check the variant.
	ProductID Loose `json:"productId"`
}

// ConvertPayload names the target variant when a base offer is converted.
type ConvertPayload struct {
	VariantID Loose `json:"variantId"`
}

// RepairCatalogPayload tunes a catalog-wide repair sweep.
type RepairCatalogPayload struct {
	BatchSize     Loose `json:"batchSize"`
	RatePerSecond Loose `json:"ratePerSecond"`
}

// ToOfferFields coerces the payload into normalized partial terms.
func ToOfferFields(p OfferPayload) (domain.OfferFields, error) {
	var fields domain.OfferFields
	errs := fieldErrors{}

	price, err := p.Price.Decimal()
	errs.add("price", err)
	fields.Price = price

	currency, err := p.Currency.Text()
	errs.add("currency", err)
	fields.Currency = currency

	for _, alias := range []struct {
		name  string
		value Loose
	}{{"availableQty", p.AvailableQty}, {"qty", p.Qty}, {"stock", p.Stock}} {
		if !alias.value.Present() {
			continue
		}
		qty, err := alias.value.Int()
		errs.add(alias.name, err)
		fields.AvailableQty = qty
		break
	}

	if p.LeadDays.Null() {
		fields.ClearLeadDays = true
	} else {
		days, err := p.LeadDays.Int()
		errs.add("leadDays", err)
		fields.LeadDays = days
	}

	active, err := p.IsActive.Bool()
	errs.add("isActive", err)
	fields.IsActive = active

	if err := errs.err(); err != nil {
		return domain.OfferFields{}, err
	}
	return fields, nil
}

// ToUpsertBaseInput builds the service command for PUT .../products/:id/offer.
func ToUpsertBaseInput(actor types.SupplierContext, productID uuid.UUID, p OfferPayload) (types.UpsertBaseOfferInput, error) {
	fields, err := ToOfferFields(p)
	if err != nil {
		return types.UpsertBaseOfferInput{}, err
	}
	return types.UpsertBaseOfferInput{Actor: actor, ProductID: productID, Fields: fields}, nil
}

// ToUpsertVariantInput builds the service command for PUT .../variants/:id/offer.
func ToUpsertVariantInput(actor types.SupplierContext, variantID uuid.UUID, p OfferPayload) (types.UpsertVariantOfferInput, error) {
	fields, err := ToOfferFields(p)
	if err != nil {
		return types.UpsertVariantOfferInput{}, err
	}
	expected, err := p.ProductID.UUID()
	if err != nil {
		return types.UpsertVariantOfferInput{}, fieldErrors{"productId": err.Error()}.err()
	}
	return types.UpsertVariantOfferInput{Actor: actor, VariantID: variantID, ExpectedProductID: expected, Fields: fields}, nil
}

func ToPatchInput(actor types.SupplierContext, ref domain.OfferRef, p OfferPayload) (types.PatchOfferInput, error) {
	fields, err := ToOfferFields(p)
	if err != nil {
		return types.PatchOfferInput{}, err
	}
	return types.PatchOfferInput{Actor: actor, Ref: ref, Fields: fields}, nil
}

func ToConvertInput(actor types.SupplierContext, ref domain.OfferRef, p ConvertPayload) (types.ConvertOfferInput, error) {
	target, err := p.VariantID.UUID()
	if err != nil {
		return types.ConvertOfferInput{}, fieldErrors{"variantId": err.Error()}.err()
	}
	return types.ConvertOfferInput{Actor: actor, Ref: ref, TargetVariantID: target}, nil
}

// ToRepairCatalogInput leaves zero values for the orchestrator defaults.
func ToRepairCatalogInput(p RepairCatalogPayload) (types.RepairCatalogInput, error) {
	errs := fieldErrors{}
	var input types.RepairCatalogInput
	batch, err := p.BatchSize.Int()
	errs.add("batchSize", err)
	if batch != nil {
		input.BatchSize = *batch
	}
	rate, err := p.RatePerSecond.Decimal()
	errs.add("ratePerSecond", err)
	if rate != nil {
		input.RatePerSecond = rate.InexactFloat64()
	}
	return input, errs.err()
}

// Offer is the HTTP representation of either offer kind.
type Offer struct {
	Ref          string          `json:"ref"`
	Kind         string          `json:"kind"`
	ID           uuid.UUID       `json:"id"`
	SupplierID   uuid.UUID       `json:"supplierId"`
	ProductID    uuid.UUID       `json:"productId"`
	VariantID    *uuid.UUID      `json:"variantId,omitempty"`
	BaseOfferID  *uuid.UUID      `json:"baseOfferId,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	AvailableQty int             `json:"availableQty"`
	LeadDays     *int            `json:"leadDays"`
	IsActive     bool            `json:"isActive"`
	InStock      bool            `json:"inStock"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type VariantStock struct {
	VariantID    uuid.UUID `json:"variantId"`
	AvailableQty int       `json:"availableQty"`
	InStock      bool      `json:"inStock"`
}

// ProductStock mirrors the cached availability written back to the product.
type ProductStock struct {
	ProductID    uuid.UUID        `json:"productId"`
	PricingMode  string           `json:"pricingMode"`
	AvailableQty int              `json:"availableQty"`
	InStock      bool             `json:"inStock"`
	AutoPrice    *decimal.Decimal `json:"autoPrice"`
	Variants     []VariantStock   `json:"variants,omitempty"`
}

type OfferMutation struct {
	Offer Offer        `json:"offer"`
	Stock ProductStock `json:"stock"`
}

type OfferDeletion struct {
	Ref   string       `json:"ref"`
	Stock ProductStock `json:"stock"`
}

type ProductOffersDeletion struct {
	ProductID            uuid.UUID    `json:"productId"`
	BaseOffersDeleted    int          `json:"baseOffersDeleted"`
	VariantOffersDeleted int          `json:"variantOffersDeleted"`
	Stock                ProductStock `json:"stock"`
}

type Variant struct {
	ID           uuid.UUID         `json:"id"`
	Options      map[string]string `json:"options,omitempty"`
	AvailableQty int               `json:"availableQty"`
	InStock      bool              `json:"inStock"`
}

// ProductOffers is the read model for GET /v1/products/:productId/offers.
type ProductOffers struct {
	Product       ProductStock `json:"product"`
	Variants      []Variant    `json:"variants"`
	BaseOffers    []Offer      `json:"baseOffers"`
	VariantOffers []Offer      `json:"variantOffers"`
}

type PayoutStatus struct {
	SupplierID  uuid.UUID `json:"supplierId"`
	Ready       bool      `json:"ready"`
	Missing     []string  `json:"missing,omitempty"`
	Remediation string    `json:"remediation,omitempty"`
}

type RepairReport struct {
	ProductID        uuid.UUID    `json:"productId"`
	Examined         int          `json:"examined"`
	ProductIDsFixed  int          `json:"productIdsFixed"`
	BaseLinksFixed   int          `json:"baseLinksFixed"`
	AffectedProducts []uuid.UUID  `json:"affectedProducts,omitempty"`
	Stock            ProductStock `json:"stock"`
}

type CatalogRepairSummary struct {
	ProductsExamined int      `json:"productsExamined"`
	ProductsChanged  int      `json:"productsChanged"`
	OffersFixed      int      `json:"offersFixed"`
	Failed           []string `json:"failed,omitempty"`
}

// FromOfferView maps whichever offer the view holds.
func FromOfferView(view types.OfferView) Offer {
	switch {
	case view.Base != nil:
		return FromBaseOffer(view.Base)
	case view.Variant != nil:
		return FromVariantOffer(view.Variant)
	default:
		return Offer{}
	}
}

func FromBaseOffer(o *domain.BaseOffer) Offer {
	return fromTerms(o.Ref(), o.SupplierID, o.ProductID, o.Terms, o.CreatedAt, o.UpdatedAt)
}

func FromVariantOffer(o *domain.VariantOffer) Offer {
	out := fromTerms(o.Ref(), o.SupplierID, o.ProductID, o.Terms, o.CreatedAt, o.UpdatedAt)
	variantID := o.VariantID
	out.VariantID = &variantID
	if o.BaseOfferID != nil {
		baseID := *o.BaseOfferID
		out.BaseOfferID = &baseID
	}
	return out
}

func fromTerms(ref domain.OfferRef, supplierID, productID uuid.UUID, t domain.Terms, created, updated time.Time) Offer {
	var leadDays *int
	if t.LeadDays != nil {
		days := *t.LeadDays
		leadDays = &days
	}
	return Offer{
		Ref:          ref.String(),
		Kind:         string(ref.Kind),
		ID:           ref.ID,
		SupplierID:   supplierID,
		ProductID:    productID,
		Price:        t.Price,
		Currency:     t.Currency,
		AvailableQty: t.AvailableQty,
		LeadDays:     leadDays,
		IsActive:     t.IsActive,
		InStock:      t.InStock,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

func FromProductStock(s domain.ProductStock) ProductStock {
	out := ProductStock{
		ProductID:    s.ProductID,
		PricingMode:  string(s.PricingMode),
		AvailableQty: s.AvailableQty,
		InStock:      s.InStock,
		AutoPrice:    s.AutoPrice,
	}
	for _, v := range s.Variants {
		out.Variants = append(out.Variants, VariantStock{VariantID: v.VariantID, AvailableQty: v.AvailableQty, InStock: v.InStock})
	}
	return out
}

func FromMutation(r *types.OfferMutationResult) OfferMutation {
	return OfferMutation{Offer: FromOfferView(r.Offer), Stock: FromProductStock(r.Stock)}
}

func FromDeletion(r *types.DeleteOfferResult) OfferDeletion {
	return OfferDeletion{Ref: r.Ref.String(), Stock: FromProductStock(r.Stock)}
}

func FromProductDeletion(r *types.DeleteProductOffersResult) ProductOffersDeletion {
	return ProductOffersDeletion{
		ProductID:            r.ProductID,
		BaseOffersDeleted:    r.BaseOffersDeleted,
		VariantOffersDeleted: r.VariantOffersDeleted,
		Stock:                FromProductStock(r.Stock),
	}
}

// FromProductOffers maps the listing; empty collections encode as [].
func FromProductOffers(p *types.ProductOffers) ProductOffers {
	out := ProductOffers{
		Product: ProductStock{
			ProductID:    p.Product.ID,
			PricingMode:  string(p.Product.PricingMode),
			AvailableQty: p.Product.AvailableQty,
			InStock:      p.Product.InStock,
			AutoPrice:    p.Product.AutoPrice,
		},
		Variants:      make([]Variant, 0, len(p.Variants)),
		BaseOffers:    make([]Offer, 0, len(p.BaseOffers)),
		VariantOffers: make([]Offer, 0, len(p.VariantOffers)),
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, Variant{ID: v.ID, Options: v.Options, AvailableQty: v.AvailableQty, InStock: v.InStock})
	}
	for _, o := range p.BaseOffers {
		out.BaseOffers = append(out.BaseOffers, FromBaseOffer(o))
	}
	for _, o := range p.VariantOffers {
		out.VariantOffers = append(out.VariantOffers, FromVariantOffer(o))
	}
	return out
}

func FromPayoutStatus(s *types.PayoutStatus) PayoutStatus {
	return PayoutStatus{SupplierID: s.SupplierID, Ready: s.Ready, Missing: s.Missing, Remediation: s.Remediation}
}

func FromRepairReport(r *types.RepairReport) RepairReport {
	return RepairReport{
		ProductID:        r.ProductID,
		Examined:         r.Examined,
		ProductIDsFixed:  r.ProductIDsFixed,
		BaseLinksFixed:   r.BaseLinksFixed,
		AffectedProducts: r.AffectedProducts,
		Stock:            FromProductStock(r.Stock),
	}
}

func FromCatalogRepairSummary(s *types.CatalogRepairSummary) CatalogRepairSummary {
	return CatalogRepairSummary{
		ProductsExamined: s.ProductsExamined,
		ProductsChanged:  s.ProductsChanged,
		OffersFixed:      s.OffersFixed,
		Failed:           s.Failed,
	}
}
