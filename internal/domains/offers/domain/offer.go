package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Terms are the commercial fields shared by base and variant offers.
type Terms struct {
	Price        decimal.Decimal
	Currency     string
	AvailableQty int
	LeadDays     *int
	IsActive     bool
	// InStock is derived from IsActive and AvailableQty; see Refresh.
	InStock bool
}

// Refresh recomputes the derived fields. Every write path calls it.
func (t *Terms) Refresh() {
	t.InStock = t.IsActive && t.AvailableQty > 0
}

// Validate checks the terms and normalizes currency and price scale.
func (t *Terms) Validate() error {
	if t.Price.IsNegative() {
		return ErrNegativePrice
	}
	if t.AvailableQty < 0 {
		return ErrNegativeQuantity
	}
	if t.LeadDays != nil && *t.LeadDays < 0 {
		return ErrNegativeLeadDays
	}
	unit, err := parseCurrency(t.Currency)
	if err != nil {
		return err
	}
	t.Currency = unit.String()
	scale, _ := currency.Standard.Rounding(unit)
	t.Price = t.Price.Round(int32(scale))
	return nil
}

// Purchasable reports whether a buyer could order against these terms.
func (t Terms) Purchasable() bool {
	return OfferBecomesPurchasable(t.IsActive, t.InStock, t.AvailableQty, t.Price)
}

// OfferBecomesPurchasable is the single predicate deciding whether an offer
// row is visible to buyers and therefore payout-gated.
func OfferBecomesPurchasable(isActive, inStock bool, qty int, price decimal.Decimal) bool {
	return isActive && inStock && qty > 0 && price.IsPositive()
}

// NormalizeCurrency upper-cases and validates an ISO-4217 code.
func NormalizeCurrency(code string) (string, error) {
	unit, err := parseCurrency(code)
	if err != nil {
		return "", err
	}
	return unit.String(), nil
}

func parseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return currency.Unit{}, ErrInvalidCurrency
	}
	return unit, nil
}

// OfferFields carries a partial set of terms. Nil pointers mean "leave as is".
type OfferFields struct {
	Price         *decimal.Decimal
	Currency      *string
	AvailableQty  *int
	LeadDays      *int
	ClearLeadDays bool
	IsActive      *bool
}

// IsEmpty reports whether no field is present.
func (f OfferFields) IsEmpty() bool {
	return f.Price == nil && f.Currency == nil && f.AvailableQty == nil &&
		f.LeadDays == nil && !f.ClearLeadDays && f.IsActive == nil
}

// ApplyTo merges the present fields into t and refreshes derived state.
func (f OfferFields) ApplyTo(t *Terms) {
	if f.Price != nil {
		t.Price = *f.Price
	}
	if f.Currency != nil {
		t.Currency = *f.Currency
	}
	if f.AvailableQty != nil {
		t.AvailableQty = *f.AvailableQty
	}
	if f.ClearLeadDays {
		t.LeadDays = nil
	} else if f.LeadDays != nil {
		days := *f.LeadDays
		t.LeadDays = &days
	}
	if f.IsActive != nil {
		t.IsActive = *f.IsActive
	}
	t.Refresh()
}

// NewTerms builds terms for a new row. Price is mandatory, offers start active.
func NewTerms(f OfferFields, defaultCurrency string) (Terms, error) {
	if f.Price == nil {
		return Terms{}, ErrPriceRequired
	}
	t := Terms{Currency: defaultCurrency, IsActive: true}
	f.ApplyTo(&t)
	if err := t.Validate(); err != nil {
		return Terms{}, err
	}
	return t, nil
}

// BaseOffer is one supplier's terms for a whole product.
type BaseOffer struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	ProductID  uuid.UUID
	Terms
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseOffer validates identity and terms for a new base offer.
func NewBaseOffer(supplierID, productID uuid.UUID, terms Terms) (*BaseOffer, error) {
	if supplierID == uuid.Nil {
		return nil, ErrMissingSupplier
	}
	if productID == uuid.Nil {
		return nil, ErrMissingProduct
	}
	terms.Refresh()
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	return &BaseOffer{ID: uuid.New(), SupplierID: supplierID, ProductID: productID, Terms: terms}, nil
}

func (o *BaseOffer) Ref() OfferRef { return BaseRef(o.ID) }

// ToVariant moves the commercial terms onto a variant of the same product.
// The resulting offer carries no base link because the source is being removed.
func (o *BaseOffer) ToVariant(variant *Variant) (*VariantOffer, error) {
	if variant == nil {
		return nil, ErrConversionTarget
	}
	if variant.ProductID != o.ProductID {
		return nil, ErrConversionCrossProduct
	}
	terms := o.Terms
	terms.LeadDays = copyInt(o.LeadDays)
	return NewVariantOffer(o.SupplierID, variant, nil, terms)
}

// VariantOffer is one supplier's terms for a single variant.
type VariantOffer struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	VariantID  uuid.UUID
	// ProductID is denormalized from the variant and must always match it.
	ProductID   uuid.UUID
	BaseOfferID *uuid.UUID
	Terms
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewVariantOffer validates identity and terms for a new variant offer.
func NewVariantOffer(supplierID uuid.UUID, variant *Variant, baseOfferID *uuid.UUID, terms Terms) (*VariantOffer, error) {
	if supplierID == uuid.Nil {
		return nil, ErrMissingSupplier
	}
	if variant == nil || variant.ID == uuid.Nil {
		return nil, ErrMissingVariant
	}
	terms.Refresh()
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	return &VariantOffer{
		ID:          uuid.New(),
		SupplierID:  supplierID,
		VariantID:   variant.ID,
		ProductID:   variant.ProductID,
		BaseOfferID: copyUUID(baseOfferID),
		Terms:       terms,
	}, nil
}

func (o *VariantOffer) Ref() OfferRef { return VariantRef(o.ID) }

// ToBase moves the commercial terms onto the product level.
func (o *VariantOffer) ToBase() (*BaseOffer, error) {
	terms := o.Terms
	terms.LeadDays = copyInt(o.LeadDays)
	return NewBaseOffer(o.SupplierID, o.ProductID, terms)
}

// LinkBase points the offer at base, or clears the link when base is nil.
// It reports whether anything changed.
func (o *VariantOffer) LinkBase(base *BaseOffer) bool {
	switch {
	case base == nil && o.BaseOfferID == nil:
		return false
	case base == nil:
		o.BaseOfferID = nil
		return true
	case o.BaseOfferID != nil && *o.BaseOfferID == base.ID:
		return false
	default:
		id := base.ID
		o.BaseOfferID = &id
		return true
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyUUID(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (o *BaseOffer) Clone() *BaseOffer {
	if o == nil {
		return nil
	}
	c := *o
	c.LeadDays = copyInt(o.LeadDays)
	return &c
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (o *VariantOffer) Clone() *VariantOffer {
	if o == nil {
		return nil
	}
	c := *o
	c.LeadDays = copyInt(o.LeadDays)
	c.BaseOfferID = copyUUID(o.BaseOfferID)
	return &c
}
