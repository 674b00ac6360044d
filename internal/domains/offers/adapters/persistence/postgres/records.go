package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

// Schema lives in internal/platform/migrations; these records only map columns.

type baseOfferRecord struct {
	ID           uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	SupplierID   uuid.UUID       `gorm:"column:supplier_id;type:uuid"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(18,4)"`
	Currency     string          `gorm:"column:currency"`
	AvailableQty int             `gorm:"column:available_qty"`
	LeadDays     *int            `gorm:"column:lead_days"`
	IsActive     bool            `gorm:"column:is_active"`
	InStock      bool            `gorm:"column:in_stock"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (baseOfferRecord) TableName() string { return "base_offers" }

type variantOfferRecord struct {
	ID           uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	SupplierID   uuid.UUID       `gorm:"column:supplier_id;type:uuid"`
	VariantID    uuid.UUID       `gorm:"column:variant_id;type:uuid"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid"`
	BaseOfferID  *uuid.UUID      `gorm:"column:base_offer_id;type:uuid"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(18,4)"`
	Currency     string          `gorm:"column:currency"`
	AvailableQty int             `gorm:"column:available_qty"`
	LeadDays     *int            `gorm:"column:lead_days"`
	IsActive     bool            `gorm:"column:is_active"`
	InStock      bool            `gorm:"column:in_stock"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (variantOfferRecord) TableName() string { return "variant_offers" }

type productRecord struct {
	ID           uuid.UUID           `gorm:"primaryKey;column:id;type:uuid"`
	PricingMode  string              `gorm:"column:pricing_mode"`
	AvailableQty int                 `gorm:"column:available_qty"`
	InStock      bool                `gorm:"column:in_stock"`
	AutoPrice    decimal.NullDecimal `gorm:"column:auto_price;type:numeric(18,4)"`
	UpdatedAt    time.Time           `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type variantRecord struct {
	ID           uuid.UUID         `gorm:"primaryKey;column:id;type:uuid"`
	ProductID    uuid.UUID         `gorm:"column:product_id;type:uuid"`
	Options      datatypes.JSONMap `gorm:"column:options"`
	AvailableQty int               `gorm:"column:available_qty"`
	InStock      bool              `gorm:"column:in_stock"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
}

func (variantRecord) TableName() string { return "product_variants" }

type supplierProfileRecord struct {
	SupplierID             uuid.UUID `gorm:"primaryKey;column:supplier_id;type:uuid"`
	IsPayoutEnabled        bool      `gorm:"column:is_payout_enabled"`
	BankCode               string    `gorm:"column:bank_code"`
	AccountNumber          string    `gorm:"column:account_number"`
	AccountName            string    `gorm:"column:account_name"`
	BankCountry            string    `gorm:"column:bank_country"`
	BankVerificationStatus string    `gorm:"column:bank_verification_status"`
}

func (supplierProfileRecord) TableName() string { return "supplier_profiles" }

type orderItemRecord struct {
	ID             uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	BaseOfferID    *uuid.UUID `gorm:"column:base_offer_id;type:uuid"`
	VariantOfferID *uuid.UUID `gorm:"column:variant_offer_id;type:uuid"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func toBaseRecord(o *domain.BaseOffer) baseOfferRecord {
	return baseOfferRecord{
		ID:           o.ID,
		SupplierID:   o.SupplierID,
		ProductID:    o.ProductID,
		Price:        o.Price,
		Currency:     o.Currency,
		AvailableQty: o.AvailableQty,
		LeadDays:     o.LeadDays,
		IsActive:     o.IsActive,
		InStock:      o.InStock,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (r baseOfferRecord) toDomain() *domain.BaseOffer {
	return &domain.BaseOffer{
		ID:         r.ID,
		SupplierID: r.SupplierID,
		ProductID:  r.ProductID,
		Terms:      termsOf(r.Price, r.Currency, r.AvailableQty, r.LeadDays, r.IsActive, r.InStock),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toVariantRecord(o *domain.VariantOffer) variantOfferRecord {
	return variantOfferRecord{
		ID:           o.ID,
		SupplierID:   o.SupplierID,
		VariantID:    o.VariantID,
		ProductID:    o.ProductID,
		BaseOfferID:  o.BaseOfferID,
		Price:        o.Price,
		Currency:     o.Currency,
		AvailableQty: o.AvailableQty,
		LeadDays:     o.LeadDays,
		IsActive:     o.IsActive,
		InStock:      o.InStock,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (r variantOfferRecord) toDomain() *domain.VariantOffer {
	return &domain.VariantOffer{
		ID:          r.ID,
		SupplierID:  r.SupplierID,
		VariantID:   r.VariantID,
		ProductID:   r.ProductID,
		BaseOfferID: r.BaseOfferID,
		Terms:       termsOf(r.Price, r.Currency, r.AvailableQty, r.LeadDays, r.IsActive, r.InStock),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func termsOf(price decimal.Decimal, currency string, qty int, leadDays *int, active, inStock bool) domain.Terms {
	return domain.Terms{
		Price:        price,
		Currency:     currency,
		AvailableQty: qty,
		LeadDays:     leadDays,
		IsActive:     active,
		InStock:      inStock,
	}
}

func toProductRecord(p domain.Product) productRecord {
	rec := productRecord{
		ID:           p.ID,
		PricingMode:  string(p.PricingMode),
		AvailableQty: p.AvailableQty,
		InStock:      p.InStock,
	}
	if p.AutoPrice != nil {
		rec.AutoPrice = decimal.NewNullDecimal(*p.AutoPrice)
	}
	return rec
}

func (r productRecord) toDomain() *domain.Product {
	p := &domain.Product{
		ID:           r.ID,
		PricingMode:  domain.PricingMode(r.PricingMode),
		AvailableQty: r.AvailableQty,
		InStock:      r.InStock,
	}
	if p.PricingMode == "" {
		p.PricingMode = domain.PricingModeManual
	}
	if r.AutoPrice.Valid {
		price := r.AutoPrice.Decimal
		p.AutoPrice = &price
	}
	return p
}

func toVariantRowRecord(v domain.Variant) variantRecord {
	rec := variantRecord{
		ID:           v.ID,
		ProductID:    v.ProductID,
		AvailableQty: v.AvailableQty,
		InStock:      v.InStock,
	}
	if len(v.Options) > 0 {
		rec.Options = datatypes.JSONMap{}
		for k, val := range v.Options {
			rec.Options[k] = val
		}
	}
	return rec
}

func (r variantRecord) toDomain() *domain.Variant {
	v := &domain.Variant{
		ID:           r.ID,
		ProductID:    r.ProductID,
		AvailableQty: r.AvailableQty,
		InStock:      r.InStock,
	}
	if len(r.Options) > 0 {
		v.Options = make(map[string]string, len(r.Options))
		for k, val := range r.Options {
			if s, ok := val.(string); ok {
				v.Options[k] = s
			}
		}
	}
	return v
}

func toSupplierRecord(p domain.PayoutProfile) supplierProfileRecord {
	return supplierProfileRecord{
		SupplierID:             p.SupplierID,
		IsPayoutEnabled:        p.IsPayoutEnabled,
		BankCode:               p.BankCode,
		AccountNumber:          p.AccountNumber,
		AccountName:            p.AccountName,
		BankCountry:            p.BankCountry,
		BankVerificationStatus: string(p.BankVerificationStatus),
	}
}

func (r supplierProfileRecord) toDomain() *domain.PayoutProfile {
	return &domain.PayoutProfile{
		SupplierID:             r.SupplierID,
		IsPayoutEnabled:        r.IsPayoutEnabled,
		BankCode:               r.BankCode,
		AccountNumber:          r.AccountNumber,
		AccountName:            r.AccountName,
		BankCountry:            r.BankCountry,
		BankVerificationStatus: domain.BankVerificationStatus(r.BankVerificationStatus),
	}
}
