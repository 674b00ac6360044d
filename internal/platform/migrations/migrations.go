package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Run applies the schema for the offers context and the catalog tables it reads.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&variantRecord{},
		&supplierProfileRecord{},
		&baseOfferRecord{},
		&variantOfferRecord{},
		&orderItemRecord{},
	)
}

// Product schema is owned by the catalog; offers only maintain its stock caches.
type productRecord struct {
	ID           uuid.UUID           `gorm:"primaryKey;column:id;type:uuid"`
	PricingMode  string              `gorm:"column:pricing_mode;type:varchar(16);not null;default:manual"`
	AvailableQty int                 `gorm:"column:available_qty;not null;default:0"`
	InStock      bool                `gorm:"column:in_stock;not null;default:false"`
	AutoPrice    decimal.NullDecimal `gorm:"column:auto_price;type:numeric(18,4)"`
	CreatedAt    time.Time           `gorm:"column:created_at"`
	UpdatedAt    time.Time           `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type variantRecord struct {
	ID           uuid.UUID         `gorm:"primaryKey;column:id;type:uuid"`
	ProductID    uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	Options      datatypes.JSONMap `gorm:"column:options;type:jsonb"`
	AvailableQty int               `gorm:"column:available_qty;not null;default:0"`
	InStock      bool              `gorm:"column:in_stock;not null;default:false"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
}

func (variantRecord) TableName() string { return "product_variants" }

// Supplier profile schema mirrors the fields the payout gate reads.
type supplierProfileRecord struct {
	SupplierID             uuid.UUID `gorm:"primaryKey;column:supplier_id;type:uuid"`
	IsPayoutEnabled        bool      `gorm:"column:is_payout_enabled;not null;default:false"`
	BankCode               string    `gorm:"column:bank_code"`
	AccountNumber          string    `gorm:"column:account_number"`
	AccountName            string    `gorm:"column:account_name"`
	BankCountry            string    `gorm:"column:bank_country;type:varchar(2)"`
	BankVerificationStatus string    `gorm:"column:bank_verification_status;type:varchar(16);not null;default:PENDING"`
}

func (supplierProfileRecord) TableName() string { return "supplier_profiles" }

// Base offer schema mirrors the offers Postgres adapter.
type baseOfferRecord struct {
	ID           uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	SupplierID   uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:idx_base_offers_supplier_product"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_base_offers_supplier_product;index"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(18,4);not null"`
	Currency     string          `gorm:"column:currency;type:char(3);not null"`
	AvailableQty int             `gorm:"column:available_qty;not null;default:0;check:available_qty >= 0"`
	LeadDays     *int            `gorm:"column:lead_days"`
	IsActive     bool            `gorm:"column:is_active;not null"`
	InStock      bool            `gorm:"column:in_stock;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (baseOfferRecord) TableName() string { return "base_offers" }

// Variant offer schema mirrors the offers Postgres adapter.
type variantOfferRecord struct {
	ID           uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	SupplierID   uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:idx_variant_offers_supplier_variant"`
	VariantID    uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_variant_offers_supplier_variant;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	BaseOfferID  *uuid.UUID      `gorm:"column:base_offer_id;type:uuid;index"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(18,4);not null"`
	Currency     string          `gorm:"column:currency;type:char(3);not null"`
	AvailableQty int             `gorm:"column:available_qty;not null;default:0;check:available_qty >= 0"`
	LeadDays     *int            `gorm:"column:lead_days"`
	IsActive     bool            `gorm:"column:is_active;not null"`
	InStock      bool            `gorm:"column:in_stock;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (variantOfferRecord) TableName() string { return "variant_offers" }

// Order item schema carries only the references the integrity guard checks.
type orderItemRecord struct {
	ID             uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid;index"`
	BaseOfferID    *uuid.UUID `gorm:"column:base_offer_id;type:uuid;index"`
	VariantOfferID *uuid.UUID `gorm:"column:variant_offer_id;type:uuid;index"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (orderItemRecord) TableName() string { return "order_items" }
