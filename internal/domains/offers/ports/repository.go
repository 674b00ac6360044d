package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

var (
	ErrNotFound         = errors.New("offer not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("variant not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("unique constraint violated")
)

// OfferRepository persists base and variant offers.
// Find* return nil, nil when the slot is empty; Get* return ErrNotFound.
type OfferRepository interface {
	GetBase(ctx context.Context, id uuid.UUID) (*domain.BaseOffer, error)
	FindBase(ctx context.Context, supplierID, productID uuid.UUID) (*domain.BaseOffer, error)
	ListBaseByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.BaseOffer, error)
	// CreateBase inserts a new row and fails with ErrDuplicate if the slot is taken.
	CreateBase(ctx context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error)
	// UpsertBase inserts or updates the row keyed by (supplier, product).
	UpsertBase(ctx context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error)
	UpdateBase(ctx context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error)
	DeleteBase(ctx context.Context, id uuid.UUID) error

	GetVariant(ctx context.Context, id uuid.UUID) (*domain.VariantOffer, error)
	FindVariant(ctx context.Context, supplierID, variantID uuid.UUID) (*domain.VariantOffer, error)
	// ListVariantByProduct returns offers whose product_id matches or whose
	// variant belongs to one of variantIDs, so drifted rows are included.
	ListVariantByProduct(ctx context.Context, productID uuid.UUID, variantIDs []uuid.UUID) ([]*domain.VariantOffer, error)
	CreateVariant(ctx context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error)
	UpsertVariant(ctx context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error)
	UpdateVariant(ctx context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	// DetachBase clears baseOfferId on every variant offer pointing at baseOfferID.
	DetachBase(ctx context.Context, baseOfferID uuid.UUID) (int64, error)
}

// CatalogRepository reads products and variants and writes the cached stock fields.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// LockProduct loads the product and serializes concurrent recomputes on it.
	LockProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*domain.Variant, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error)
	SaveStock(ctx context.Context, stock domain.ProductStock) error
	// ListProductIDs returns up to limit ids ordered ascending, strictly after the cursor.
	ListProductIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

// SupplierDirectory exposes the payout fields of supplier profiles.
type SupplierDirectory interface {
	PayoutProfile(ctx context.Context, supplierID uuid.UUID) (*domain.PayoutProfile, error)
}

// ReferenceQuery selects order items by any of the listed identifiers.
type ReferenceQuery struct {
	BaseOfferIDs    []uuid.UUID
	VariantOfferIDs []uuid.UUID
	ProductIDs      []uuid.UUID
	VariantIDs      []uuid.UUID
}

// IsEmpty reports whether the query names nothing.
func (q ReferenceQuery) IsEmpty() bool {
	return len(q.BaseOfferIDs) == 0 && len(q.VariantOfferIDs) == 0 &&
		len(q.ProductIDs) == 0 && len(q.VariantIDs) == 0
}

// OrderReferences answers whether order items still point at catalog rows.
type OrderReferences interface {
	CountReferences(ctx context.Context, query ReferenceQuery) (int64, error)
}

// Tx is the set of stores reachable inside one unit of work.
type Tx interface {
	Offers() OfferRepository
	Catalog() CatalogRepository
	Suppliers() SupplierDirectory
	Orders() OrderReferences
}

// UnitOfWork runs fn atomically. A non-nil error from fn, or a cancelled
// context, rolls back every write made through tx.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
