package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs each Do inside one database transaction. Caller manages DB lifecycle.
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork wires a PostgreSQL-backed unit of work.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do commits when fn returns nil and rolls back otherwise.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := u.ensureDB(); err != nil {
		return err
	}
	if fn == nil {
		return errors.New("postgres unit of work: nil function")
	}
	return u.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &pgTx{db: db})
	})
}

// PutProduct upserts a catalog product row. Used by seeding and tests.
func (u *UnitOfWork) PutProduct(ctx context.Context, p domain.Product) error {
	if err := u.ensureDB(); err != nil {
		return err
	}
	record := toProductRecord(p)
	return u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"pricing_mode", "available_qty", "in_stock", "auto_price", "updated_at"}),
		}).
		Create(&record).Error
}

// PutVariant upserts a product variant row.
func (u *UnitOfWork) PutVariant(ctx context.Context, v domain.Variant) error {
	if err := u.ensureDB(); err != nil {
		return err
	}
	record := toVariantRowRecord(v)
	return u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"product_id", "options", "updated_at"}),
		}).
		Create(&record).Error
}

// PutSupplier upserts a supplier payout profile.
func (u *UnitOfWork) PutSupplier(ctx context.Context, p domain.PayoutProfile) error {
	if err := u.ensureDB(); err != nil {
		return err
	}
	record := toSupplierRecord(p)
	return u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "supplier_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"is_payout_enabled", "bank_code", "account_number", "account_name", "bank_country", "bank_verification_status",
			}),
		}).
		Create(&record).Error
}

// AddOrderItem records an order line referencing catalog rows.
func (u *UnitOfWork) AddOrderItem(ctx context.Context, productID uuid.UUID, variantID, baseOfferID, variantOfferID *uuid.UUID) error {
	if err := u.ensureDB(); err != nil {
		return err
	}
	record := orderItemRecord{
		ID:             uuid.New(),
		ProductID:      productID,
		VariantID:      variantID,
		BaseOfferID:    baseOfferID,
		VariantOfferID: variantOfferID,
	}
	return u.db.WithContext(ctx).Create(&record).Error
}

func (u *UnitOfWork) ensureDB() error {
	if u == nil || u.db == nil {
		return errors.New("postgres offer unit of work not configured")
	}
	return nil
}

type pgTx struct {
	db *gorm.DB
}

func (t *pgTx) Offers() ports.OfferRepository      { return &offerRepository{db: t.db} }
func (t *pgTx) Catalog() ports.CatalogRepository   { return &catalogRepository{db: t.db} }
func (t *pgTx) Suppliers() ports.SupplierDirectory { return &supplierDirectory{db: t.db} }
func (t *pgTx) Orders() ports.OrderReferences      { return &orderReferences{db: t.db} }

// isUniqueViolation covers both translated gorm errors and raw driver errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
