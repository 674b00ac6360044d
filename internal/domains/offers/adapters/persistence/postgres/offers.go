package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

var _ ports.OfferRepository = (*offerRepository)(nil)

// offerRepository persists base and variant offers inside the caller's transaction.
type offerRepository struct {
	db *gorm.DB
}

func (r *offerRepository) GetBase(ctx context.Context, id uuid.UUID) (*domain.BaseOffer, error) {
	var record baseOfferRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return record.toDomain(), nil
}

func (r *offerRepository) FindBase(ctx context.Context, supplierID, productID uuid.UUID) (*domain.BaseOffer, error) {
	var record baseOfferRecord
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *offerRepository) ListBaseByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.BaseOffer, error) {
	var records []baseOfferRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at, id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	offers := make([]*domain.BaseOffer, 0, len(records))
	for i := range records {
		offers = append(offers, records[i].toDomain())
	}
	return offers, nil
}

func (r *offerRepository) CreateBase(ctx context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error) {
	if offer == nil {
		return nil, errors.New("base offer is nil")
	}
	record := toBaseRecord(withBaseID(offer))
	record.InStock = record.IsActive && record.AvailableQty > 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, duplicate(err)
	}
	return r.GetBase(ctx, record.ID)
}

// UpsertBase relies on the (supplier_id, product_id) unique index so racing
// writers converge on one row.
func (r *offerRepository) UpsertBase(ctx context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error) {
	if offer == nil {
		return nil, errors.New("base offer is nil")
	}
	record := toBaseRecord(withBaseID(offer))
	record.InStock = record.IsActive && record.AvailableQty > 0
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "supplier_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"price":         record.Price,
				"currency":      record.Currency,
				"available_qty": record.AvailableQty,
				"lead_days":     record.LeadDays,
				"is_active":     record.IsActive,
				"in_stock":      record.InStock,
				"updated_at":    gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, duplicate(err)
	}
	saved, err := r.FindBase(ctx, record.SupplierID, record.ProductID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, ports.ErrNotFound
	}
	return saved, nil
}

func (r *offerRepository) UpdateBase(ctx context.Context, offer *domain.BaseOffer) (*domain.BaseOffer, error) {
	if offer == nil {
		return nil, errors.New("base offer is nil")
	}
	record := toBaseRecord(offer)
	result := r.db.WithContext(ctx).Model(&baseOfferRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"supplier_id":   record.SupplierID,
			"product_id":    record.ProductID,
			"price":         record.Price,
			"currency":      record.Currency,
			"available_qty": record.AvailableQty,
			"lead_days":     record.LeadDays,
			"is_active":     record.IsActive,
			"in_stock":      record.IsActive && record.AvailableQty > 0,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, duplicate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetBase(ctx, record.ID)
}

func (r *offerRepository) DeleteBase(ctx context.Context, id uuid.UUID) error {
	// DELETE 0 is left to the caller's re-read; a rule or trigger may have
	// swallowed the delete.
	return r.db.WithContext(ctx).Delete(&baseOfferRecord{}, "id = ?", id).Error
}

func (r *offerRepository) GetVariant(ctx context.Context, id uuid.UUID) (*domain.VariantOffer, error) {
	var record variantOfferRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return record.toDomain(), nil
}

func (r *offerRepository) FindVariant(ctx context.Context, supplierID, variantID uuid.UUID) (*domain.VariantOffer, error) {
	var record variantOfferRecord
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND variant_id = ?", supplierID, variantID).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// ListVariantByProduct matches on the denormalized product id or on any of
// variantIDs, so drifted rows are still found.
func (r *offerRepository) ListVariantByProduct(ctx context.Context, productID uuid.UUID, variantIDs []uuid.UUID) ([]*domain.VariantOffer, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if len(variantIDs) > 0 {
		query = query.Or("variant_id IN ?", variantIDs)
	}
	var records []variantOfferRecord
	if err := query.Order("created_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	offers := make([]*domain.VariantOffer, 0, len(records))
	for i := range records {
		offers = append(offers, records[i].toDomain())
	}
	return offers, nil
}

func (r *offerRepository) CreateVariant(ctx context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error) {
	if offer == nil {
		return nil, errors.New("variant offer is nil")
	}
	record := toVariantRecord(withVariantID(offer))
	record.InStock = record.IsActive && record.AvailableQty > 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, duplicate(err)
	}
	return r.GetVariant(ctx, record.ID)
}

func (r *offerRepository) UpsertVariant(ctx context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error) {
	if offer == nil {
		return nil, errors.New("variant offer is nil")
	}
	record := toVariantRecord(withVariantID(offer))
	record.InStock = record.IsActive && record.AvailableQty > 0
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "supplier_id"}, {Name: "variant_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"product_id":    record.ProductID,
				"base_offer_id": record.BaseOfferID,
				"price":         record.Price,
				"currency":      record.Currency,
				"available_qty": record.AvailableQty,
				"lead_days":     record.LeadDays,
				"is_active":     record.IsActive,
				"in_stock":      record.InStock,
				"updated_at":    gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, duplicate(err)
	}
	saved, err := r.FindVariant(ctx, record.SupplierID, record.VariantID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, ports.ErrNotFound
	}
	return saved, nil
}

func (r *offerRepository) UpdateVariant(ctx context.Context, offer *domain.VariantOffer) (*domain.VariantOffer, error) {
	if offer == nil {
		return nil, errors.New("variant offer is nil")
	}
	record := toVariantRecord(offer)
	result := r.db.WithContext(ctx).Model(&variantOfferRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"supplier_id":   record.SupplierID,
			"variant_id":    record.VariantID,
			"product_id":    record.ProductID,
			"base_offer_id": record.BaseOfferID,
			"price":         record.Price,
			"currency":      record.Currency,
			"available_qty": record.AvailableQty,
			"lead_days":     record.LeadDays,
			"is_active":     record.IsActive,
			"in_stock":      record.IsActive && record.AvailableQty > 0,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, duplicate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetVariant(ctx, record.ID)
}

func (r *offerRepository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	// See DeleteBase for DELETE 0.
	return r.db.WithContext(ctx).Delete(&variantOfferRecord{}, "id = ?", id).Error
}

func (r *offerRepository) DetachBase(ctx context.Context, baseOfferID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&variantOfferRecord{}).
		Where("base_offer_id = ?", baseOfferID).
		Updates(map[string]any{
			"base_offer_id": nil,
			"updated_at":    gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func withBaseID(offer *domain.BaseOffer) *domain.BaseOffer {
	if offer.ID != uuid.Nil {
		return offer
	}
	clone := offer.Clone()
	clone.ID = uuid.New()
	return clone
}

func withVariantID(offer *domain.VariantOffer) *domain.VariantOffer {
	if offer.ID != uuid.Nil {
		return offer
	}
	clone := offer.Clone()
	clone.ID = uuid.New()
	return clone
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if isUniqueViolation(err) {
		return errors.Join(ports.ErrDuplicate, err)
	}
	return err
}
