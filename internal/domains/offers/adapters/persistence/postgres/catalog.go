package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

var (
	_ ports.CatalogRepository = (*catalogRepository)(nil)
	_ ports.SupplierDirectory = (*supplierDirectory)(nil)
	_ ports.OrderReferences   = (*orderReferences)(nil)
)

// catalogRepository reads products and variants and writes only their stock caches.
type catalogRepository struct {
	db *gorm.DB
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.loadProduct(r.db.WithContext(ctx), id)
}

// LockProduct takes a row lock so concurrent recomputes of one product serialize.
func (r *catalogRepository) LockProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.loadProduct(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *catalogRepository) loadProduct(db *gorm.DB, id uuid.UUID) (*domain.Product, error) {
	var record productRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *catalogRepository) GetVariant(ctx context.Context, id uuid.UUID) (*domain.Variant, error) {
	var record variantRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrVariantNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *catalogRepository) ListVariants(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	var records []variantRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	variants := make([]*domain.Variant, 0, len(records))
	for i := range records {
		variants = append(variants, records[i].toDomain())
	}
	return variants, nil
}

func (r *catalogRepository) SaveStock(ctx context.Context, stock domain.ProductStock) error {
	autoPrice := any(nil)
	if stock.AutoPrice != nil {
		autoPrice = *stock.AutoPrice
	}
	result := r.db.WithContext(ctx).Model(&productRecord{}).
		Where("id = ?", stock.ProductID).
		Updates(map[string]any{
			"available_qty": stock.AvailableQty,
			"in_stock":      stock.InStock,
			"auto_price":    autoPrice,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrProductNotFound
	}
	for _, vs := range stock.Variants {
		if err := r.db.WithContext(ctx).Model(&variantRecord{}).
			Where("id = ?", vs.VariantID).
			Updates(map[string]any{
				"available_qty": vs.AvailableQty,
				"in_stock":      vs.InStock,
				"updated_at":    gorm.Expr("NOW()"),
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *catalogRepository) ListProductIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := r.db.WithContext(ctx).Model(&productRecord{}).Where("id > ?", after).Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

type supplierDirectory struct {
	db *gorm.DB
}

func (d *supplierDirectory) PayoutProfile(ctx context.Context, supplierID uuid.UUID) (*domain.PayoutProfile, error) {
	var record supplierProfileRecord
	if err := d.db.WithContext(ctx).First(&record, "supplier_id = ?", supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrSupplierNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

type orderReferences struct {
	db *gorm.DB
}

// CountReferences counts order items pointing at any id in the query.
func (o *orderReferences) CountReferences(ctx context.Context, query ports.ReferenceQuery) (int64, error) {
	if query.IsEmpty() {
		return 0, nil
	}
	var (
		conds []string
		args  []any
	)
	add := func(column string, ids []uuid.UUID) {
		if len(ids) == 0 {
			return
		}
		conds = append(conds, column+" = ANY(?::uuid[])")
		args = append(args, pq.Array(uuidStrings(ids)))
	}
	add("product_id", query.ProductIDs)
	add("variant_id", query.VariantIDs)
	add("base_offer_id", query.BaseOfferIDs)
	add("variant_offer_id", query.VariantOfferIDs)

	var count int64
	if err := o.db.WithContext(ctx).Model(&orderItemRecord{}).
		Where(strings.Join(conds, " OR "), args...).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
