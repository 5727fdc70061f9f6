package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/pkg/db/models"
)

// Repository wires together supplier offer and price tier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetOffers loads a product's offers from active suppliers, with the supplier
// and the tier ladder preloaded in ascending tier order.
func (r *Repository) GetOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error) {
	var rows []models.SupplierOffer
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("tier ASC")
		}).
		Joins("JOIN suppliers ON suppliers.id = supplier_offers.supplier_id").
		Where("supplier_offers.product_id = ?", productID).
		Where("suppliers.is_active = ?", true).
		Order("supplier_offers.created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// GetLinkedProductIDs resolves the active sibling products that share the
// product's EAN barcode. Products without an EAN have no siblings.
func (r *Repository) GetLinkedProductIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Select("id", "ean").
		First(&product, "id = ?", productID).
		Error
	if err != nil {
		return nil, err
	}
	if product.EAN == nil || *product.EAN == "" {
		return nil, nil
	}

	var ids []uuid.UUID
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("ean = ? AND id <> ? AND is_active = ?", *product.EAN, productID, true).
		Pluck("id", &ids).
		Error
	return ids, err
}

// GetOffersForProducts loads active-supplier offers for a set of products in
// one query.
func (r *Repository) GetOffersForProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.SupplierOffer, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []models.SupplierOffer
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("tier ASC")
		}).
		Joins("JOIN suppliers ON suppliers.id = supplier_offers.supplier_id").
		Where("supplier_offers.product_id IN ?", productIDs).
		Where("suppliers.is_active = ?", true).
		Order("supplier_offers.created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindByID loads an offer with its supplier and tier ladder.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error) {
	var row models.SupplierOffer
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("tier ASC")
		}).
		First(&row, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new offer row.
func (r *Repository) Create(ctx context.Context, offer *models.SupplierOffer) (*models.SupplierOffer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// Update saves the full offer row.
func (r *Repository) Update(ctx context.Context, offer *models.SupplierOffer) (*models.SupplierOffer, error) {
	if err := r.db.WithContext(ctx).Save(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// Delete removes an offer; its tiers go with it via the FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SupplierOffer{}).Error
}

// ReplaceTiers swaps the offer's full tier ladder.
func (r *Repository) ReplaceTiers(ctx context.Context, offerID uuid.UUID, tiers []models.OfferPriceTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("offer_id = ?", offerID).Delete(&models.OfferPriceTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return tx.Create(&tiers).Error
}

// ListProductIDsPaged pages over active product IDs in primary key order.
// The count covers the same active-product scope.
func (r *Repository) ListProductIDsPaged(ctx context.Context, limit, offset int) ([]uuid.UUID, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	err := base.Session(&gorm.Session{}).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Pluck("id", &ids).
		Error
	return ids, total, err
}
