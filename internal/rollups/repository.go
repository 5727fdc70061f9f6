package rollups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plumehq/plume-backend/pkg/db/models"
)

// Repository persists product rollup snapshots.
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

// Upsert writes the snapshot, replacing any previous one for the product.
func (r *Repository) Upsert(ctx context.Context, rollup *models.ProductRollup) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"price_ttc", "price_source", "coefficient_used",
				"best_offer_id", "alert_flags", "offer_count", "computed_at",
			}),
		}).
		Create(rollup).
		Error
}

// FindByProduct loads the latest snapshot for a product.
func (r *Repository) FindByProduct(ctx context.Context, productID uuid.UUID) (*models.ProductRollup, error) {
	var row models.ProductRollup
	if err := r.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes the snapshot for a product.
func (r *Repository) Delete(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductRollup{}).
		Error
}
