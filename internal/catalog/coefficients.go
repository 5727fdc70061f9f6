package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/pkg/db/models"
)

// CoefficientRepository persists the per-category resale coefficients.
type CoefficientRepository struct {
	db *gorm.DB
}

// NewCoefficientRepository builds a coefficient repository.
func NewCoefficientRepository(db *gorm.DB) *CoefficientRepository {
	return &CoefficientRepository{db: db}
}

// Resolve finds the coefficient for a category. A subfamily-specific entry
// takes precedence; otherwise the family default (NULL subfamily) applies.
// Returns nil without error when neither exists.
func (r *CoefficientRepository) Resolve(ctx context.Context, family string, subfamily *string) (*decimal.Decimal, error) {
	if subfamily != nil && *subfamily != "" {
		var row models.CategoryCoefficient
		err := r.db.WithContext(ctx).
			First(&row, "family = ? AND subfamily = ?", family, *subfamily).
			Error
		if err == nil {
			return &row.Coefficient, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var row models.CategoryCoefficient
	err := r.db.WithContext(ctx).
		First(&row, "family = ? AND subfamily IS NULL", family).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.Coefficient, nil
}

// Upsert creates or replaces the coefficient for a (family, subfamily) pair.
// The lookup runs inside a transaction because ON CONFLICT cannot target the
// schema's COALESCE-based unique index, and a plain column target would treat
// two NULL subfamilies as distinct.
func (r *CoefficientRepository) Upsert(ctx context.Context, row *models.CategoryCoefficient) (*models.CategoryCoefficient, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("family = ?", row.Family)
		if row.Subfamily == nil {
			query = query.Where("subfamily IS NULL")
		} else {
			query = query.Where("subfamily = ?", *row.Subfamily)
		}

		var existing models.CategoryCoefficient
		err := query.First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(row).Error
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&existing).Update("coefficient", row.Coefficient).Error; err != nil {
			return err
		}
		existing.Coefficient = row.Coefficient
		*row = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes a coefficient row by ID.
func (r *CoefficientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CategoryCoefficient{}).Error
}

// List returns all coefficients ordered by family then subfamily, family
// defaults first.
func (r *CoefficientRepository) List(ctx context.Context) ([]models.CategoryCoefficient, error) {
	var rows []models.CategoryCoefficient
	err := r.db.WithContext(ctx).
		Order("family ASC").
		Order("subfamily ASC NULLS FIRST").
		Find(&rows).
		Error
	return rows, err
}
