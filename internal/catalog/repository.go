package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/pkg/db/models"
)

// Repository wires together product and supplier persistence.
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

// FindProductByID loads the product without associations.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductBySKU loads the product by its merchant SKU.
func (r *Repository) FindProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves the full product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns active products filtered by family and free-text
// search over name and SKU, newest first.
func (r *Repository) ListProducts(ctx context.Context, filter ProductListFilter) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.ActiveOnly {
		qb = qb.Where("is_active = ?", true)
	}
	if filter.Family != nil {
		qb = qb.Where("family = ?", *filter.Family)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern)
	}

	var rows []models.Product
	err := qb.Order("created_at DESC").Limit(filter.limitOrDefault()).Find(&rows).Error
	return rows, err
}

// ProductListFilter narrows the admin product listing.
type ProductListFilter struct {
	Family     *string
	Query      string
	ActiveOnly bool
	Limit      int
}

func (f ProductListFilter) limitOrDefault() int {
	if f.Limit <= 0 || f.Limit > 200 {
		return 50
	}
	return f.Limit
}

// FindSupplierByID loads a supplier row.
func (r *Repository) FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// CreateSupplier inserts a new supplier row.
func (r *Repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// UpdateSupplier saves the full supplier row.
func (r *Repository) UpdateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.db.WithContext(ctx).Save(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// ListSuppliers returns all suppliers ordered by code.
func (r *Repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var rows []models.Supplier
	err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error
	return rows, err
}
