package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/db"
	"github.com/plumehq/plume-backend/pkg/db/models"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
)

// Service exposes back-office catalog management: products, suppliers, and
// the resale coefficient table.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductListFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)

	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	CreateSupplier(ctx context.Context, input SupplierInput) (*models.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, input SupplierInput) (*models.Supplier, error)

	ListCoefficients(ctx context.Context) ([]models.CategoryCoefficient, error)
	PutCoefficient(ctx context.Context, input CoefficientInput) (*models.CategoryCoefficient, error)
	DeleteCoefficient(ctx context.Context, id uuid.UUID) error

	ResolveCoefficient(ctx context.Context, family string, subfamily *string) (*decimal.Decimal, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU       string
	Name      string
	EAN       *string
	Family    string
	Subfamily *string
	VATRate   *decimal.Decimal
	Tags      []string
	IsActive  bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name      *string
	EAN       *string
	Family    *string
	Subfamily *string
	VATRate   *decimal.Decimal
	Tags      *[]string
	IsActive  *bool
}

// SupplierInput holds the payload to create or update a supplier.
type SupplierInput struct {
	Name                string
	Code                string
	IsPreferred         bool
	PriorityRank        *int
	DefaultLeadTimeDays *int
	IsActive            bool
}

// CoefficientInput holds one resale coefficient entry. A nil subfamily sets
// the family-wide default.
type CoefficientInput struct {
	Family      string
	Subfamily   *string
	Coefficient decimal.Decimal
}

type service struct {
	repo         *Repository
	coefficients *CoefficientRepository
	defaultVAT   decimal.Decimal
}

// NewService constructs the catalog service.
func NewService(repo *Repository, coefficients *CoefficientRepository, cfg config.PricingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if coefficients == nil {
		return nil, fmt.Errorf("coefficient repository required")
	}
	return &service{
		repo:         repo,
		coefficients: coefficients,
		defaultVAT:   cfg.DefaultVATRate(),
	}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, productLoadError(err, id)
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductListFilter) ([]models.Product, error) {
	rows, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Family) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "family is required")
	}

	vat := s.defaultVAT
	if input.VATRate != nil {
		if input.VATRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vat rate must not be negative")
		}
		vat = *input.VATRate
	}

	product := &models.Product{
		SKU:       sku,
		Name:      input.Name,
		EAN:       input.EAN,
		Family:    input.Family,
		Subfamily: input.Subfamily,
		VATRate:   vat,
		Tags:      pq.StringArray(input.Tags),
		IsActive:  input.IsActive,
	}
	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, productLoadError(err, id)
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.EAN != nil {
		product.EAN = input.EAN
	}
	if input.Family != nil {
		if strings.TrimSpace(*input.Family) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "family must not be empty")
		}
		product.Family = *input.Family
	}
	if input.Subfamily != nil {
		product.Subfamily = input.Subfamily
	}
	if input.VATRate != nil {
		if input.VATRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vat rate must not be negative")
		}
		product.VATRate = *input.VATRate
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(*input.Tags)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("update product (id=%s)", id))
	}
	return product, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	return rows, nil
}

func (s *service) CreateSupplier(ctx context.Context, input SupplierInput) (*models.Supplier, error) {
	if err := validateSupplierInput(input); err != nil {
		return nil, err
	}
	supplier := &models.Supplier{
		Name:                input.Name,
		Code:                strings.ToLower(strings.TrimSpace(input.Code)),
		IsPreferred:         input.IsPreferred,
		PriorityRank:        input.PriorityRank,
		DefaultLeadTimeDays: input.DefaultLeadTimeDays,
		IsActive:            input.IsActive,
	}
	if _, err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a supplier with this code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert supplier")
	}
	return supplier, nil
}

func (s *service) UpdateSupplier(ctx context.Context, id uuid.UUID, input SupplierInput) (*models.Supplier, error) {
	if err := validateSupplierInput(input); err != nil {
		return nil, err
	}
	supplier, err := s.repo.FindSupplierByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("load supplier (id=%s)", id))
	}

	supplier.Name = input.Name
	supplier.Code = strings.ToLower(strings.TrimSpace(input.Code))
	supplier.IsPreferred = input.IsPreferred
	supplier.PriorityRank = input.PriorityRank
	supplier.DefaultLeadTimeDays = input.DefaultLeadTimeDays
	supplier.IsActive = input.IsActive

	if _, err := s.repo.UpdateSupplier(ctx, supplier); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a supplier with this code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("update supplier (id=%s)", id))
	}
	return supplier, nil
}

func (s *service) ListCoefficients(ctx context.Context) ([]models.CategoryCoefficient, error) {
	rows, err := s.coefficients.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coefficients")
	}
	return rows, nil
}

func (s *service) PutCoefficient(ctx context.Context, input CoefficientInput) (*models.CategoryCoefficient, error) {
	if strings.TrimSpace(input.Family) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "family is required")
	}
	if !input.Coefficient.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coefficient must be positive")
	}
	row := &models.CategoryCoefficient{
		Family:      input.Family,
		Subfamily:   input.Subfamily,
		Coefficient: input.Coefficient,
	}
	if _, err := s.coefficients.Upsert(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert coefficient")
	}
	return row, nil
}

func (s *service) DeleteCoefficient(ctx context.Context, id uuid.UUID) error {
	if err := s.coefficients.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("delete coefficient (id=%s)", id))
	}
	return nil
}

func (s *service) ResolveCoefficient(ctx context.Context, family string, subfamily *string) (*decimal.Decimal, error) {
	return s.coefficients.Resolve(ctx, family, subfamily)
}

func validateSupplierInput(input SupplierInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}
	if strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier code is required")
	}
	if input.PriorityRank != nil && *input.PriorityRank < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "priority rank must not be negative")
	}
	return nil
}

func productLoadError(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
		fmt.Sprintf("load product (id=%s)", id))
}
