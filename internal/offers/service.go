package offers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/pkg/db"
	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
)

// Service exposes the back-office supplier offer operations.
type Service interface {
	GetOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error)
	ListProductOffers(ctx context.Context, productID uuid.UUID) ([]OfferDTO, error)
	CreateOffer(ctx context.Context, input CreateOfferInput) (*OfferDTO, error)
	UpdateOffer(ctx context.Context, id uuid.UUID, input UpdateOfferInput) (*OfferDTO, error)
	DeleteOffer(ctx context.Context, id uuid.UUID) error
	ReplaceTiers(ctx context.Context, offerID uuid.UUID, tiers []TierInput) (*OfferDTO, error)
}

// CreateOfferInput holds the validated payload to register an offer.
type CreateOfferInput struct {
	SupplierID        uuid.UUID
	ProductID         uuid.UUID
	SupplierReference *string
	UnitPriceHT       *decimal.Decimal
	PricePVP          *decimal.Decimal
	StockQuantity     *int
	LeadTimeDays      *int
	MinOrderQuantity  int
	SourceType        enums.OfferSourceType
	IsPreferred       bool
	PriorityRank      *int
	Tiers             []TierInput
}

// UpdateOfferInput holds optional mutation values for an offer.
type UpdateOfferInput struct {
	SupplierReference *string
	UnitPriceHT       *decimal.Decimal
	PricePVP          *decimal.Decimal
	StockQuantity     *int
	LeadTimeDays      *int
	MinOrderQuantity  *int
	SourceType        *enums.OfferSourceType
	IsPreferred       *bool
	PriorityRank      *int
}

// TierInput defines one rung of the replacement tier ladder.
type TierInput struct {
	Tier     int
	MinQty   int
	PriceHT  decimal.Decimal
	PricePVP *decimal.Decimal
	TaxCOP   decimal.Decimal
	TaxD3E   decimal.Decimal
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs the offer back-office service.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) GetOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, offerLoadError(err, id)
	}
	return toOfferDTO(offer), nil
}

func (s *service) ListProductOffers(ctx context.Context, productID uuid.UUID) ([]OfferDTO, error) {
	rows, err := s.repo.GetOffers(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("list offers (product_id=%s)", productID))
	}
	dtos := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toOfferDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) CreateOffer(ctx context.Context, input CreateOfferInput) (*OfferDTO, error) {
	if err := validateTierLadder(input.Tiers); err != nil {
		return nil, err
	}
	if !input.SourceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer source type")
	}

	offer := &models.SupplierOffer{
		SupplierID:        input.SupplierID,
		ProductID:         input.ProductID,
		SupplierReference: input.SupplierReference,
		UnitPriceHT:       input.UnitPriceHT,
		PricePVP:          input.PricePVP,
		StockQuantity:     input.StockQuantity,
		LeadTimeDays:      input.LeadTimeDays,
		MinOrderQuantity:  input.MinOrderQuantity,
		SourceType:        input.SourceType,
		IsPreferred:       input.IsPreferred,
		PriorityRank:      input.PriorityRank,
	}
	if offer.MinOrderQuantity <= 0 {
		offer.MinOrderQuantity = 1
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, offer); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict,
					"supplier already has an offer for this product")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert offer")
		}
		if len(input.Tiers) > 0 {
			return repo.ReplaceTiers(ctx, offer.ID, tierModels(offer.ID, input.Tiers))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOffer(ctx, offer.ID)
}

func (s *service) UpdateOffer(ctx context.Context, id uuid.UUID, input UpdateOfferInput) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, offerLoadError(err, id)
	}

	if input.SupplierReference != nil {
		offer.SupplierReference = input.SupplierReference
	}
	if input.UnitPriceHT != nil {
		offer.UnitPriceHT = input.UnitPriceHT
	}
	if input.PricePVP != nil {
		offer.PricePVP = input.PricePVP
	}
	if input.StockQuantity != nil {
		offer.StockQuantity = input.StockQuantity
	}
	if input.LeadTimeDays != nil {
		offer.LeadTimeDays = input.LeadTimeDays
	}
	if input.MinOrderQuantity != nil {
		if *input.MinOrderQuantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				"minimum order quantity must be positive")
		}
		offer.MinOrderQuantity = *input.MinOrderQuantity
	}
	if input.SourceType != nil {
		if !input.SourceType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer source type")
		}
		offer.SourceType = *input.SourceType
	}
	if input.IsPreferred != nil {
		offer.IsPreferred = *input.IsPreferred
	}
	if input.PriorityRank != nil {
		offer.PriorityRank = input.PriorityRank
	}

	if _, err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("update offer (id=%s)", id))
	}
	return toOfferDTO(offer), nil
}

func (s *service) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return offerLoadError(err, id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("delete offer (id=%s)", id))
	}
	return nil
}

func (s *service) ReplaceTiers(ctx context.Context, offerID uuid.UUID, tiers []TierInput) (*OfferDTO, error) {
	if err := validateTierLadder(tiers); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, offerID); err != nil {
		return nil, offerLoadError(err, offerID)
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceTiers(ctx, offerID, tierModels(offerID, tiers))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("replace tiers (offer_id=%s)", offerID))
	}
	return s.GetOffer(ctx, offerID)
}

func validateTierLadder(tiers []TierInput) error {
	seen := make(map[int]struct{}, len(tiers))
	for _, tier := range tiers {
		if tier.Tier <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier ordinal must be positive")
		}
		if tier.MinQty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier min quantity must be positive")
		}
		if tier.PriceHT.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier price must not be negative")
		}
		if _, dup := seen[tier.Tier]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate tier ordinal %d", tier.Tier))
		}
		seen[tier.Tier] = struct{}{}
	}
	return nil
}

func tierModels(offerID uuid.UUID, tiers []TierInput) []models.OfferPriceTier {
	rows := make([]models.OfferPriceTier, 0, len(tiers))
	for _, tier := range tiers {
		rows = append(rows, models.OfferPriceTier{
			OfferID:  offerID,
			Tier:     tier.Tier,
			MinQty:   tier.MinQty,
			PriceHT:  tier.PriceHT,
			PricePVP: tier.PricePVP,
			TaxCOP:   tier.TaxCOP,
			TaxD3E:   tier.TaxD3E,
		})
	}
	return rows
}

func offerLoadError(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
		fmt.Sprintf("load offer (id=%s)", id))
}
