package offers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
)

// OfferDTO is the admin-facing representation of a supplier offer.
type OfferDTO struct {
	ID                uuid.UUID             `json:"id"`
	SupplierID        uuid.UUID             `json:"supplier_id"`
	SupplierCode      string                `json:"supplier_code,omitempty"`
	ProductID         uuid.UUID             `json:"product_id"`
	SupplierReference *string               `json:"supplier_reference,omitempty"`
	UnitPriceHT       *decimal.Decimal      `json:"unit_price_ht,omitempty"`
	PricePVP          *decimal.Decimal      `json:"price_pvp,omitempty"`
	StockQuantity     *int                  `json:"stock_quantity,omitempty"`
	LeadTimeDays      *int                  `json:"lead_time_days,omitempty"`
	MinOrderQuantity  int                   `json:"min_order_quantity"`
	SourceType        enums.OfferSourceType `json:"source_type"`
	IsPreferred       bool                  `json:"is_preferred"`
	PriorityRank      *int                  `json:"priority_rank,omitempty"`
	PriceTiers        []TierDTO             `json:"price_tiers"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// TierDTO is one rung of an offer's quantity price ladder.
type TierDTO struct {
	Tier     int              `json:"tier"`
	MinQty   int              `json:"min_qty"`
	PriceHT  decimal.Decimal  `json:"price_ht"`
	PricePVP *decimal.Decimal `json:"price_pvp,omitempty"`
	TaxCOP   decimal.Decimal  `json:"tax_cop"`
	TaxD3E   decimal.Decimal  `json:"tax_d3e"`
}

func toOfferDTO(offer *models.SupplierOffer) *OfferDTO {
	dto := &OfferDTO{
		ID:                offer.ID,
		SupplierID:        offer.SupplierID,
		ProductID:         offer.ProductID,
		SupplierReference: offer.SupplierReference,
		UnitPriceHT:       offer.UnitPriceHT,
		PricePVP:          offer.PricePVP,
		StockQuantity:     offer.StockQuantity,
		LeadTimeDays:      offer.LeadTimeDays,
		MinOrderQuantity:  offer.MinOrderQuantity,
		SourceType:        offer.SourceType,
		IsPreferred:       offer.IsPreferred,
		PriorityRank:      offer.PriorityRank,
		PriceTiers:        make([]TierDTO, 0, len(offer.PriceTiers)),
		CreatedAt:         offer.CreatedAt,
		UpdatedAt:         offer.UpdatedAt,
	}
	if offer.Supplier != nil {
		dto.SupplierCode = offer.Supplier.Code
	}
	for _, tier := range offer.PriceTiers {
		dto.PriceTiers = append(dto.PriceTiers, TierDTO{
			Tier:     tier.Tier,
			MinQty:   tier.MinQty,
			PriceHT:  tier.PriceHT,
			PricePVP: tier.PricePVP,
			TaxCOP:   tier.TaxCOP,
			TaxD3E:   tier.TaxD3E,
		})
	}
	return dto
}
