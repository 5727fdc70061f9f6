package rollups

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
)

// RollupDTO is the per-product pricing snapshot served to clients.
type RollupDTO struct {
	ProductID       uuid.UUID         `json:"product_id"`
	PriceTTC        *decimal.Decimal  `json:"price_ttc,omitempty"`
	PriceSource     enums.PriceSource `json:"price_source"`
	CoefficientUsed *decimal.Decimal  `json:"coefficient_used,omitempty"`
	BestOfferID     *uuid.UUID        `json:"best_offer_id,omitempty"`
	AlertFlags      []enums.AlertFlag `json:"alert_flags"`
	OfferCount      int               `json:"offer_count"`
	ComputedAt      time.Time         `json:"computed_at"`
}

// QuoteDTO is a live quantity-aware price for the storefront read path.
type QuoteDTO struct {
	ProductID       uuid.UUID         `json:"product_id"`
	Quantity        int               `json:"quantity"`
	PriceTTC        *decimal.Decimal  `json:"price_ttc,omitempty"`
	PriceSource     enums.PriceSource `json:"price_source"`
	CoefficientUsed *decimal.Decimal  `json:"coefficient_used,omitempty"`
	AlertFlags      []enums.AlertFlag `json:"alert_flags"`
	OfferCount      int               `json:"offer_count"`
}

// BatchResult reports one page of a paged recompute run.
type BatchResult struct {
	Processed  int   `json:"processed"`
	Errors     int   `json:"errors"`
	Total      int64 `json:"total"`
	NextOffset int   `json:"next_offset"`
	Done       bool  `json:"done"`
}

func toRollupDTO(row *models.ProductRollup) *RollupDTO {
	flags := make([]enums.AlertFlag, 0, len(row.AlertFlags))
	for _, raw := range row.AlertFlags {
		if flag, err := enums.ParseAlertFlag(raw); err == nil {
			flags = append(flags, flag)
		}
	}
	return &RollupDTO{
		ProductID:       row.ProductID,
		PriceTTC:        row.PriceTTC,
		PriceSource:     row.PriceSource,
		CoefficientUsed: row.CoefficientUsed,
		BestOfferID:     row.BestOfferID,
		AlertFlags:      flags,
		OfferCount:      row.OfferCount,
		ComputedAt:      row.ComputedAt,
	}
}
