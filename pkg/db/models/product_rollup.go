package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/enums"
)

// ProductRollup is the persisted result of one pricing recompute. It is a
// cache of a pure computation over the product's offers, never the source of
// truth: any write elsewhere invalidates it by recomputing.
type ProductRollup struct {
	ProductID       uuid.UUID         `gorm:"column:product_id;type:uuid;primaryKey"`
	PriceTTC        *decimal.Decimal  `gorm:"column:price_ttc;type:numeric(12,2)"`
	PriceSource     enums.PriceSource `gorm:"column:price_source;type:price_source;not null"`
	CoefficientUsed *decimal.Decimal  `gorm:"column:coefficient_used;type:numeric(8,4)"`
	BestOfferID     *uuid.UUID        `gorm:"column:best_offer_id;type:uuid"`
	AlertFlags      pq.StringArray    `gorm:"column:alert_flags;type:text[];not null;default:ARRAY[]::text[]"`
	OfferCount      int               `gorm:"column:offer_count;not null;default:0"`
	ComputedAt      time.Time         `gorm:"column:computed_at;not null"`
}
