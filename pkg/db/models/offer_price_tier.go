package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferPriceTier is one quantity break on a supplier offer. Tier ordinals are
// unique per offer and min_qty grows strictly with the ordinal.
type OfferPriceTier struct {
	ID       uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfferID  uuid.UUID        `gorm:"column:offer_id;type:uuid;not null;index:idx_offer_tier,unique"`
	Tier     int              `gorm:"column:tier;not null;index:idx_offer_tier,unique"`
	MinQty   int              `gorm:"column:min_qty;not null"`
	PriceHT  decimal.Decimal  `gorm:"column:price_ht;type:numeric(12,2);not null"`
	PricePVP *decimal.Decimal `gorm:"column:price_pvp;type:numeric(12,2)"`
	TaxCOP   decimal.Decimal  `gorm:"column:tax_cop;type:numeric(12,2);not null;default:0"`
	TaxD3E   decimal.Decimal  `gorm:"column:tax_d3e;type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
