package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/enums"
)

// SupplierOffer is one supplier's sellable instance of a product. Prices are
// tax-exclusive (HT); PricePVP is the supplier's suggested resale price.
type SupplierOffer struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID        uuid.UUID             `gorm:"column:supplier_id;type:uuid;not null;index"`
	ProductID         uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	SupplierReference *string               `gorm:"column:supplier_reference"`
	UnitPriceHT       *decimal.Decimal      `gorm:"column:unit_price_ht;type:numeric(12,2)"`
	PricePVP          *decimal.Decimal      `gorm:"column:price_pvp;type:numeric(12,2)"`
	StockQuantity     *int                  `gorm:"column:stock_quantity"`
	LeadTimeDays      *int                  `gorm:"column:lead_time_days"`
	MinOrderQuantity  int                   `gorm:"column:min_order_quantity;not null;default:1"`
	SourceType        enums.OfferSourceType `gorm:"column:source_type;type:offer_source_type;not null"`
	IsPreferred       bool                  `gorm:"column:is_preferred;not null;default:false"`
	PriorityRank      *int                  `gorm:"column:priority_rank"`
	Supplier          *Supplier             `gorm:"foreignKey:SupplierID"`
	PriceTiers        []OfferPriceTier      `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
