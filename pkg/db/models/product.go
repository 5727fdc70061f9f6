package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is one sellable catalog entry. Several products may share an EAN
// when the same article was imported from different supplier catalogs; offer
// aggregation follows those links.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU       string          `gorm:"column:sku;not null;uniqueIndex"`
	Name      string          `gorm:"column:name;not null"`
	EAN       *string         `gorm:"column:ean;index"`
	Family    string          `gorm:"column:family;not null"`
	Subfamily *string         `gorm:"column:subfamily"`
	VATRate   decimal.Decimal `gorm:"column:vat_rate;type:numeric(5,2);not null;default:20.00"`
	Tags      pq.StringArray  `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	Offers    []SupplierOffer `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
