package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryCoefficient maps a product family (and optionally subfamily) to the
// multiplier used when no supplier PVP is available. A NULL subfamily row is
// the family-wide default.
type CategoryCoefficient struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Family      string          `gorm:"column:family;not null;index:idx_family_subfamily,unique"`
	Subfamily   *string         `gorm:"column:subfamily;index:idx_family_subfamily,unique"`
	Coefficient decimal.Decimal `gorm:"column:coefficient;type:numeric(8,4);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
