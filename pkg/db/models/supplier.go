package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a wholesale source of stationery products.
type Supplier struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string    `gorm:"column:name;not null"`
	Code                string    `gorm:"column:code;not null;uniqueIndex"`
	IsPreferred         bool      `gorm:"column:is_preferred;not null;default:false"`
	PriorityRank        *int      `gorm:"column:priority_rank"`
	DefaultLeadTimeDays *int      `gorm:"column:default_lead_time_days"`
	IsActive            bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
