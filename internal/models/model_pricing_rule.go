package models

import (
	"time"

	"github.com/littlewanderers/frontdesk/pkg/types"
)

// PricingRule is one entry of the admission catalog. Nil bounds are open.
type PricingRule struct {
	ID string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	// Role nil matches every role.
	Role       *types.Role `gorm:"column:role;type:varchar(16)" json:"role"`
	MinMonths  *int        `gorm:"column:min_months" json:"min_months"`
	MaxMonths  *int        `gorm:"column:max_months" json:"max_months"`
	PriceCents int64       `gorm:"column:price_cents;not null" json:"price_cents"`
	ActiveFrom *time.Time  `gorm:"column:active_from" json:"active_from"`
	// ActiveTo is inclusive of the whole calendar day.
	ActiveTo  *time.Time `gorm:"column:active_to;type:date" json:"active_to"`
	Label     string     `gorm:"column:label;type:varchar(128)" json:"label"`
	CreatedAt time.Time  `json:"created_at"`
}

func (PricingRule) TableName() string {
	return "pricing_rules"
}
