package models

import "time"

// Checkin is a single admission. The price is fixed at creation.
type Checkin struct {
	ID                string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	PersonID          string  `gorm:"column:person_id;type:uuid;not null;index" json:"person_id"`
	PriceCents        int64   `gorm:"column:price_cents;not null" json:"price_cents"`
	MembershipApplied bool    `gorm:"column:membership_applied;not null" json:"membership_applied"`
	Source            string  `gorm:"column:source;type:varchar(32);not null" json:"source"`
	PricingRuleID     *string `gorm:"column:pricing_rule_id;type:uuid" json:"pricing_rule_id"`
	// VisitID is set once the check-in is attached to a visit cart.
	VisitID   *string   `gorm:"column:visit_id;type:uuid;index" json:"visit_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Checkin) TableName() string {
	return "checkins"
}
