package models

import (
	"time"

	"github.com/littlewanderers/frontdesk/pkg/types"
)

// Visit is a household's cart of check-ins for one trip to the center.
// At most one open visit exists per household.
type Visit struct {
	ID              string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	HouseholdID     string              `gorm:"column:household_id;type:uuid;not null;index;uniqueIndex:idx_visits_one_open,where:payment_status = 'open'" json:"household_id"`
	PaymentStatus   types.PaymentStatus `gorm:"column:payment_status;type:varchar(16);not null" json:"payment_status"`
	SubtotalCents   int64               `gorm:"column:subtotal_cents;not null;default:0" json:"subtotal_cents"`
	MembershipCount int                 `gorm:"column:membership_count;not null;default:0" json:"membership_count"`
	ItemCount       int                 `gorm:"column:item_count;not null;default:0" json:"item_count"`
	PaymentMethod   *string             `gorm:"column:payment_method;type:varchar(32)" json:"payment_method"`
	PaymentRef      *string             `gorm:"column:payment_ref;type:varchar(128)" json:"payment_ref"`
	ClosedAt        *time.Time          `gorm:"column:closed_at" json:"closed_at"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (Visit) TableName() string {
	return "visits"
}

func (v *Visit) Paid() bool {
	return v != nil && v.PaymentStatus == types.PaymentStatusPaid
}
