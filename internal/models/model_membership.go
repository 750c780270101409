package models

import (
	"time"

	"github.com/littlewanderers/frontdesk/pkg/types"
	"gorm.io/datatypes"
)

// Membership covers either a whole household or a single person. Exactly one
// of HouseholdID and PersonID is set; use Owner/SetOwner instead of touching
// the columns directly.
type Membership struct {
	ID          string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Status      types.MembershipStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	RenewsAt    *time.Time             `gorm:"column:renews_at" json:"renews_at"`
	HouseholdID *string                `gorm:"column:household_id;type:uuid;index" json:"household_id"`
	PersonID    *string                `gorm:"column:person_id;type:uuid;index" json:"person_id"`
	// ExternalSubscriptionID is the processor's subscription id, if any.
	ExternalSubscriptionID *string   `gorm:"column:external_subscription_id;type:varchar(128);uniqueIndex" json:"external_subscription_id"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}

func (m *Membership) Owner() types.MembershipOwner {
	if m.HouseholdID != nil {
		return types.OwnedByHousehold(*m.HouseholdID)
	}
	if m.PersonID != nil {
		return types.OwnedByPerson(*m.PersonID)
	}
	return types.MembershipOwner{}
}

func (m *Membership) SetOwner(o types.MembershipOwner) {
	id := o.ID
	m.HouseholdID, m.PersonID = nil, nil
	switch o.Kind {
	case types.OwnerKindHousehold:
		m.HouseholdID = &id
	case types.OwnerKindPerson:
		m.PersonID = &id
	}
}

// Active reports whether the membership covers admission at now.
func (m *Membership) Active(now time.Time) bool {
	return m != nil &&
		m.Status == types.MembershipStatusActive &&
		(m.RenewsAt == nil || m.RenewsAt.After(now))
}

// MembershipLog records every membership write.
// Use case: reconciling processor state with what staff saw at the desk.
type MembershipLog struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	MembershipID string `gorm:"column:membership_id;type:uuid;index;not null" json:"membership_id"`
	// Reason is the change reason.
	Reason types.MembershipChangeReason `gorm:"column:reason;type:varchar(64);not null" json:"reason"`
	// Before stores membership data before the change in JSON format.
	Before datatypes.JSONType[*Membership] `gorm:"column:before;type:jsonb;default:'null'" json:"before"`
	// After stores membership data after the change in JSON format.
	After datatypes.JSONType[*Membership] `gorm:"column:after;type:jsonb;default:'null'" json:"after"`
	// Extra stores trigger context such as the webhook event id.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time         `json:"created_at"`
}

func (MembershipLog) TableName() string {
	return "membership_logs"
}
