package models

import (
	"time"

	"github.com/littlewanderers/frontdesk/pkg/types"
)

// Household groups the people covered by one portal account.
type Household struct {
	ID string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	// OwnerUserID is the hosted-auth user id. One household per account.
	OwnerUserID string    `gorm:"column:owner_user_id;type:varchar(64);not null;uniqueIndex" json:"owner_user_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Household) TableName() string {
	return "households"
}

type Person struct {
	ID          string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	HouseholdID string     `gorm:"column:household_id;type:uuid;not null;index" json:"household_id"`
	Role        types.Role `gorm:"column:role;type:varchar(16);not null" json:"role"`
	FirstName   string     `gorm:"column:first_name;type:varchar(128);not null" json:"first_name"`
	LastName    string     `gorm:"column:last_name;type:varchar(128)" json:"last_name"`
	// Birthdate is optional. Without it no age-bounded rule applies.
	Birthdate *time.Time `gorm:"column:birthdate;type:date" json:"birthdate"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Person) TableName() string {
	return "people"
}

// Account mirrors hosted-auth users so webhook payer emails can be mapped
// back to an owner.
type Account struct {
	ID        string    `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(320);not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type SquareCustomer struct {
	SquareCustomerID string    `gorm:"column:square_customer_id;type:varchar(128);primary_key" json:"square_customer_id"`
	HouseholdID      string    `gorm:"column:household_id;type:uuid;not null;index" json:"household_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func (SquareCustomer) TableName() string {
	return "square_customers"
}
