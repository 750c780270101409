package models

// All lists every table managed by AutoMigrate, parents first.
func All() []any {
	return []any{
		&Household{},
		&Person{},
		&Account{},
		&SquareCustomer{},
		&PricingRule{},
		&Membership{},
		&MembershipLog{},
		&Checkin{},
		&Visit{},
		&WebhookLog{},
	}
}
