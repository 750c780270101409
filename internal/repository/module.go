package repository

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(
		NewHouseholdRepository,
		NewPersonRepository,
		NewPricingRuleRepository,
		NewMembershipRepository,
		NewCheckinRepository,
		NewVisitRepository,
		NewWebhookLogRepository,
	),
)
