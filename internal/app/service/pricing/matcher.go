package pricing

import (
	"time"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// RuleApplies reports whether rule is eligible for a person of the given role
// and age at now. Age bounds never match an unknown age.
func RuleApplies(rule *models.PricingRule, role types.Role, ageMonths *int, now time.Time) bool {
	if rule == nil {
		return false
	}
	if rule.ActiveFrom != nil && rule.ActiveFrom.After(now) {
		return false
	}
	if rule.ActiveTo != nil && dateOnly(*rule.ActiveTo).Before(dateOnly(now)) {
		return false
	}
	if rule.Role != nil && *rule.Role != role {
		return false
	}
	if rule.MinMonths != nil && (ageMonths == nil || *ageMonths < *rule.MinMonths) {
		return false
	}
	if rule.MaxMonths != nil && (ageMonths == nil || *ageMonths > *rule.MaxMonths) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
