package pricing

import (
	"time"

	"github.com/samber/lo"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// Gap is a contiguous age range, in months, for which no rule applies.
// UnknownAge marks people without a birthdate.
type Gap struct {
	Role       types.Role `json:"role"`
	FromMonths int        `json:"from_months"`
	ToMonths   int        `json:"to_months"`
	UnknownAge bool       `json:"unknown_age,omitempty"`
}

// FindGaps walks every role and every age up to maxMonths and reports the
// ranges the catalog does not price.
func FindGaps(rules []models.PricingRule, now time.Time, maxMonths int) []Gap {
	var gaps []Gap
	for _, role := range []types.Role{types.RoleAdult, types.RoleChild} {
		covered := func(age *int) bool {
			return lo.ContainsBy(rules, func(r models.PricingRule) bool {
				return RuleApplies(&r, role, age, now)
			})
		}
		if !covered(nil) {
			gaps = append(gaps, Gap{Role: role, UnknownAge: true})
		}
		var open *Gap
		for age := 0; age <= maxMonths; age++ {
			if covered(&age) {
				if open != nil {
					gaps = append(gaps, *open)
					open = nil
				}
				continue
			}
			if open == nil {
				open = &Gap{Role: role, FromMonths: age}
			}
			open.ToMonths = age
		}
		if open != nil {
			gaps = append(gaps, *open)
		}
	}
	return gaps
}
