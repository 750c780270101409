package pricing

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// Comparator orders two eligible rules; negative means a is preferred.
type Comparator func(a, b *models.PricingRule) int

// ByRoleSpecificity prefers rules bound to a role over wildcard rules.
func ByRoleSpecificity(a, b *models.PricingRule) int {
	return cmp.Compare(roleRank(a), roleRank(b))
}

func roleRank(r *models.PricingRule) int {
	if r.Role != nil {
		return 0
	}
	return 1
}

// ByRangeWidth prefers the narrower age range. An open upper bound is
// infinitely wide.
func ByRangeWidth(a, b *models.PricingRule) int {
	return cmp.Compare(rangeWidth(a), rangeWidth(b))
}

func rangeWidth(r *models.PricingRule) float64 {
	if r.MaxMonths == nil {
		return math.Inf(1)
	}
	lower := 0
	if r.MinMonths != nil {
		lower = *r.MinMonths
	}
	return float64(*r.MaxMonths - lower)
}

// ByRecency prefers the rule that became active most recently. A rule with
// no start date counts as the oldest.
func ByRecency(a, b *models.PricingRule) int {
	switch {
	case a.ActiveFrom == nil && b.ActiveFrom == nil:
		return 0
	case a.ActiveFrom == nil:
		return 1
	case b.ActiveFrom == nil:
		return -1
	}
	return b.ActiveFrom.Compare(*a.ActiveFrom)
}

// ByID makes the order total.
func ByID(a, b *models.PricingRule) int {
	return strings.Compare(a.ID, b.ID)
}

// DefaultChain is the selection order used at the desk.
var DefaultChain = []Comparator{ByRoleSpecificity, ByRangeWidth, ByRecency, ByID}

func chain(cs []Comparator) func(a, b *models.PricingRule) int {
	return func(a, b *models.PricingRule) int {
		for _, c := range cs {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// EligibleRules returns the rules that apply, best first.
func EligibleRules(rules []models.PricingRule, role types.Role, ageMonths *int, now time.Time) []*models.PricingRule {
	eligible := lo.FilterMap(rules, func(r models.PricingRule, _ int) (*models.PricingRule, bool) {
		return &r, RuleApplies(&r, role, ageMonths, now)
	})
	slices.SortStableFunc(eligible, chain(DefaultChain))
	return eligible
}

// PickBestRule selects exactly one rule or fails with ErrNoApplicableRule.
func PickBestRule(rules []models.PricingRule, role types.Role, ageMonths *int, now time.Time) (*models.PricingRule, error) {
	eligible := EligibleRules(rules, role, ageMonths, now)
	if len(eligible) == 0 {
		return nil, apperr.ErrNoApplicableRule
	}
	return eligible[0], nil
}
