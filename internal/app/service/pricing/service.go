package pricing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/repository"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// DefaultGapHorizonMonths bounds the catalog gap report (18 years).
const DefaultGapHorizonMonths = 18 * 12

type Service struct {
	rules repository.PricingRuleRepository
	log   *zap.SugaredLogger
}

func New(rules repository.PricingRuleRepository, log *zap.SugaredLogger) *Service {
	return &Service{rules: rules, log: log}
}

// Quote prices one admission. A catalog load failure is a dependency
// failure; an empty match is ErrNoApplicableRule.
func (s *Service) Quote(ctx context.Context, role types.Role, birthdate *time.Time, now time.Time) (*models.PricingRule, error) {
	rules, err := s.rules.ListAll(ctx)
	if err != nil {
		return nil, apperr.Dependency("load pricing rules", err)
	}
	age := AgeInMonths(birthdate, now)
	rule, err := PickBestRule(rules, role, age, now)
	if errors.Is(err, apperr.ErrNoApplicableRule) {
		logctx.FromCtx(ctx, s.log).Warnw("no_applicable_pricing_rule", "role", role, "age_months", age)
	}
	return rule, err
}

func (s *Service) Gaps(ctx context.Context, now time.Time, maxMonths int) ([]Gap, error) {
	if maxMonths <= 0 {
		maxMonths = DefaultGapHorizonMonths
	}
	rules, err := s.rules.ListAll(ctx)
	if err != nil {
		return nil, apperr.Dependency("load pricing rules", err)
	}
	return FindGaps(rules, now, maxMonths), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
