package checkin

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/internal/app/feed"
	"github.com/littlewanderers/frontdesk/internal/app/service/membership"
	"github.com/littlewanderers/frontdesk/internal/app/service/pricing"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/repository"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/metrics"
	"github.com/littlewanderers/frontdesk/pkg/tool"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// MembershipChecker reports household-or-person coverage.
type MembershipChecker interface {
	Covers(ctx context.Context, householdID, personID string, now time.Time) (bool, error)
}

// Quoter picks the admission price for a person without coverage.
type Quoter interface {
	Quote(ctx context.Context, role types.Role, birthdate *time.Time, now time.Time) (*models.PricingRule, error)
}

// Result is what the desk shows after a scan.
type Result struct {
	CheckinID         string     `json:"checkin_id"`
	MembershipApplied bool       `json:"membership_applied"`
	PriceCents        int64      `json:"price_cents"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Birthdate         *time.Time `json:"birthdate"`
	PricingRuleID     *string    `json:"pricing_rule_id,omitempty"`
	HouseholdID       string     `json:"household_id"`
}

type Service struct {
	people      repository.PersonRepository
	checkins    repository.CheckinRepository
	memberships MembershipChecker
	pricing     Quoter
	feed        feed.Publisher
	log         *zap.SugaredLogger
	now         func() time.Time
}

func New(
	people repository.PersonRepository,
	checkins repository.CheckinRepository,
	memberships MembershipChecker,
	pricing Quoter,
	publisher feed.Publisher,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		people:      people,
		checkins:    checkins,
		memberships: memberships,
		pricing:     pricing,
		feed:        publisher,
		log:         log,
		now:         time.Now,
	}
}

// Record prices and stores one admission for personID. Every successful call
// writes exactly one check-in row; it is not idempotent.
func (s *Service) Record(ctx context.Context, personID, source string) (res *Result, err error) {
	start := time.Now()
	log := logctx.FromCtx(ctx, s.log)
	defer func() {
		metrics.ObserveProcess("checkin", "record", start)
		metrics.ObserveCheckin(outcome(err))
	}()

	personID = strings.TrimSpace(personID)
	if personID == "" {
		return nil, apperr.Input("person_id required")
	}
	if source == "" {
		source = types.CheckinSourceQR
	}
	if !tool.IsUUID(personID) {
		return nil, apperr.NotFound("person")
	}

	person, err := s.people.GetByID(ctx, personID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("person")
	}
	if err != nil {
		return nil, apperr.Dependency("load person", err)
	}

	now := s.now()
	c := &models.Checkin{
		ID:       tool.GenerateUUIDV7(),
		PersonID: person.ID,
		Source:   source,
	}

	covered, err := s.memberships.Covers(ctx, person.HouseholdID, person.ID, now)
	if err != nil {
		return nil, err
	}
	if covered {
		c.MembershipApplied = true
	} else {
		rule, err := s.pricing.Quote(ctx, person.Role, person.Birthdate, now)
		if err != nil {
			if errors.Is(err, apperr.ErrNoApplicableRule) {
				log.Warnw("checkin_no_applicable_rule", "person_id", person.ID, "role", person.Role)
			}
			return nil, err
		}
		c.PriceCents = rule.PriceCents
		c.PricingRuleID = &rule.ID
	}

	if err := s.checkins.Create(ctx, c); err != nil {
		return nil, apperr.Dependency("insert checkin", err)
	}

	res = &Result{
		CheckinID:         c.ID,
		MembershipApplied: c.MembershipApplied,
		PriceCents:        c.PriceCents,
		FirstName:         person.FirstName,
		LastName:          person.LastName,
		Birthdate:         person.Birthdate,
		PricingRuleID:     c.PricingRuleID,
		HouseholdID:       person.HouseholdID,
	}
	log.Infow("checkin_recorded",
		"checkin_id", c.ID,
		"person_id", person.ID,
		"membership_applied", c.MembershipApplied,
		"price_cents", c.PriceCents,
	)
	if s.feed != nil {
		s.feed.Publish(feed.NewMessage("checkin", "recorded", c.ID, res))
	}
	return res, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "recorded"
	case errors.Is(err, apperr.ErrInput):
		return "invalid"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrNoApplicableRule):
		return "no_rule"
	default:
		return "error"
	}
}

// List returns check-ins for the admin listing.
func (s *Service) List(ctx context.Context, filters types.Filters, limit, offset int) ([]models.Checkin, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	for _, f := range filters {
		if err := f.Validate(repository.CheckinFilterFields); err != nil {
			return nil, 0, apperr.Input(err.Error())
		}
	}
	items, total, err := s.checkins.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, 0, apperr.Dependency("list checkins", err)
	}
	return items, total, nil
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(m *membership.Service) MembershipChecker { return m },
		func(p *pricing.Service) Quoter { return p },
	),
)
