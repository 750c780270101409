package membership

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/repository"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

type Service struct {
	memberships repository.MembershipRepository
	log         *zap.SugaredLogger
}

func New(memberships repository.MembershipRepository, log *zap.SugaredLogger) *Service {
	return &Service{memberships: memberships, log: log}
}

// Covers reports whether the household or the person holds an active,
// unexpired membership at now.
func (s *Service) Covers(ctx context.Context, householdID, personID string, now time.Time) (bool, error) {
	ok, err := s.memberships.HasActive(ctx, householdID, personID, now)
	if err != nil {
		return false, apperr.Dependency("membership check", err)
	}
	return ok, nil
}

// Change describes a membership state transition coming from the payment
// processor or from staff.
type Change struct {
	Owner                  types.MembershipOwner
	Status                 types.MembershipStatus
	RenewsAt               *time.Time
	ExternalSubscriptionID *string
	Reason                 types.MembershipChangeReason
	Extra                  map[string]any
}

// Apply upserts the membership described by c. Rows are matched by external
// subscription id first and by owner second.
func (s *Service) Apply(ctx context.Context, c Change) (*models.Membership, error) {
	if err := c.Owner.Validate(); err != nil {
		return nil, apperr.Input(err.Error())
	}
	m := &models.Membership{
		Status:                 c.Status,
		RenewsAt:               c.RenewsAt,
		ExternalSubscriptionID: c.ExternalSubscriptionID,
	}
	m.SetOwner(c.Owner)
	if err := s.memberships.Upsert(ctx, m, c.Reason, c.Extra); err != nil {
		return nil, apperr.Dependency("upsert membership", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("membership_changed",
		"membership_id", m.ID,
		"owner", c.Owner.String(),
		"status", m.Status,
		"reason", c.Reason,
	)
	return m, nil
}

// Pause marks the household's membership paused. The renewal date is kept so
// the processor can resume the same subscription.
func (s *Service) Pause(ctx context.Context, householdID string) (*models.Membership, error) {
	owner := types.OwnedByHousehold(householdID)
	current, err := s.Get(ctx, owner)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	change := Change{
		Owner:  owner,
		Status: types.MembershipStatusPaused,
		Reason: types.MembershipChangeReasonPause,
	}
	if current != nil {
		change.RenewsAt = current.RenewsAt
		change.ExternalSubscriptionID = current.ExternalSubscriptionID
	}
	return s.Apply(ctx, change)
}

func (s *Service) Get(ctx context.Context, owner types.MembershipOwner) (*models.Membership, error) {
	m, err := s.memberships.GetByOwner(ctx, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("membership")
	}
	if err != nil {
		return nil, apperr.Dependency("get membership", err)
	}
	return m, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
