package visit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/internal/app/feed"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/repository"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/metrics"
	"github.com/littlewanderers/frontdesk/pkg/tool"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// ReferencePrefix tags payment references that point at a visit.
const ReferencePrefix = "visit"

// ScanResult is the open visit after a scan.
type ScanResult struct {
	VisitID         string           `json:"visit_id"`
	Items           []models.Checkin `json:"items"`
	SubtotalCents   int64            `json:"subtotal_cents"`
	MembershipCount int              `json:"membership_count"`
	ItemCount       int              `json:"item_count"`
}

// Households confirms a scanned household exists.
type Households interface {
	GetByID(ctx context.Context, id string) (*models.Household, error)
}

type Service struct {
	visits     repository.VisitRepository
	households Households
	feed       feed.Publisher
	log        *zap.SugaredLogger
	now        func() time.Time
}

func New(visits repository.VisitRepository, households Households, publisher feed.Publisher, log *zap.SugaredLogger) *Service {
	return &Service{visits: visits, households: households, feed: publisher, log: log, now: time.Now}
}

// Scan adds check-ins to the household's open visit, creating it when needed,
// and returns the recomputed totals. Repeating a scan with the same ids leaves
// the totals unchanged.
func (s *Service) Scan(ctx context.Context, householdID string, checkinIDs []string) (*ScanResult, error) {
	start := time.Now()
	defer metrics.ObserveProcess("visit", "scan", start)

	householdID = strings.TrimSpace(householdID)
	if householdID == "" {
		return nil, apperr.Input("household_id required")
	}
	if !tool.IsUUID(householdID) {
		return nil, apperr.NotFound("household")
	}
	ids := lo.Uniq(lo.Filter(checkinIDs, func(id string, _ int) bool { return tool.IsUUID(id) }))
	if len(ids) == 0 {
		return nil, apperr.Input("checkin_ids required")
	}
	if _, err := s.households.GetByID(ctx, householdID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("household")
		}
		return nil, apperr.Dependency("load household", err)
	}

	v, err := s.openVisit(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if err := s.visits.Attach(ctx, v.ID, householdID, ids); err != nil {
		return nil, apperr.Dependency("attach checkins", err)
	}
	v, items, err := s.visits.Recompute(ctx, v.ID)
	if err != nil {
		return nil, apperr.Dependency("recompute visit", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("visit_scanned",
		"visit_id", v.ID,
		"household_id", householdID,
		"requested", len(checkinIDs),
		"item_count", v.ItemCount,
		"subtotal_cents", v.SubtotalCents,
	)
	return &ScanResult{
		VisitID:         v.ID,
		Items:           items,
		SubtotalCents:   v.SubtotalCents,
		MembershipCount: v.MembershipCount,
		ItemCount:       v.ItemCount,
	}, nil
}

// openVisitAttempts bounds find-or-create rounds lost to concurrent writers.
const openVisitAttempts = 2

// openVisit returns the household's open visit. When a concurrent request
// creates it first, the unique index rejects our insert and the winner's
// visit is used. If the winner's visit is closed before we read it, the
// lookup starts over.
func (s *Service) openVisit(ctx context.Context, householdID string) (*models.Visit, error) {
	for attempt := 1; ; attempt++ {
		v, err := s.visits.GetOpenByHousehold(ctx, householdID)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Dependency("load open visit", err)
		}

		v = &models.Visit{ID: tool.GenerateUUIDV7(), HouseholdID: householdID}
		err = s.visits.CreateOpen(ctx, v)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Dependency("create visit", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("visit_create_raced", "household_id", householdID, "attempt", attempt)
		v, err = s.visits.GetOpenByHousehold(ctx, householdID)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) || attempt >= openVisitAttempts {
			return nil, apperr.Dependency("reload open visit", err)
		}
	}
}

// Get returns a visit by id.
func (s *Service) Get(ctx context.Context, visitID string) (*models.Visit, error) {
	if !tool.IsUUID(visitID) {
		return nil, apperr.NotFound("visit")
	}
	v, err := s.visits.GetByID(ctx, visitID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("visit")
	}
	if err != nil {
		return nil, apperr.Dependency("load visit", err)
	}
	return v, nil
}

// Close marks the visit paid at the desk. Closing a visit that is already
// paid succeeds without changing it.
func (s *Service) Close(ctx context.Context, visitID, method string, ref *string) (*models.Visit, error) {
	visitID = strings.TrimSpace(visitID)
	method = strings.TrimSpace(method)
	if visitID == "" {
		return nil, apperr.Input("visit_id required")
	}
	if method == "" {
		return nil, apperr.Input("payment_method required")
	}
	if ref != nil && strings.TrimSpace(*ref) == "" {
		ref = nil
	}
	return s.markPaid(ctx, visitID, method, ref)
}

// MarkPaidFromPayment closes the visit a completed processor payment refers
// to. reference is "visit_<id>"; other references are ignored and reported
// as not handled.
func (s *Service) MarkPaidFromPayment(ctx context.Context, reference, paymentID string) (bool, error) {
	visitID, ok := tool.TrimPrefixedID(reference, ReferencePrefix)
	if !ok {
		return false, nil
	}
	if _, err := s.markPaid(ctx, visitID, string(types.PaymentProviderSquare), lo.EmptyableToPtr(paymentID)); err != nil {
		return false, err
	}
	return true, nil
}

// Reference returns the payment reference for a visit.
func Reference(visitID string) string {
	return ReferencePrefix + "_" + visitID
}

func (s *Service) markPaid(ctx context.Context, visitID, method string, ref *string) (*models.Visit, error) {
	if !tool.IsUUID(visitID) {
		return nil, apperr.NotFound("visit")
	}
	closedAt := s.now().UTC()
	updated, err := s.visits.MarkPaid(ctx, visitID, method, ref, closedAt)
	if err != nil {
		return nil, apperr.Dependency("close visit", err)
	}
	v, err := s.Get(ctx, visitID)
	if err != nil {
		return nil, err
	}
	log := logctx.FromCtx(ctx, s.log)
	if !updated {
		log.Infow("visit_already_closed", "visit_id", visitID, "payment_status", v.PaymentStatus)
		return v, nil
	}
	log.Infow("visit_closed",
		"visit_id", visitID,
		"payment_method", method,
		"subtotal_cents", v.SubtotalCents,
	)
	if s.feed != nil {
		s.feed.Publish(feed.NewMessage("visit", "paid", visitID, v))
	}
	return v, nil
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(r repository.HouseholdRepository) Households { return r },
	),
)
