// Package checkout starts Square hosted checkouts: the household membership
// subscription and one-off payment for an open visit.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/littlewanderers/frontdesk/internal/app/service/household"
	"github.com/littlewanderers/frontdesk/internal/app/service/visit"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/platform/square"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/config"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/metrics"
	"github.com/littlewanderers/frontdesk/pkg/tool"
)

const (
	membershipSuccessPath = "/landing/membership?success=1"
	visitSuccessPath      = "/landing/checkout/success"
	visitLineName         = "Visit Payment"
)

// Households finds the caller's household.
type Households interface {
	ForOwner(ctx context.Context, ownerUserID string) (*models.Household, error)
}

// Visits loads the visit being paid for.
type Visits interface {
	Get(ctx context.Context, visitID string) (*models.Visit, error)
}

type Service struct {
	cfg        *config.Config
	square     square.Client
	households Households
	visits     Visits
	log        *zap.SugaredLogger
}

func New(cfg *config.Config, client square.Client, households Households, visits Visits, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, square: client, households: households, visits: visits, log: log}
}

// Subscribe creates a membership subscription checkout for the caller's
// household and returns its URL. The link carries "hh_<household id>" as
// reference so the webhook can find the household without a customer mapping.
func (s *Service) Subscribe(ctx context.Context, userID, email string) (string, error) {
	start := time.Now()
	defer metrics.ObserveProcess("checkout", "subscribe", start)

	if userID == "" {
		return "", apperr.ErrAuth
	}
	hh, err := s.households.ForOwner(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", apperr.Input("no household")
	}
	if err != nil {
		return "", err
	}

	sq := s.cfg.Square
	link, err := s.square.CreatePaymentLink(ctx, &square.PaymentLinkRequest{
		IdempotencyKey:              tool.GenerateUUIDV7(),
		Name:                        sq.MembershipName,
		Price:                       square.Money{Amount: sq.MembershipPriceCents, Currency: sq.Currency},
		ReferenceID:                 household.ReferencePrefix + "_" + hh.ID,
		RedirectURL:                 s.redirect(membershipSuccessPath),
		BuyerEmail:                  email,
		SubscriptionPlanVariationID: sq.PlanVariation,
	})
	if err != nil {
		return "", apperr.Dependency("create subscription link", err)
	}
	if link.URL == "" {
		return "", apperr.Dependency("create subscription link", errors.New("no url returned"))
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription_checkout_created",
		"household_id", hh.ID,
		"payment_link_id", link.ID,
	)
	return link.URL, nil
}

// VisitCheckout creates a one-off payment link for the open visit's subtotal.
// The visit is closed later by the payment webhook.
func (s *Service) VisitCheckout(ctx context.Context, visitID string) (string, error) {
	start := time.Now()
	defer metrics.ObserveProcess("checkout", "visit", start)

	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return "", apperr.Input("visit_id required")
	}
	v, err := s.visits.Get(ctx, visitID)
	if err != nil {
		return "", err
	}
	if v.Paid() {
		return "", apperr.Input("visit already paid")
	}
	if v.SubtotalCents <= 0 {
		return "", apperr.Input("nothing to pay")
	}

	link, err := s.square.CreatePaymentLink(ctx, &square.PaymentLinkRequest{
		// Same visit and amount yields the same link; a rescan that changes the
		// subtotal gets a new one.
		IdempotencyKey: fmt.Sprintf("%s-%d", v.ID, v.SubtotalCents),
		Name:           visitLineName,
		Price:          square.Money{Amount: v.SubtotalCents, Currency: s.cfg.Square.Currency},
		ReferenceID:    visit.Reference(v.ID),
		RedirectURL:    s.redirect(visitSuccessPath),
		PaymentNote:    fmt.Sprintf("%d item(s)", v.ItemCount),
	})
	if err != nil {
		return "", apperr.Dependency("create visit link", err)
	}
	if link.URL == "" {
		return "", apperr.Dependency("create visit link", errors.New("no url returned"))
	}
	logctx.FromCtx(ctx, s.log).Infow("visit_checkout_created",
		"visit_id", v.ID,
		"subtotal_cents", v.SubtotalCents,
		"payment_link_id", link.ID,
	)
	return link.URL, nil
}

func (s *Service) redirect(path string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + path
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(h *household.Service) Households { return h },
		func(v *visit.Service) Visits { return v },
	),
)
