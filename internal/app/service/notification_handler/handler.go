package notification_handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/littlewanderers/frontdesk/internal/app/service/household"
	"github.com/littlewanderers/frontdesk/internal/app/service/membership"
	notificationlog "github.com/littlewanderers/frontdesk/internal/app/service/notification_log"
	"github.com/littlewanderers/frontdesk/internal/app/service/visit"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/platform/square"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/metrics"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// Outcome is what the reconciler did with a delivery.
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
)

type NotificationLog interface {
	Record(ctx context.Context, e notificationlog.Entry) (string, error)
	Finish(ctx context.Context, id string, status models.WebhookLogStatus, result any)
}

type HouseholdResolver interface {
	Resolve(ctx context.Context, party household.PaymentParty) (string, error)
}

type MembershipWriter interface {
	Apply(ctx context.Context, c membership.Change) (*models.Membership, error)
}

type VisitPayments interface {
	MarkPaidFromPayment(ctx context.Context, reference, paymentID string) (bool, error)
}

type NotificationHandler struct {
	parser      NotificationParser
	notifSvc    NotificationLog
	households  HouseholdResolver
	memberships MembershipWriter
	visits      VisitPayments
	Logger      *zap.SugaredLogger
}

func NewNotificationHandler(
	parser NotificationParser,
	notif NotificationLog,
	households HouseholdResolver,
	memberships MembershipWriter,
	visits VisitPayments,
	log *zap.SugaredLogger,
) *NotificationHandler {
	return &NotificationHandler{
		parser:      parser,
		notifSvc:    notif,
		households:  households,
		memberships: memberships,
		visits:      visits,
		Logger:      log,
	}
}

// result is stored on the webhook log row.
type result struct {
	HouseholdID  string `json:"household_id,omitempty"`
	MembershipID string `json:"membership_id,omitempty"`
	Status       string `json:"status,omitempty"`
	VisitPaid    bool   `json:"visit_paid,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleNotification authenticates, records and applies one webhook delivery.
// A replayed event returns OutcomeDuplicate with an error wrapping
// apperr.ErrDuplicate and changes nothing.
func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte, header http.Header, traceID string) (outcome Outcome, resErr error) {
	start := time.Now()
	log := logctx.FromCtx(ctx, h.Logger)
	provider := h.parser.Provider()
	eventType := "unknown"
	defer func() {
		metrics.ObserveProcess("webhook", string(provider), start)
		metrics.ObserveWebhook(eventType, webhookResult(outcome, resErr))
	}()

	event, err := h.parser.Parse(body, header)
	if err != nil {
		log.Warnw("webhook_rejected", "provider", provider, "error", err)
		return "", err
	}
	eventType = event.Type

	logID, err := h.notifSvc.Record(ctx, notificationlog.Entry{
		Provider:  string(provider),
		EventID:   event.ID,
		EventType: event.Type,
		TraceID:   traceID,
		Payload:   body,
	})
	if errors.Is(err, apperr.ErrDuplicate) {
		log.Infow("webhook_duplicate", "event_id", event.ID, "event_type", event.Type)
		return OutcomeDuplicate, err
	}
	if err != nil {
		log.Errorw("webhook_log_failed", "event_id", event.ID, "error", err)
		return "", err
	}
	log.Infow("webhook_received", "event_id", event.ID, "event_type", event.Type, "webhook_log_id", logID)

	var res result
	defer func() {
		status := models.WebhookLogStatusHandled
		switch {
		case resErr != nil:
			status = models.WebhookLogStatusHandleFailed
			res.Error = resErr.Error()
		case outcome == OutcomeIgnored:
			status = models.WebhookLogStatusIgnored
		}
		h.notifSvc.Finish(ctx, logID, status, res)
	}()

	switch {
	case event.IsPaymentEvent():
		return h.handlePayment(ctx, event, &res)
	case event.IsSubscriptionEvent():
		return h.handleSubscription(ctx, event, &res)
	default:
		res.Reason = "unhandled event type"
		log.Infow("webhook_ignored", "event_id", event.ID, "event_type", event.Type)
		return OutcomeIgnored, nil
	}
}

func (h *NotificationHandler) handleSubscription(ctx context.Context, event *square.Event, res *result) (Outcome, error) {
	log := logctx.FromCtx(ctx, h.Logger)
	sub := event.Subscription
	if sub == nil {
		res.Reason = "no subscription object"
		return OutcomeIgnored, nil
	}

	householdID, err := h.households.Resolve(ctx, household.PaymentParty{
		CustomerID:  event.CustomerID,
		ReferenceID: event.ReferenceID,
		Email:       event.Email,
	})
	if err != nil {
		log.Errorw("webhook_resolve_household_failed", "event_id", event.ID, "error", err)
		return "", err
	}
	if householdID == "" {
		res.Reason = "household not resolved"
		log.Warnw("webhook_household_unresolved",
			"event_id", event.ID,
			"square_customer_id", event.CustomerID,
			"subscription_id", sub.ID,
		)
		return OutcomeIgnored, nil
	}
	res.HouseholdID = householdID

	status, renewsAt := MembershipState(sub)
	change := membership.Change{
		Owner:    types.OwnedByHousehold(householdID),
		Status:   status,
		RenewsAt: renewsAt,
		Reason:   types.MembershipChangeReasonWebhook,
		Extra: map[string]any{
			"event_id":        event.ID,
			"event_type":      event.Type,
			"square_status":   sub.Status,
			"subscription_id": sub.ID,
		},
	}
	if sub.ID != "" {
		change.ExternalSubscriptionID = &sub.ID
	}
	m, err := h.memberships.Apply(ctx, change)
	if err != nil {
		log.Errorw("webhook_membership_upsert_failed", "event_id", event.ID, "household_id", householdID, "error", err)
		return "", err
	}
	res.MembershipID = m.ID
	res.Status = string(m.Status)
	return OutcomeHandled, nil
}

// MembershipState maps a Square subscription status onto the membership.
// Only ACTIVE carries a renewal date; anything unrecognised pauses.
func MembershipState(sub *square.Subscription) (types.MembershipStatus, *time.Time) {
	switch sub.Status {
	case square.SubscriptionStatusActive:
		return types.MembershipStatusActive, sub.ChargedThroughDate
	case square.SubscriptionStatusCanceled, square.SubscriptionStatusDeactivated:
		return types.MembershipStatusCanceled, nil
	default:
		return types.MembershipStatusPaused, nil
	}
}

func (h *NotificationHandler) handlePayment(ctx context.Context, event *square.Event, res *result) (Outcome, error) {
	p := event.Payment
	if p == nil || p.Status != square.PaymentStatusCompleted {
		res.Reason = "payment not completed"
		return OutcomeIgnored, nil
	}
	paid, err := h.visits.MarkPaidFromPayment(ctx, p.ReferenceID, p.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		res.Reason = "visit not found"
		logctx.FromCtx(ctx, h.Logger).Warnw("webhook_visit_not_found", "event_id", event.ID, "reference_id", p.ReferenceID)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}
	if !paid {
		res.Reason = "no visit reference"
		return OutcomeIgnored, nil
	}
	res.VisitPaid = true
	logctx.FromCtx(ctx, h.Logger).Infow("webhook_visit_paid", "event_id", event.ID, "reference_id", p.ReferenceID, "payment_id", p.ID)
	return OutcomeHandled, nil
}

func webhookResult(outcome Outcome, err error) string {
	switch {
	case outcome != "":
		return string(outcome)
	case errors.Is(err, apperr.ErrAuth):
		return "unauthorized"
	case errors.Is(err, apperr.ErrInput):
		return "malformed"
	default:
		return "error"
	}
}

var Module = fx.Options(
	fx.Provide(
		NewSquareParser,
		NewNotificationHandler,
		func(s *notificationlog.Service) NotificationLog { return s },
		func(s *household.Service) HouseholdResolver { return s },
		func(s *membership.Service) MembershipWriter { return s },
		func(s *visit.Service) VisitPayments { return s },
	),
)
