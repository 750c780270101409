package notification_handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/littlewanderers/frontdesk/internal/app/service/household"
	"github.com/littlewanderers/frontdesk/internal/app/service/membership"
	notificationlog "github.com/littlewanderers/frontdesk/internal/app/service/notification_log"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/platform/square"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/config"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

const (
	testKey = "sig-key"
	testURL = "https://desk.example.com/api/v1/webhooks/square"
)

type fakeLog struct {
	seen     map[string]bool
	finished map[string]models.WebhookLogStatus
	err      error
	n        int
}

func (f *fakeLog) Record(_ context.Context, e notificationlog.Entry) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if e.EventID != "" {
		if f.seen[e.EventID] {
			id := "log-" + e.EventID
			if f.finished[id] != models.WebhookLogStatusHandleFailed {
				return "", apperr.ErrDuplicate
			}
			f.finished[id] = models.WebhookLogStatusReceived
			return id, nil
		}
		f.seen[e.EventID] = true
	}
	f.n++
	return "log-" + e.EventID, nil
}

func (f *fakeLog) Finish(_ context.Context, id string, status models.WebhookLogStatus, _ any) {
	f.finished[id] = status
}

type fakeResolver struct {
	householdID string
	err         error
	got         []household.PaymentParty
}

func (f *fakeResolver) Resolve(_ context.Context, p household.PaymentParty) (string, error) {
	f.got = append(f.got, p)
	return f.householdID, f.err
}

type fakeMemberships struct {
	changes []membership.Change
	err     error
}

func (f *fakeMemberships) Apply(_ context.Context, c membership.Change) (*models.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.changes = append(f.changes, c)
	return &models.Membership{ID: "m-1", Status: c.Status}, nil
}

type fakeVisits struct {
	refs []string
	err  error
}

func (f *fakeVisits) MarkPaidFromPayment(_ context.Context, reference, paymentID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if reference != "visit_0190a5c0-0000-7000-8000-0000000000aa" {
		return false, nil
	}
	f.refs = append(f.refs, reference+"/"+paymentID)
	return true, nil
}

type fixture struct {
	h           *NotificationHandler
	log         *fakeLog
	resolver    *fakeResolver
	memberships *fakeMemberships
	visits      *fakeVisits
}

func newFixture(cfg *config.Config) *fixture {
	f := &fixture{
		log:         &fakeLog{seen: map[string]bool{}, finished: map[string]models.WebhookLogStatus{}},
		resolver:    &fakeResolver{householdID: "h1"},
		memberships: &fakeMemberships{},
		visits:      &fakeVisits{},
	}
	f.h = NewNotificationHandler(NewSquareParser(cfg), f.log, f.resolver, f.memberships, f.visits, zap.NewNop().Sugar())
	return f
}

func signedConfig() *config.Config {
	return &config.Config{
		Env:    config.EnvProd,
		Square: config.SquareConfig{SignatureKey: testKey, NotificationURL: testURL},
	}
}

func signed(body string) http.Header {
	h := http.Header{}
	h.Set(square.HeaderSignatureSHA256, square.Sign(testKey, testURL, []byte(body)))
	return h
}

const subscriptionActive = `{
  "event_id": "evt-1",
  "type": "subscription.updated",
  "data": {"object": {"subscription": {
    "id": "sub-1", "status": "ACTIVE", "customer_id": "cust-1", "charged_through_date": "2025-07-01"
  }}}
}`

func TestSubscriptionActivates(t *testing.T) {
	f := newFixture(signedConfig())
	outcome, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "trace-1")
	require.NoError(t, err)
	require.Equal(t, OutcomeHandled, outcome)

	require.Len(t, f.memberships.changes, 1)
	c := f.memberships.changes[0]
	require.Equal(t, types.OwnedByHousehold("h1"), c.Owner)
	require.Equal(t, types.MembershipStatusActive, c.Status)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), *c.RenewsAt)
	require.Equal(t, "sub-1", *c.ExternalSubscriptionID)
	require.Equal(t, "evt-1", c.Extra["event_id"])
	require.Equal(t, "cust-1", f.resolver.got[0].CustomerID)
	require.Equal(t, models.WebhookLogStatusHandled, f.log.finished["log-evt-1"])
}

func TestReplayedEventIsDuplicate(t *testing.T) {
	f := newFixture(signedConfig())
	_, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "")
	require.NoError(t, err)

	outcome, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "")
	require.ErrorIs(t, err, apperr.ErrDuplicate)
	require.Equal(t, OutcomeDuplicate, outcome)
	require.Len(t, f.memberships.changes, 1, "state logic must run once")
}

func TestSignature(t *testing.T) {
	body := subscriptionActive
	tampered := http.Header{}
	tampered.Set(square.HeaderSignatureSHA256, square.Sign(testKey, testURL, []byte(body+" ")))

	cases := []struct {
		name    string
		cfg     *config.Config
		header  http.Header
		wantErr error
	}{
		{"valid", signedConfig(), signed(body), nil},
		{"tampered", signedConfig(), tampered, apperr.ErrAuth},
		{"missing in prod", signedConfig(), http.Header{}, apperr.ErrAuth},
		{"prod ignores allow_unsigned", &config.Config{
			Env:     config.EnvProd,
			Square:  config.SquareConfig{SignatureKey: testKey},
			Webhook: config.WebhookConfig{AllowUnsigned: true},
		}, http.Header{}, apperr.ErrAuth},
		{"dev allows unsigned", &config.Config{
			Env:     config.EnvDev,
			Webhook: config.WebhookConfig{AllowUnsigned: true},
		}, http.Header{}, nil},
		{"dev still rejects bad signature", &config.Config{
			Env:     config.EnvDev,
			Square:  config.SquareConfig{SignatureKey: testKey, NotificationURL: testURL},
			Webhook: config.WebhookConfig{AllowUnsigned: true},
		}, tampered, apperr.ErrAuth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.cfg)
			_, err := f.h.HandleNotification(context.Background(), []byte(body), tc.header, "")
			if tc.wantErr == nil {
				require.NoError(t, err)
				require.Len(t, f.memberships.changes, 1)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			require.Zero(t, f.log.n, "rejected deliveries are not logged as received")
		})
	}
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(signedConfig())
	for _, body := range []string{`{not json`, `{"event_id":"e"}`} {
		_, err := f.h.HandleNotification(context.Background(), []byte(body), signed(body), "")
		require.ErrorIs(t, err, apperr.ErrInput)
	}
	require.Zero(t, f.log.n)
}

func TestUnresolvedHouseholdIsIgnored(t *testing.T) {
	f := newFixture(signedConfig())
	f.resolver.householdID = ""
	outcome, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "")
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, outcome)
	require.Empty(t, f.memberships.changes)
	require.Equal(t, models.WebhookLogStatusIgnored, f.log.finished["log-evt-1"])
}

func TestStoreFailures(t *testing.T) {
	t.Run("webhook log", func(t *testing.T) {
		f := newFixture(signedConfig())
		f.log.err = apperr.Dependency("insert webhook log", errors.New("conn refused"))
		_, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "")
		require.ErrorIs(t, err, apperr.ErrDependency)
		require.Empty(t, f.memberships.changes)
	})
	t.Run("membership upsert", func(t *testing.T) {
		f := newFixture(signedConfig())
		f.memberships.err = apperr.Dependency("upsert membership", errors.New("deadlock"))
		_, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "")
		require.ErrorIs(t, err, apperr.ErrDependency)
		require.Equal(t, models.WebhookLogStatusHandleFailed, f.log.finished["log-evt-1"])
	})
	t.Run("resolver", func(t *testing.T) {
		f := newFixture(signedConfig())
		f.resolver.err = apperr.Dependency("find square customer", errors.New("timeout"))
		_, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "")
		require.ErrorIs(t, err, apperr.ErrDependency)
	})
}

func TestRedeliveryAfterFailureApplies(t *testing.T) {
	f := newFixture(signedConfig())
	f.memberships.err = apperr.Dependency("upsert membership", errors.New("deadlock"))
	_, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "t1")
	require.ErrorIs(t, err, apperr.ErrDependency)
	require.Equal(t, models.WebhookLogStatusHandleFailed, f.log.finished["log-evt-1"])

	f.memberships.err = nil
	outcome, err := f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "t2")
	require.NoError(t, err)
	require.Equal(t, OutcomeHandled, outcome)
	require.Len(t, f.memberships.changes, 1)
	require.Equal(t, models.WebhookLogStatusHandled, f.log.finished["log-evt-1"])

	outcome, err = f.h.HandleNotification(context.Background(), []byte(subscriptionActive), signed(subscriptionActive), "t3")
	require.ErrorIs(t, err, apperr.ErrDuplicate)
	require.Equal(t, OutcomeDuplicate, outcome)
	require.Len(t, f.memberships.changes, 1)
}

func TestMembershipState(t *testing.T) {
	through := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		status     string
		want       types.MembershipStatus
		wantRenews bool
	}{
		{square.SubscriptionStatusActive, types.MembershipStatusActive, true},
		{square.SubscriptionStatusCanceled, types.MembershipStatusCanceled, false},
		{square.SubscriptionStatusDeactivated, types.MembershipStatusCanceled, false},
		{square.SubscriptionStatusPaused, types.MembershipStatusPaused, false},
		{"PENDING", types.MembershipStatusPaused, false},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			got, renews := MembershipState(&square.Subscription{Status: tc.status, ChargedThroughDate: &through})
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.wantRenews, renews != nil)
		})
	}
}

func TestPaymentCompletedClosesVisit(t *testing.T) {
	body := `{
  "event_id": "evt-pay",
  "type": "payment.updated",
  "data": {"object": {"payment": {
    "id": "pay-1", "status": "COMPLETED",
    "reference_id": "visit_0190a5c0-0000-7000-8000-0000000000aa",
    "amount_money": {"amount": 2300, "currency": "USD"}
  }}}
}`
	f := newFixture(signedConfig())
	outcome, err := f.h.HandleNotification(context.Background(), []byte(body), signed(body), "")
	require.NoError(t, err)
	require.Equal(t, OutcomeHandled, outcome)
	require.Equal(t, []string{"visit_0190a5c0-0000-7000-8000-0000000000aa/pay-1"}, f.visits.refs)
	require.Empty(t, f.memberships.changes)
}

func TestPaymentIgnoredCases(t *testing.T) {
	bodies := map[string]string{
		"not completed": `{"event_id":"e1","type":"payment.updated","data":{"object":{"payment":{"id":"p","status":"APPROVED","reference_id":"visit_0190a5c0-0000-7000-8000-0000000000aa"}}}}`,
		"no visit ref":  `{"event_id":"e2","type":"payment.created","data":{"object":{"payment":{"id":"p","status":"COMPLETED","reference_id":"hh_x"}}}}`,
		"other type":    `{"event_id":"e3","type":"invoice.paid","data":{"object":{}}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(signedConfig())
			outcome, err := f.h.HandleNotification(context.Background(), []byte(body), signed(body), "")
			require.NoError(t, err)
			require.Equal(t, OutcomeIgnored, outcome)
			require.Empty(t, f.visits.refs)
		})
	}
}
