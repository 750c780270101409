package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/platform/square"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/config"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

type fakeSquare struct {
	got  []*square.PaymentLinkRequest
	link *square.PaymentLink
	err  error
}

func (f *fakeSquare) CreatePaymentLink(_ context.Context, req *square.PaymentLinkRequest) (*square.PaymentLink, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.link, nil
}

type fakeHouseholds map[string]*models.Household

func (f fakeHouseholds) ForOwner(_ context.Context, owner string) (*models.Household, error) {
	if h, ok := f[owner]; ok {
		return h, nil
	}
	return nil, apperr.NotFound("household")
}

type fakeVisits map[string]*models.Visit

func (f fakeVisits) Get(_ context.Context, id string) (*models.Visit, error) {
	if v, ok := f[id]; ok {
		return v, nil
	}
	return nil, apperr.NotFound("visit")
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL: "https://desk.example.com/",
		Square: config.SquareConfig{
			PlanVariation:        "plan-var-1",
			MembershipName:       "Little Wanderers Monthly Membership",
			MembershipPriceCents: 6000,
			Currency:             "USD",
		},
	}
}

func TestSubscribe(t *testing.T) {
	sq := &fakeSquare{link: &square.PaymentLink{ID: "pl-1", URL: "https://square.link/u/abc"}}
	svc := New(testConfig(), sq, fakeHouseholds{"user-1": {ID: "h1", OwnerUserID: "user-1"}}, fakeVisits{}, zap.NewNop().Sugar())

	url, err := svc.Subscribe(context.Background(), "user-1", "parent@example.com")
	require.NoError(t, err)
	require.Equal(t, "https://square.link/u/abc", url)

	require.Len(t, sq.got, 1)
	req := sq.got[0]
	require.Equal(t, "hh_h1", req.ReferenceID)
	require.Equal(t, "plan-var-1", req.SubscriptionPlanVariationID)
	require.Equal(t, square.Money{Amount: 6000, Currency: "USD"}, req.Price)
	require.Equal(t, "https://desk.example.com/landing/membership?success=1", req.RedirectURL)
	require.Equal(t, "parent@example.com", req.BuyerEmail)
	require.NotEmpty(t, req.IdempotencyKey)
}

func TestSubscribeErrors(t *testing.T) {
	households := fakeHouseholds{"user-1": {ID: "h1"}}
	cases := []struct {
		name   string
		user   string
		square *fakeSquare
		want   error
	}{
		{"anonymous", "", &fakeSquare{}, apperr.ErrAuth},
		{"no household", "user-2", &fakeSquare{}, apperr.ErrInput},
		{"square error", "user-1", &fakeSquare{err: errors.New("502")}, apperr.ErrDependency},
		{"no url", "user-1", &fakeSquare{link: &square.PaymentLink{ID: "pl-1"}}, apperr.ErrDependency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(testConfig(), tc.square, households, fakeVisits{}, zap.NewNop().Sugar())
			_, err := svc.Subscribe(context.Background(), tc.user, "")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVisitCheckout(t *testing.T) {
	visits := fakeVisits{
		"v-open":  {ID: "v-open", PaymentStatus: types.PaymentStatusOpen, SubtotalCents: 2300, ItemCount: 2},
		"v-paid":  {ID: "v-paid", PaymentStatus: types.PaymentStatusPaid, SubtotalCents: 2300},
		"v-empty": {ID: "v-empty", PaymentStatus: types.PaymentStatusOpen},
	}
	sq := &fakeSquare{link: &square.PaymentLink{ID: "pl-2", URL: "https://square.link/u/visit"}}
	svc := New(testConfig(), sq, fakeHouseholds{}, visits, zap.NewNop().Sugar())

	url, err := svc.VisitCheckout(context.Background(), "v-open")
	require.NoError(t, err)
	require.Equal(t, "https://square.link/u/visit", url)
	req := sq.got[0]
	require.Equal(t, "visit_v-open", req.ReferenceID)
	require.Equal(t, "v-open-2300", req.IdempotencyKey)
	require.EqualValues(t, 2300, req.Price.Amount)
	require.Empty(t, req.SubscriptionPlanVariationID)

	_, err = svc.VisitCheckout(context.Background(), "v-paid")
	require.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.VisitCheckout(context.Background(), "v-empty")
	require.ErrorIs(t, err, apperr.ErrInput)
	_, err = svc.VisitCheckout(context.Background(), "v-missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.VisitCheckout(context.Background(), "")
	require.ErrorIs(t, err, apperr.ErrInput)
	require.Len(t, sq.got, 1)
}
