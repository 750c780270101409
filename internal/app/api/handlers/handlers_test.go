package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/littlewanderers/frontdesk/internal/app/service/checkin"
	"github.com/littlewanderers/frontdesk/internal/app/service/household"
	nh "github.com/littlewanderers/frontdesk/internal/app/service/notification_handler"
	"github.com/littlewanderers/frontdesk/internal/app/service/pricing"
	"github.com/littlewanderers/frontdesk/internal/app/service/statistics"
	"github.com/littlewanderers/frontdesk/internal/app/service/visit"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/response"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubRecorder struct {
	res *checkin.Result
	err error
	got []string
}

func (s *stubRecorder) Record(_ context.Context, personID, source string) (*checkin.Result, error) {
	s.got = append(s.got, personID+"/"+source)
	return s.res, s.err
}

func TestApiCheckin(t *testing.T) {
	birth := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		body     any
		recorder *stubRecorder
		wantCode int
		wantBody string
	}{
		{
			name: "priced",
			body: CheckinRequest{PersonID: "p-1"},
			recorder: &stubRecorder{res: &checkin.Result{
				CheckinID: "c-1", PriceCents: 500, FirstName: "Leo", LastName: "Park", Birthdate: &birth,
			}},
			wantCode: http.StatusOK,
			wantBody: `{"ok":true,"checkin_id":"c-1","membership_applied":false,"price_cents":500,"first_name":"Leo","last_name":"Park","birthdate":"2025-03-15T00:00:00Z"}`,
		},
		{
			name:     "member",
			body:     CheckinRequest{PersonID: "p-1", Source: "desk"},
			recorder: &stubRecorder{res: &checkin.Result{CheckinID: "c-2", MembershipApplied: true, FirstName: "Leo"}},
			wantCode: http.StatusOK,
			wantBody: `{"ok":true,"checkin_id":"c-2","membership_applied":true,"price_cents":0,"first_name":"Leo"}`,
		},
		{"bad json", "{", &stubRecorder{}, http.StatusBadRequest, `{"ok":false,"error":"invalid json","membership_applied":false,"price_cents":0}`},
		{"missing id", CheckinRequest{}, &stubRecorder{err: apperr.Input("person_id required")}, http.StatusBadRequest, ""},
		{"unknown person", CheckinRequest{PersonID: "p-9"}, &stubRecorder{err: apperr.NotFound("person")}, http.StatusNotFound, ""},
		{"no rule", CheckinRequest{PersonID: "p-1"}, &stubRecorder{err: apperr.ErrNoApplicableRule}, http.StatusUnprocessableEntity, ""},
		{"store down", CheckinRequest{PersonID: "p-1"}, &stubRecorder{err: apperr.Dependency("insert checkin", errors.New("x"))}, http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/api/v1/checkin", ApiCheckin(tc.recorder))
			w := do(r, http.MethodPost, "/api/v1/checkin", tc.body)
			require.Equal(t, tc.wantCode, w.Code)
			if tc.wantBody != "" {
				require.JSONEq(t, tc.wantBody, w.Body.String())
			}
			if tc.wantCode != http.StatusOK {
				var out CheckinResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
				require.False(t, out.OK)
				require.NotEmpty(t, out.Error)
			}
		})
	}
}

type stubVisits struct {
	scan    *visit.ScanResult
	err     error
	closed  []string
	url     string
	visitID string
}

func (s *stubVisits) Scan(_ context.Context, householdID string, ids []string) (*visit.ScanResult, error) {
	return s.scan, s.err
}

func (s *stubVisits) Close(_ context.Context, visitID, method string, ref *string) (*models.Visit, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.closed = append(s.closed, visitID+"/"+method)
	return &models.Visit{ID: visitID, PaymentStatus: types.PaymentStatusPaid}, nil
}

func (s *stubVisits) VisitCheckout(_ context.Context, visitID string) (string, error) {
	s.visitID = visitID
	return s.url, s.err
}

func TestVisitRoutes(t *testing.T) {
	stub := &stubVisits{
		scan: &visit.ScanResult{VisitID: "v-1", SubtotalCents: 1700, ItemCount: 2, Items: []models.Checkin{}},
		url:  "https://square.link/u/v",
	}
	r := gin.New()
	RegisterDeskRoutes(r.Group("/api/v1"), DeskRoutes{Checkins: &stubRecorder{}, Visits: stub, Checkout: stub})

	w := do(r, http.MethodPost, "/api/v1/visits/scan", VisitScanRequest{HouseholdID: "h1", CheckinIDs: []string{"c1"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"visit_id":"v-1"`)
	require.Contains(t, w.Body.String(), `"subtotal_cents":1700`)

	w = do(r, http.MethodPost, "/api/v1/visits/close", VisitCloseRequest{VisitID: "v-1", PaymentMethod: "cash"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Visit closed", w.Body.String())
	require.Equal(t, []string{"v-1/cash"}, stub.closed)

	w = do(r, http.MethodPost, "/api/v1/visits/v-1/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"url":"https://square.link/u/v"}`, w.Body.String())
	require.Equal(t, "v-1", stub.visitID)
}

func TestVisitScanRejectsEmptyCart(t *testing.T) {
	stub := &stubVisits{err: apperr.Input("checkin_ids required")}
	r := gin.New()
	r.POST("/scan", ApiVisitScan(stub))
	w := do(r, http.MethodPost, "/scan", VisitScanRequest{HouseholdID: "h1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid input: checkin_ids required", w.Body.String())

	stub.err = apperr.NotFound("household")
	w = do(r, http.MethodPost, "/scan", VisitScanRequest{HouseholdID: "h1", CheckinIDs: []string{"c1"}})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestVisitErrorsAreText(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperr.Input("visit_id required"), http.StatusBadRequest},
		{apperr.NotFound("visit"), http.StatusNotFound},
		{apperr.Dependency("close visit", errors.New("db")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		stub := &stubVisits{err: tc.err}
		r := gin.New()
		r.POST("/close", ApiVisitClose(stub))
		w := do(r, http.MethodPost, "/close", VisitCloseRequest{VisitID: "v-1", PaymentMethod: "cash"})
		require.Equal(t, tc.code, w.Code)
		require.Equal(t, tc.err.Error(), w.Body.String())
	}
}

type stubReconciler struct {
	outcome nh.Outcome
	err     error
	body    string
	traceID string
}

func (s *stubReconciler) HandleNotification(ctx context.Context, body []byte, _ http.Header, traceID string) (nh.Outcome, error) {
	s.body = string(body)
	s.traceID = traceID
	return s.outcome, s.err
}

func TestApiSquareWebhook(t *testing.T) {
	cases := []struct {
		name     string
		stub     *stubReconciler
		wantCode int
		wantBody string
	}{
		{"handled", &stubReconciler{outcome: nh.OutcomeHandled}, http.StatusOK, "ok"},
		{"ignored", &stubReconciler{outcome: nh.OutcomeIgnored}, http.StatusOK, "ok"},
		{"duplicate", &stubReconciler{outcome: nh.OutcomeDuplicate, err: apperr.ErrDuplicate}, http.StatusOK, "duplicate"},
		{"bad signature", &stubReconciler{err: apperr.ErrAuth}, http.StatusUnauthorized, "unauthorized"},
		{"malformed", &stubReconciler{err: apperr.Input("malformed webhook event")}, http.StatusBadRequest, "invalid input: malformed webhook event"},
		{"store failure", &stubReconciler{err: apperr.Dependency("insert webhook log", errors.New("down"))}, http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Request = c.Request.WithContext(logctx.WithTraceID(c.Request.Context(), "trace-9"))
			})
			RegisterWebhookRoutes(r.Group("/api/v1/webhooks"), tc.stub)
			w := do(r, http.MethodPost, "/api/v1/webhooks/square", `{"type":"subscription.updated"}`)
			require.Equal(t, tc.wantCode, w.Code)
			if tc.wantBody != "" {
				require.Equal(t, tc.wantBody, w.Body.String())
			}
			require.Equal(t, `{"type":"subscription.updated"}`, tc.stub.body)
			require.Equal(t, "trace-9", tc.stub.traceID)
		})
	}
}

func TestApiSquareWebhookRejectsOversizedBody(t *testing.T) {
	stub := &stubReconciler{outcome: nh.OutcomeHandled}
	r := gin.New()
	RegisterWebhookRoutes(r.Group("/api/v1/webhooks"), stub)

	w := do(r, http.MethodPost, "/api/v1/webhooks/square", strings.Repeat("a", maxWebhookBody+1))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Empty(t, stub.body, "an oversized body never reaches signature checks")

	w = do(r, http.MethodPost, "/api/v1/webhooks/square", strings.Repeat("a", maxWebhookBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.body, maxWebhookBody)
}

type stubSubscribe struct {
	url   string
	err   error
	user  string
	email string
}

func (s *stubSubscribe) Subscribe(_ context.Context, userID, email string) (string, error) {
	s.user, s.email = userID, email
	return s.url, s.err
}

type stubDirectory struct {
	households map[string]*models.Household
	people     []models.Person
	removed    []string
	err        error
}

func (s *stubDirectory) Ensure(_ context.Context, owner string) (*models.Household, error) {
	if h, ok := s.households[owner]; ok {
		return h, nil
	}
	h := &models.Household{ID: "h-new", OwnerUserID: owner}
	s.households[owner] = h
	return h, nil
}

func (s *stubDirectory) ForOwner(_ context.Context, owner string) (*models.Household, error) {
	if h, ok := s.households[owner]; ok {
		return h, nil
	}
	return nil, apperr.NotFound("household")
}

func (s *stubDirectory) People(context.Context, string) ([]models.Person, error) {
	return s.people, s.err
}

func (s *stubDirectory) AddPerson(_ context.Context, householdID string, in household.PersonInput) (*models.Person, error) {
	if !in.Role.Valid() {
		return nil, apperr.Input("role must be adult or child")
	}
	return &models.Person{ID: "p-new", HouseholdID: householdID, Role: in.Role, FirstName: in.FirstName}, nil
}

func (s *stubDirectory) RemovePerson(_ context.Context, householdID, personID string) error {
	if personID != "p-1" {
		return apperr.NotFound("person")
	}
	s.removed = append(s.removed, householdID+"/"+personID)
	return nil
}

func (s *stubDirectory) Badge(_ context.Context, householdID, personID string, size int) ([]byte, error) {
	if personID != "p-1" {
		return nil, apperr.NotFound("person")
	}
	return []byte("\x89PNG"), nil
}

type stubMemberships struct {
	m      *models.Membership
	paused []string
}

func (s *stubMemberships) Get(context.Context, types.MembershipOwner) (*models.Membership, error) {
	if s.m == nil {
		return nil, apperr.NotFound("membership")
	}
	return s.m, nil
}

func (s *stubMemberships) Pause(_ context.Context, householdID string) (*models.Membership, error) {
	s.paused = append(s.paused, householdID)
	return &models.Membership{Status: types.MembershipStatusPaused}, nil
}

func portalEngine(user string, p PortalRoutes) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/v1")
	g.Use(func(c *gin.Context) {
		if user != "" {
			c.Set(logctx.GinUserIDKey, user)
			c.Set(logctx.GinEmailKey, user+"@example.com")
		}
	})
	RegisterPortalRoutes(g, p)
	return r
}

func TestApiSubscribe(t *testing.T) {
	stub := &stubSubscribe{url: "https://square.link/u/m"}
	r := portalEngine("user-1", PortalRoutes{Checkout: stub})
	w := do(r, http.MethodPost, "/api/v1/checkout/subscribe", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"url":"https://square.link/u/m"}`, w.Body.String())
	require.Equal(t, "user-1", stub.user)
	require.Equal(t, "user-1@example.com", stub.email)

	stub.err = apperr.Input("no household")
	w = do(r, http.MethodPost, "/api/v1/checkout/subscribe", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"invalid input: no household"}`, w.Body.String())
}

func TestMembershipRoutes(t *testing.T) {
	dir := &stubDirectory{households: map[string]*models.Household{"user-1": {ID: "h1"}}}
	ms := &stubMemberships{}
	r := portalEngine("user-1", PortalRoutes{Households: dir, Memberships: ms})

	w := do(r, http.MethodGet, "/api/v1/membership", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got response.APIResponse[MembershipStatusResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, membershipNone, got.Data.Status)
	require.False(t, got.Data.Active)

	ms.m = &models.Membership{Status: types.MembershipStatusActive}
	w = do(r, http.MethodGet, "/api/v1/membership", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, types.MembershipStatusActive, got.Data.Status)
	require.True(t, got.Data.Active)

	w = do(r, http.MethodPost, "/api/v1/membership/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"h1"}, ms.paused)

	other := portalEngine("user-2", PortalRoutes{Households: dir, Memberships: ms})
	w = do(other, http.MethodPost, "/api/v1/membership/pause", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPeopleRoutes(t *testing.T) {
	dir := &stubDirectory{households: map[string]*models.Household{"user-1": {ID: "h1"}}, people: []models.Person{{ID: "p-1"}}}
	r := portalEngine("user-1", PortalRoutes{Households: dir})

	w := do(r, http.MethodGet, "/api/v1/household/people", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"id":"p-1"`)

	w = do(r, http.MethodPost, "/api/v1/household/people", household.PersonInput{Role: types.RoleChild, FirstName: "Mia"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"household_id":"h1"`)

	w = do(r, http.MethodPost, "/api/v1/household/people", household.PersonInput{Role: "pet", FirstName: "Rex"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var env response.APIResponse[string]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)

	w = do(r, http.MethodDelete, "/api/v1/household/people/p-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"h1/p-1"}, dir.removed)

	w = do(r, http.MethodDelete, "/api/v1/household/people/p-2", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/household/people/p-1/qr?size=128", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = do(r, http.MethodGet, "/api/v1/household/people/p-1/qr?size=big", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

type stubLister struct {
	filters types.Filters
	limit   int
	offset  int
}

func (s *stubLister) List(_ context.Context, filters types.Filters, limit, offset int) ([]models.Checkin, int64, error) {
	s.filters, s.limit, s.offset = filters, limit, offset
	return []models.Checkin{{ID: "c-1"}}, 41, nil
}

type stubStats struct{ called bool }

func (s *stubStats) GetDailyStatistic(context.Context, *statistics.StatisticRequest) (*statistics.StatisticResponse, error) {
	s.called = true
	return &statistics.StatisticResponse{DataItems: map[statistics.StatisticType][]statistics.StatisticResponseDataItem{
		statistics.StatisticTypeDailyCheckinCount: {{Date: "2025-06-15", Value: 3}},
	}}, nil
}

type stubPricing struct{ maxMonths int }

func (s *stubPricing) Gaps(_ context.Context, _ time.Time, maxMonths int) ([]pricing.Gap, error) {
	s.maxMonths = maxMonths
	return []pricing.Gap{{Role: types.RoleChild, UnknownAge: true}}, nil
}

func TestAdminRoutes(t *testing.T) {
	lister, stats, prices := &stubLister{}, &stubStats{}, &stubPricing{}
	r := gin.New()
	RegisterAdminRoutes(r.Group("/api/v1/admin"), AdminRoutes{Checkins: lister, Statistics: stats, Pricing: prices})

	w := do(r, http.MethodPost, "/api/v1/admin/checkins", ListCheckinsRequest{
		Filters: []*types.CommonFilter{{Field: "source", Operator: types.CommonFilterOperatorEq, Values: []any{"qr"}}},
		From:    20, Size: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total":41`)
	require.Equal(t, 10, lister.limit)
	require.Equal(t, 20, lister.offset)
	require.Len(t, lister.filters, 1)

	w = do(r, http.MethodPost, "/api/v1/admin/statistics", statistics.StatisticRequest{
		DataItems: []*statistics.StatisticDataItem{{ID: statistics.StatisticTypeDailyCheckinCount}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"daily_checkin_count"`)

	stats.called = false
	w = do(r, http.MethodPost, "/api/v1/admin/statistics", statistics.StatisticRequest{
		DataItems: []*statistics.StatisticDataItem{{ID: "daily_gmv"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, stats.called)

	w = do(r, http.MethodGet, "/api/v1/admin/pricing/gaps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, pricing.DefaultGapHorizonMonths, prices.maxMonths)
	require.Contains(t, w.Body.String(), `"unknown_age":true`)

	w = do(r, http.MethodGet, "/api/v1/admin/pricing/gaps?max_months=-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	r := gin.New()
	RegisterHealthRoutes(r)
	w := do(r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}
