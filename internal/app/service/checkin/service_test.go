package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/internal/app/feed"
	"github.com/littlewanderers/frontdesk/internal/app/service/pricing"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/tool"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

type fakePeople struct {
	people map[string]*models.Person
	err    error
}

func (f *fakePeople) GetByID(_ context.Context, id string) (*models.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.people[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePeople) ListByHousehold(context.Context, string) ([]models.Person, error) {
	return nil, nil
}
func (f *fakePeople) Create(context.Context, *models.Person) error { return nil }
func (f *fakePeople) Delete(context.Context, string, string) (bool, error) {
	return false, nil
}

type fakeCheckins struct {
	created []*models.Checkin
	err     error
}

func (f *fakeCheckins) Create(_ context.Context, c *models.Checkin) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCheckins) List(context.Context, types.Filters, int, int) ([]models.Checkin, int64, error) {
	return nil, 0, nil
}

type fakeCoverage struct {
	covered bool
	err     error
}

func (f *fakeCoverage) Covers(context.Context, string, string, time.Time) (bool, error) {
	return f.covered, f.err
}

type fakeQuoter struct {
	rules []models.PricingRule
	err   error
	calls int
}

func (f *fakeQuoter) Quote(_ context.Context, role types.Role, birthdate *time.Time, now time.Time) (*models.PricingRule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return pricing.PickBestRule(f.rules, role, pricing.AgeInMonths(birthdate, now), now)
}

type recordingFeed struct {
	msgs []feed.Message
}

func (r *recordingFeed) Publish(m feed.Message) { r.msgs = append(r.msgs, m) }

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	person   *models.Person
	people   *fakePeople
	checkins *fakeCheckins
	coverage *fakeCoverage
	quoter   *fakeQuoter
	feed     *recordingFeed
}

func newFixture() *fixture {
	person := &models.Person{
		ID:          tool.GenerateUUIDV7(),
		HouseholdID: "h1",
		Role:        types.RoleChild,
		FirstName:   "Leo",
		LastName:    "Park",
		Birthdate:   lo.ToPtr(fixedNow.AddDate(0, -3, 0)),
	}
	f := &fixture{
		person:   person,
		people:   &fakePeople{people: map[string]*models.Person{person.ID: person}},
		checkins: &fakeCheckins{},
		coverage: &fakeCoverage{},
		quoter: &fakeQuoter{rules: []models.PricingRule{
			{ID: "general", MinMonths: lo.ToPtr(0), PriceCents: 1000},
			{ID: "infant", Role: lo.ToPtr(types.RoleChild), MinMonths: lo.ToPtr(0), MaxMonths: lo.ToPtr(6), PriceCents: 500},
		}},
		feed: &recordingFeed{},
	}
	f.svc = New(f.people, f.checkins, f.coverage, f.quoter, f.feed, zap.NewNop().Sugar())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestRecordPricesByBestRule(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Record(context.Background(), f.person.ID, "")
	require.NoError(t, err)
	require.False(t, res.MembershipApplied)
	require.EqualValues(t, 500, res.PriceCents)
	require.Equal(t, "Leo", res.FirstName)
	require.Equal(t, "infant", *res.PricingRuleID)

	require.Len(t, f.checkins.created, 1)
	require.Equal(t, types.CheckinSourceQR, f.checkins.created[0].Source)
	require.Len(t, f.feed.msgs, 1)
	require.Equal(t, "checkin_recorded", f.feed.msgs[0].Type)
}

func TestRecordMembershipShortCircuit(t *testing.T) {
	f := newFixture()
	f.coverage.covered = true
	f.quoter.rules = nil

	res, err := f.svc.Record(context.Background(), f.person.ID, "desk")
	require.NoError(t, err)
	require.True(t, res.MembershipApplied)
	require.Zero(t, res.PriceCents)
	require.Nil(t, res.PricingRuleID)
	require.Zero(t, f.quoter.calls, "pricing must not be consulted for members")
	require.Equal(t, "desk", f.checkins.created[0].Source)
}

func TestRecordErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture) string
		wantErr error
	}{
		{"missing person id", func(f *fixture) string { return " " }, apperr.ErrInput},
		{"unknown person", func(f *fixture) string { return tool.GenerateUUIDV7() }, apperr.ErrNotFound},
		{"malformed person id", func(f *fixture) string { return "abc" }, apperr.ErrNotFound},
		{"person store down", func(f *fixture) string {
			f.people.err = errors.New("db down")
			return f.person.ID
		}, apperr.ErrDependency},
		{"membership check failed", func(f *fixture) string {
			f.coverage.err = apperr.Dependency("membership check", errors.New("timeout"))
			return f.person.ID
		}, apperr.ErrDependency},
		{"rules load failed", func(f *fixture) string {
			f.quoter.err = apperr.Dependency("load pricing rules", errors.New("timeout"))
			return f.person.ID
		}, apperr.ErrDependency},
		{"no applicable rule", func(f *fixture) string {
			f.quoter.rules = []models.PricingRule{{ID: "adult", Role: lo.ToPtr(types.RoleAdult)}}
			return f.person.ID
		}, apperr.ErrNoApplicableRule},
		{"insert failed", func(f *fixture) string {
			f.checkins.err = errors.New("disk full")
			return f.person.ID
		}, apperr.ErrDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			id := tt.setup(f)
			_, err := f.svc.Record(context.Background(), id, "")
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, f.checkins.created)
			require.Empty(t, f.feed.msgs)
		})
	}
}

func TestRecordIsNotIdempotent(t *testing.T) {
	f := newFixture()
	for i := 0; i < 2; i++ {
		_, err := f.svc.Record(context.Background(), f.person.ID, "")
		require.NoError(t, err)
	}
	require.Len(t, f.checkins.created, 2)
	require.NotEqual(t, f.checkins.created[0].ID, f.checkins.created[1].ID)
}

func TestListRejectsUnknownFilterField(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.List(context.Background(), types.Filters{
		{Field: "household_id; --", Operator: types.CommonFilterOperatorEq, Values: []any{"x"}},
	}, 10, 0)
	require.ErrorIs(t, err, apperr.ErrInput)
}
