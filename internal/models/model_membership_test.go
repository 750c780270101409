package models

import (
	"testing"
	"time"

	"github.com/littlewanderers/frontdesk/pkg/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestMembershipOwnerRoundTrip(t *testing.T) {
	var m Membership
	m.SetOwner(types.OwnedByHousehold("h1"))
	require.Equal(t, types.OwnedByHousehold("h1"), m.Owner())
	require.Nil(t, m.PersonID)

	m.SetOwner(types.OwnedByPerson("p1"))
	require.Equal(t, types.OwnedByPerson("p1"), m.Owner())
	require.Nil(t, m.HouseholdID)
}

func TestMembershipActive(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		m    *Membership
		want bool
	}{
		{"nil", nil, false},
		{"active no renewal", &Membership{Status: types.MembershipStatusActive}, true},
		{"active future renewal", &Membership{Status: types.MembershipStatusActive, RenewsAt: lo.ToPtr(now.Add(time.Hour))}, true},
		{"active expired", &Membership{Status: types.MembershipStatusActive, RenewsAt: lo.ToPtr(now.Add(-time.Hour))}, false},
		{"renews exactly now", &Membership{Status: types.MembershipStatusActive, RenewsAt: lo.ToPtr(now)}, false},
		{"paused", &Membership{Status: types.MembershipStatusPaused}, false},
		{"canceled", &Membership{Status: types.MembershipStatusCanceled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.m.Active(now))
		})
	}
}
