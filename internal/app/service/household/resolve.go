package household

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/tool"
)

// ReferencePrefix tags checkout reference ids that carry a household id.
const ReferencePrefix = "hh"

// PaymentParty identifies who a processor event is about.
type PaymentParty struct {
	CustomerID  string
	ReferenceID string
	Email       string
}

// Resolve maps a processor event to a household: the stored customer mapping
// first, then a "hh_<id>" checkout reference, then the payer email. It
// returns "" when nothing matches. A customer id seen for the first time is
// remembered once a household is found.
func (s *Service) Resolve(ctx context.Context, party PaymentParty) (string, error) {
	log := logctx.FromCtx(ctx, s.log)
	if party.CustomerID != "" {
		sc, err := s.households.FindSquareCustomer(ctx, party.CustomerID)
		switch {
		case err == nil:
			return sc.HouseholdID, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return "", apperr.Dependency("find square customer", err)
		}
	}

	householdID, err := s.resolveFallback(ctx, party)
	if err != nil || householdID == "" {
		return "", err
	}
	if party.CustomerID != "" {
		if err := s.households.LinkSquareCustomer(ctx, party.CustomerID, householdID); err != nil {
			return "", apperr.Dependency("link square customer", err)
		}
		log.Infow("square_customer_linked", "square_customer_id", party.CustomerID, "household_id", householdID)
	}
	return householdID, nil
}

func (s *Service) resolveFallback(ctx context.Context, party PaymentParty) (string, error) {
	if id, ok := tool.TrimPrefixedID(party.ReferenceID, ReferencePrefix); ok {
		h, err := s.households.GetByID(ctx, id)
		switch {
		case err == nil:
			return h.ID, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return "", apperr.Dependency("get household", err)
		}
	}
	if party.Email == "" {
		return "", nil
	}
	account, err := s.households.FindAccountByEmail(ctx, party.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Dependency("find account", err)
	}
	h, err := s.households.GetByOwner(ctx, account.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Dependency("get household", err)
	}
	return h.ID, nil
}
