package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/tool"
	"github.com/littlewanderers/frontdesk/pkg/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MembershipRepository interface {
	// HasActive reports whether any active, unexpired membership is owned by
	// the household or by the person.
	HasActive(ctx context.Context, householdID, personID string, now time.Time) (bool, error)
	// GetByOwner returns the most recently updated membership of owner.
	GetByOwner(ctx context.Context, owner types.MembershipOwner) (*models.Membership, error)
	// Upsert writes m, matching an existing row by external subscription id
	// first and by owner second, and records a membership log in the same
	// transaction.
	Upsert(ctx context.Context, m *models.Membership, reason types.MembershipChangeReason, extra map[string]any) error
}

type membershipRepositoryImpl struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepositoryImpl{db: db}
}

func (r *membershipRepositoryImpl) HasActive(ctx context.Context, householdID, personID string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("(household_id = ? OR person_id = ?)", householdID, personID).
		Where("status = ?", types.MembershipStatusActive).
		Where("(renews_at IS NULL OR renews_at > ?)", now.UTC()).
		Count(&count).Error
	return count > 0, err
}

func ownerColumn(owner types.MembershipOwner) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	if owner.Kind == types.OwnerKindHousehold {
		return "household_id", nil
	}
	return "person_id", nil
}

func (r *membershipRepositoryImpl) GetByOwner(ctx context.Context, owner types.MembershipOwner) (*models.Membership, error) {
	return getByOwner(ctx, r.db, owner)
}

func getByOwner(ctx context.Context, tx *gorm.DB, owner types.MembershipOwner) (*models.Membership, error) {
	col, err := ownerColumn(owner)
	if err != nil {
		return nil, err
	}
	var m models.Membership
	err = tx.WithContext(ctx).
		Where(col+" = ?", owner.ID).
		Order("updated_at DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepositoryImpl) Upsert(ctx context.Context, m *models.Membership, reason types.MembershipChangeReason, extra map[string]any) error {
	if err := m.Owner().Validate(); err != nil {
		return fmt.Errorf("invalid membership owner: %w", err)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		original, err := r.findExisting(ctx, tx, m)
		if err != nil {
			return err
		}

		var before *models.Membership
		if original != nil {
			m.ID = original.ID
			m.CreatedAt = original.CreatedAt
			if m.ExternalSubscriptionID == nil {
				m.ExternalSubscriptionID = original.ExternalSubscriptionID
			}
			cp := *original
			before = &cp
		} else if m.ID == "" {
			m.ID = tool.GenerateUUIDV7()
		}

		if err := tx.Save(m).Error; err != nil {
			return fmt.Errorf("failed to upsert membership: %w", err)
		}

		log := &models.MembershipLog{
			ID:           tool.GenerateUUIDV7(),
			MembershipID: m.ID,
			Reason:       reason,
			Before:       datatypes.NewJSONType(before),
			After:        datatypes.NewJSONType(m),
			Extra:        datatypes.JSONMap(extra),
		}
		if log.Extra == nil {
			log.Extra = datatypes.JSONMap{}
		}
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("failed to save membership log: %w", err)
		}
		return nil
	})
}

func (r *membershipRepositoryImpl) findExisting(ctx context.Context, tx *gorm.DB, m *models.Membership) (*models.Membership, error) {
	if m.ExternalSubscriptionID != nil && *m.ExternalSubscriptionID != "" {
		var byExternal models.Membership
		err := tx.Where("external_subscription_id = ?", *m.ExternalSubscriptionID).First(&byExternal).Error
		if err == nil {
			return &byExternal, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get membership by subscription: %w", err)
		}
	}
	if m.ID != "" {
		var byID models.Membership
		err := tx.Where("id = ?", m.ID).First(&byID).Error
		if err == nil {
			return &byID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get membership: %w", err)
		}
	}
	byOwner, err := getByOwner(ctx, tx, m.Owner())
	if err == nil {
		return byOwner, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get membership by owner: %w", err)
}
