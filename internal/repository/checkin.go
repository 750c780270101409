package repository

import (
	"context"
	"fmt"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckinFilterFields are the columns admin listings may filter on.
var CheckinFilterFields = map[string]bool{
	"person_id":          true,
	"visit_id":           true,
	"source":             true,
	"membership_applied": true,
	"price_cents":        true,
	"pricing_rule_id":    true,
	"created_at":         true,
}

type CheckinRepository interface {
	Create(ctx context.Context, c *models.Checkin) error
	List(ctx context.Context, filters types.Filters, limit, offset int) ([]models.Checkin, int64, error)
}

type checkinRepositoryImpl struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) CheckinRepository {
	return &checkinRepositoryImpl{db: db}
}

func (r *checkinRepositoryImpl) Create(ctx context.Context, c *models.Checkin) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *checkinRepositoryImpl) List(ctx context.Context, filters types.Filters, limit, offset int) ([]models.Checkin, int64, error) {
	for _, f := range filters {
		if err := f.Validate(CheckinFilterFields); err != nil {
			return nil, 0, err
		}
	}
	q := r.db.WithContext(ctx).Model(&models.Checkin{})
	if len(filters) > 0 {
		q = q.Where(clause.Where{Exprs: []clause.Expression{filters}})
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count checkins: %w", err)
	}
	var items []models.Checkin
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}
