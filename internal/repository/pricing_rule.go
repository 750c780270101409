package repository

import (
	"context"

	"github.com/littlewanderers/frontdesk/internal/models"
	"gorm.io/gorm"
)

type PricingRuleRepository interface {
	// ListAll returns the whole catalog. Eligibility is decided in memory.
	ListAll(ctx context.Context) ([]models.PricingRule, error)
}

type pricingRuleRepositoryImpl struct {
	db *gorm.DB
}

func NewPricingRuleRepository(db *gorm.DB) PricingRuleRepository {
	return &pricingRuleRepositoryImpl{db: db}
}

func (r *pricingRuleRepositoryImpl) ListAll(ctx context.Context) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := r.db.WithContext(ctx).Order("id").Find(&rules).Error
	return rules, err
}
