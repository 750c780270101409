package repository

import (
	"context"

	"github.com/littlewanderers/frontdesk/internal/models"
	"gorm.io/gorm"
)

type PersonRepository interface {
	GetByID(ctx context.Context, id string) (*models.Person, error)
	ListByHousehold(ctx context.Context, householdID string) ([]models.Person, error)
	Create(ctx context.Context, p *models.Person) error
	// Delete removes a person only if it belongs to householdID. It reports
	// whether a row was removed.
	Delete(ctx context.Context, householdID, id string) (bool, error)
}

type personRepositoryImpl struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepositoryImpl{db: db}
}

func (r *personRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personRepositoryImpl) ListByHousehold(ctx context.Context, householdID string) ([]models.Person, error) {
	var people []models.Person
	err := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("created_at").
		Find(&people).Error
	return people, err
}

func (r *personRepositoryImpl) Create(ctx context.Context, p *models.Person) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *personRepositoryImpl) Delete(ctx context.Context, householdID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND household_id = ?", id, householdID).
		Delete(&models.Person{})
	return res.RowsAffected > 0, res.Error
}
