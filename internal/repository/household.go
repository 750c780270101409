package repository

import (
	"context"
	"strings"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/tool"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HouseholdRepository interface {
	GetByID(ctx context.Context, id string) (*models.Household, error)
	// GetByOwner returns the newest household owned by the account.
	GetByOwner(ctx context.Context, ownerUserID string) (*models.Household, error)
	// Ensure returns the account's household, creating it on first use.
	Ensure(ctx context.Context, ownerUserID string) (*models.Household, error)
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	FindSquareCustomer(ctx context.Context, squareCustomerID string) (*models.SquareCustomer, error)
	LinkSquareCustomer(ctx context.Context, squareCustomerID, householdID string) error
}

type householdRepositoryImpl struct {
	db *gorm.DB
}

func NewHouseholdRepository(db *gorm.DB) HouseholdRepository {
	return &householdRepositoryImpl{db: db}
}

func (r *householdRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Household, error) {
	var h models.Household
	if err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *householdRepositoryImpl) GetByOwner(ctx context.Context, ownerUserID string) (*models.Household, error) {
	var h models.Household
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *householdRepositoryImpl) Ensure(ctx context.Context, ownerUserID string) (*models.Household, error) {
	h := models.Household{ID: tool.GenerateUUIDV7(), OwnerUserID: ownerUserID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "owner_user_id"}}, DoNothing: true}).
		Create(&h).Error
	if err != nil {
		return nil, err
	}
	return r.GetByOwner(ctx, ownerUserID)
}

func (r *householdRepositoryImpl) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *householdRepositoryImpl) FindSquareCustomer(ctx context.Context, squareCustomerID string) (*models.SquareCustomer, error) {
	var sc models.SquareCustomer
	if err := r.db.WithContext(ctx).First(&sc, "square_customer_id = ?", squareCustomerID).Error; err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *householdRepositoryImpl) LinkSquareCustomer(ctx context.Context, squareCustomerID, householdID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "square_customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"household_id"}),
		}).
		Create(&models.SquareCustomer{SquareCustomerID: squareCustomerID, HouseholdID: householdID}).Error
}
