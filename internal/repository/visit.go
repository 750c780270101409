package repository

import (
	"context"
	"time"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/types"
	"gorm.io/gorm"
)

type VisitRepository interface {
	GetByID(ctx context.Context, id string) (*models.Visit, error)
	GetOpenByHousehold(ctx context.Context, householdID string) (*models.Visit, error)
	// CreateOpen inserts a new open visit. A concurrent creator for the same
	// household makes it fail with gorm.ErrDuplicatedKey.
	CreateOpen(ctx context.Context, v *models.Visit) error
	// Attach links check-ins to the visit. Ids whose person is not in the
	// household, or that already belong to another visit, are skipped.
	Attach(ctx context.Context, visitID, householdID string, checkinIDs []string) error
	// Recompute derives the visit totals from its attached check-ins in one
	// statement and returns the updated visit with its items.
	Recompute(ctx context.Context, visitID string) (*models.Visit, []models.Checkin, error)
	// MarkPaid closes an open visit. It reports false when the visit was not open.
	MarkPaid(ctx context.Context, visitID, method string, ref *string, closedAt time.Time) (bool, error)
}

type visitRepositoryImpl struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepositoryImpl{db: db}
}

func (r *visitRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Visit, error) {
	var v models.Visit
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *visitRepositoryImpl) GetOpenByHousehold(ctx context.Context, householdID string) (*models.Visit, error) {
	var v models.Visit
	err := r.db.WithContext(ctx).
		Where("household_id = ? AND payment_status = ?", householdID, types.PaymentStatusOpen).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *visitRepositoryImpl) CreateOpen(ctx context.Context, v *models.Visit) error {
	v.PaymentStatus = types.PaymentStatusOpen
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *visitRepositoryImpl) Attach(ctx context.Context, visitID, householdID string, checkinIDs []string) error {
	if len(checkinIDs) == 0 {
		return nil
	}
	members := r.db.Model(&models.Person{}).Select("id").Where("household_id = ?", householdID)
	return r.db.WithContext(ctx).Model(&models.Checkin{}).
		Where("id IN ?", checkinIDs).
		Where("person_id IN (?)", members).
		Where("(visit_id IS NULL OR visit_id = ?)", visitID).
		Update("visit_id", visitID).Error
}

func (r *visitRepositoryImpl) Recompute(ctx context.Context, visitID string) (*models.Visit, []models.Checkin, error) {
	db := r.db.WithContext(ctx)
	attached := func(sel string) *gorm.DB {
		return r.db.Model(&models.Checkin{}).Select(sel).Where("visit_id = ?", visitID)
	}
	err := db.Model(&models.Visit{}).Where("id = ?", visitID).Updates(map[string]any{
		"subtotal_cents":   attached("COALESCE(SUM(price_cents), 0)"),
		"membership_count": attached("COALESCE(SUM(CASE WHEN membership_applied THEN 1 ELSE 0 END), 0)"),
		"item_count":       attached("COUNT(*)"),
		"updated_at":       time.Now().UTC(),
	}).Error
	if err != nil {
		return nil, nil, err
	}
	v, err := r.GetByID(ctx, visitID)
	if err != nil {
		return nil, nil, err
	}
	var items []models.Checkin
	if err := db.Where("visit_id = ?", visitID).Order("created_at").Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return v, items, nil
}

func (r *visitRepositoryImpl) MarkPaid(ctx context.Context, visitID, method string, ref *string, closedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Visit{}).
		Where("id = ? AND payment_status = ?", visitID, types.PaymentStatusOpen).
		Updates(map[string]any{
			"payment_status": types.PaymentStatusPaid,
			"payment_method": method,
			"payment_ref":    ref,
			"closed_at":      closedAt.UTC(),
		})
	return res.RowsAffected > 0, res.Error
}
