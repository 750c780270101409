package repository

import (
	"context"

	"github.com/littlewanderers/frontdesk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WebhookLogRepository interface {
	// Insert records a received event. A replayed (provider, event_id) pair
	// fails with gorm.ErrDuplicatedKey.
	Insert(ctx context.Context, log *models.WebhookLog) error
	Finish(ctx context.Context, id string, status models.WebhookLogStatus, result datatypes.JSON) error
	// ClaimFailed moves the (provider, event_id) row from handle_failed back
	// to received and returns its id. It returns "" when there is no failed
	// row to claim. Only one of several concurrent redeliveries wins.
	ClaimFailed(ctx context.Context, provider, eventID, traceID string) (string, error)
}

type webhookLogRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepositoryImpl{db: db}
}

func (r *webhookLogRepositoryImpl) Insert(ctx context.Context, log *models.WebhookLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *webhookLogRepositoryImpl) Finish(ctx context.Context, id string, status models.WebhookLogStatus, result datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "result": result}).Error
}

func (r *webhookLogRepositoryImpl) ClaimFailed(ctx context.Context, provider, eventID, traceID string) (string, error) {
	var id string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WebhookLog{}).
			Where("provider = ? AND event_id = ? AND status = ?", provider, eventID, models.WebhookLogStatusHandleFailed).
			Updates(map[string]any{"status": models.WebhookLogStatusReceived, "trace_id": traceID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var row models.WebhookLog
		if err := tx.Select("id").Where("provider = ? AND event_id = ?", provider, eventID).Take(&row).Error; err != nil {
			return err
		}
		id = row.ID
		return nil
	})
	return id, err
}
