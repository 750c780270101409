package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookLogStatus string

const (
	WebhookLogStatusReceived     WebhookLogStatus = "received"
	WebhookLogStatusHandled      WebhookLogStatus = "handled"
	WebhookLogStatusIgnored      WebhookLogStatus = "ignored"
	WebhookLogStatusHandleFailed WebhookLogStatus = "handle_failed"
)

// WebhookLog is written before an event is processed. The (provider, event_id)
// unique index is what makes redelivery a no-op.
type WebhookLog struct {
	ID        string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider  string           `gorm:"column:provider;type:varchar(32);not null;uniqueIndex:idx_webhook_log_provider_event,priority:1,where:event_id IS NOT NULL" json:"provider"`
	EventID   *string          `gorm:"column:event_id;type:varchar(128);uniqueIndex:idx_webhook_log_provider_event,priority:2" json:"event_id"`
	EventType string           `gorm:"column:event_type;type:varchar(128)" json:"event_type"`
	TraceID   string           `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	Payload   datatypes.JSON   `gorm:"column:payload;type:jsonb" json:"payload"`
	Result    *datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result"`
	Status    WebhookLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
