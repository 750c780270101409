package notification_log

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/repository"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/tool"
)

// Entry is one received webhook delivery.
type Entry struct {
	Provider  string
	EventID   string
	EventType string
	TraceID   string
	Payload   []byte
}

type Service struct {
	logs repository.WebhookLogRepository
	log  *zap.SugaredLogger
}

func New(logs repository.WebhookLogRepository, log *zap.SugaredLogger) *Service {
	return &Service{logs: logs, log: log}
}

// Record stores the delivery with status "received" before any state change
// and returns the log id. A delivery whose (provider, event id) was already
// recorded returns apperr.ErrDuplicate, unless the earlier attempt ended in
// handle_failed: then the redelivery claims that row and is processed again.
// Deliveries without an event id are always recorded.
func (s *Service) Record(ctx context.Context, e Entry) (string, error) {
	row := &models.WebhookLog{
		ID:        tool.GenerateUUIDV7(),
		Provider:  e.Provider,
		EventID:   lo.EmptyableToPtr(e.EventID),
		EventType: e.EventType,
		TraceID:   e.TraceID,
		Payload:   payloadJSON(e.Payload),
		Status:    models.WebhookLogStatusReceived,
	}
	err := s.logs.Insert(ctx, row)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		id, claimErr := s.logs.ClaimFailed(ctx, e.Provider, e.EventID, e.TraceID)
		if claimErr != nil {
			return "", apperr.Dependency("claim webhook log", claimErr)
		}
		if id == "" {
			return "", fmt.Errorf("%s event %s: %w", e.Provider, e.EventID, apperr.ErrDuplicate)
		}
		logctx.FromCtx(ctx, s.log).Infow("webhook_log_reclaimed",
			"webhook_log_id", id,
			"event_id", e.EventID,
		)
		return id, nil
	}
	if err != nil {
		return "", apperr.Dependency("insert webhook log", err)
	}
	return row.ID, nil
}

// Finish stores the outcome of processing. Failures are logged, not returned:
// the state change has already happened or failed on its own.
func (s *Service) Finish(ctx context.Context, id string, status models.WebhookLogStatus, result any) {
	if id == "" {
		return
	}
	b, err := json.Marshal(result)
	if err != nil {
		b = []byte(`{}`)
	}
	if err := s.logs.Finish(ctx, id, status, datatypes.JSON(b)); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("webhook_log_finish_failed", "webhook_log_id", id, "error", err)
	}
}

// payloadJSON keeps the body as-is when it is valid JSON and wraps it as a
// string otherwise, so the jsonb column always accepts it.
func payloadJSON(body []byte) datatypes.JSON {
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	b, _ := json.Marshal(string(body))
	return datatypes.JSON(b)
}

var Module = fx.Options(
	fx.Provide(New),
)
