package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	nh "github.com/littlewanderers/frontdesk/internal/app/service/notification_handler"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
)

// maxWebhookBody bounds what is read from the processor.
const maxWebhookBody = 1 << 20

type WebhookReconciler interface {
	HandleNotification(ctx context.Context, body []byte, header http.Header, traceID string) (nh.Outcome, error)
}

// @Summary      Square webhook
// @Description  Receives Square subscription and payment events. The body is verified against the HMAC signature headers.
// @Tags         Webhook
// @Accept       json
// @Produce      plain
// @Param        x-square-hmacsha256-signature header string false "HMAC-SHA256 signature"
// @Param        payload body object true "Square event envelope"
// @Success      200  {string}  string "ok | duplicate"
// @Failure      400  {string}  string
// @Failure      401  {string}  string
// @Failure      413  {string}  string
// @Failure      500  {string}  string
// @Router       /api/v1/webhooks/square [post]
func ApiSquareWebhook(h WebhookReconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
		if err != nil {
			c.String(http.StatusBadRequest, "unreadable body")
			return
		}
		if len(body) > maxWebhookBody {
			c.String(http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		ctx := c.Request.Context()
		_, err = h.HandleNotification(ctx, body, c.Request.Header, logctx.TraceID(ctx))
		switch {
		case errors.Is(err, apperr.ErrDuplicate):
			c.String(http.StatusOK, "duplicate")
		case err != nil:
			textError(c, err)
		default:
			c.String(http.StatusOK, "ok")
		}
	}
}
