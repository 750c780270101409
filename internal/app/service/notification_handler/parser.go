package notification_handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/littlewanderers/frontdesk/internal/platform/square"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/config"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

// NotificationParser authenticates a provider delivery and turns it into the
// normalized event the reconciler works on.
type NotificationParser interface {
	Provider() types.PaymentProvider
	Parse(body []byte, header http.Header) (*square.Event, error)
}

type squareParser struct {
	signatureKey    string
	notificationURL string
	allowUnsigned   bool
}

func NewSquareParser(cfg *config.Config) NotificationParser {
	return &squareParser{
		signatureKey:    cfg.Square.SignatureKey,
		notificationURL: cfg.Square.NotificationURL,
		allowUnsigned:   cfg.UnsignedWebhooksAllowed(),
	}
}

func (p *squareParser) Provider() types.PaymentProvider {
	return types.PaymentProviderSquare
}

// Parse verifies the HMAC signature and decodes the body. Unsigned deliveries
// pass only when the deployment allows them and no signature header was sent.
func (p *squareParser) Parse(body []byte, header http.Header) (*square.Event, error) {
	if err := square.VerifySignature(p.signatureKey, p.notificationURL, body, header); err != nil {
		unsigned := errors.Is(err, square.ErrMissingSignature) || errors.Is(err, square.ErrNoSignatureKey)
		if !(p.allowUnsigned && unsigned) {
			return nil, fmt.Errorf("%w: %v", apperr.ErrAuth, err)
		}
	}
	e, err := square.ParseEvent(body)
	if err != nil {
		return nil, apperr.Input(err.Error())
	}
	return e, nil
}
