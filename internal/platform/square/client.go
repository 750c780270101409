package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/littlewanderers/frontdesk/pkg/config"
)

// Client is the subset of the Square REST API the front desk uses.
type Client interface {
	CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (*PaymentLink, error)
}

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentLinkRequest describes a hosted checkout. A non-empty
// SubscriptionPlanVariationID turns it into a subscription checkout.
type PaymentLinkRequest struct {
	IdempotencyKey              string
	Name                        string
	Price                       Money
	ReferenceID                 string
	RedirectURL                 string
	BuyerEmail                  string
	SubscriptionPlanVariationID string
	PaymentNote                 string
}

type PaymentLink struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	OrderID string `json:"order_id"`
}

type clientImpl struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	apiVersion  string
	locationID  string
}

func NewClient(cfg *config.Config) Client {
	return &clientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     cfg.Square.BaseURL,
		accessToken: cfg.Square.AccessToken,
		apiVersion:  cfg.Square.APIVersion,
		locationID:  cfg.Square.LocationID,
	}
}

type quickPay struct {
	Name       string `json:"name"`
	PriceMoney Money  `json:"price_money"`
	LocationID string `json:"location_id"`
}

type checkoutOptions struct {
	SubscriptionPlanID    string `json:"subscription_plan_id,omitempty"`
	RedirectURL           string `json:"redirect_url,omitempty"`
	AskForShippingAddress bool   `json:"ask_for_shipping_address"`
}

type prePopulatedData struct {
	BuyerEmail string `json:"buyer_email,omitempty"`
}

type createPaymentLinkBody struct {
	IdempotencyKey   string            `json:"idempotency_key"`
	QuickPay         quickPay          `json:"quick_pay"`
	CheckoutOptions  checkoutOptions   `json:"checkout_options"`
	PrePopulatedData *prePopulatedData `json:"pre_populated_data,omitempty"`
	PaymentNote      string            `json:"payment_note,omitempty"`
	ReferenceID      string            `json:"reference_id,omitempty"`
}

type apiError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type createPaymentLinkResult struct {
	PaymentLink *PaymentLink `json:"payment_link"`
	Errors      []apiError   `json:"errors"`
}

func (c *clientImpl) CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (*PaymentLink, error) {
	body := createPaymentLinkBody{
		IdempotencyKey: req.IdempotencyKey,
		QuickPay: quickPay{
			Name:       req.Name,
			PriceMoney: req.Price,
			LocationID: c.locationID,
		},
		CheckoutOptions: checkoutOptions{
			SubscriptionPlanID: req.SubscriptionPlanVariationID,
			RedirectURL:        req.RedirectURL,
		},
		PaymentNote: req.PaymentNote,
		ReferenceID: req.ReferenceID,
	}
	if req.BuyerEmail != "" {
		body.PrePopulatedData = &prePopulatedData{BuyerEmail: req.BuyerEmail}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/online-checkout/payment-links", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Square-Version", c.apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("square create payment link request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read square response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("square error %d: %s", resp.StatusCode, string(raw))
	}

	var result createPaymentLinkResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode square response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("square error %s: %s", result.Errors[0].Code, result.Errors[0].Detail)
	}
	if result.PaymentLink == nil || result.PaymentLink.URL == "" {
		return nil, fmt.Errorf("square returned no payment link url")
	}
	return result.PaymentLink, nil
}
