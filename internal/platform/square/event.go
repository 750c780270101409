package square

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

const (
	SubscriptionStatusActive      = "ACTIVE"
	SubscriptionStatusCanceled    = "CANCELED"
	SubscriptionStatusDeactivated = "DEACTIVATED"
	SubscriptionStatusPaused      = "PAUSED"

	PaymentStatusCompleted = "COMPLETED"
)

// Event is the normalized form of a Square webhook envelope. Everything past
// the HTTP boundary works with this instead of raw JSON.
type Event struct {
	// ID is empty when the envelope carries no event id.
	ID           string
	Type         string
	CustomerID   string
	Email        string
	ReferenceID  string
	Subscription *Subscription
	Payment      *Payment
	Raw          json.RawMessage
}

type Subscription struct {
	ID         string
	Status     string
	CustomerID string
	// ChargedThroughDate is the end of the paid period, nil if absent.
	ChargedThroughDate *time.Time
}

type Payment struct {
	ID          string
	Status      string
	ReferenceID string
	OrderID     string
	AmountCents int64
}

func (e *Event) IsSubscriptionEvent() bool {
	return strings.HasPrefix(e.Type, "subscription.")
}

func (e *Event) IsPaymentEvent() bool {
	return strings.HasPrefix(e.Type, "payment.")
}

type money struct {
	Amount int64 `json:"amount"`
}

type envelope struct {
	EventID   string `json:"event_id"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	EventType string `json:"event_type"`
	Data      *struct {
		ID     string `json:"id"`
		Object *struct {
			Customer *struct {
				ID           string `json:"id"`
				EmailAddress string `json:"email_address"`
			} `json:"customer"`
			Subscription *struct {
				ID                 string `json:"id"`
				Status             string `json:"status"`
				CustomerID         string `json:"customer_id"`
				ChargedThroughDate string `json:"charged_through_date"`
			} `json:"subscription"`
			Payment *struct {
				ID                string `json:"id"`
				Status            string `json:"status"`
				ReferenceID       string `json:"reference_id"`
				OrderID           string `json:"order_id"`
				CustomerID        string `json:"customer_id"`
				BuyerEmailAddress string `json:"buyer_email_address"`
				AmountMoney       *money `json:"amount_money"`
			} `json:"payment"`
			BuyerEmailAddress string `json:"buyer_email_address"`
			ReferenceID       string `json:"reference_id"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a webhook body. Bodies that are not JSON objects or carry
// no event type are rejected with ErrMalformedEvent.
func ParseEvent(body []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	e := &Event{
		ID:   firstNonEmpty(env.EventID, env.ID),
		Type: firstNonEmpty(env.Type, env.EventType),
		Raw:  json.RawMessage(body),
	}
	if e.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}
	if env.Data == nil {
		return e, nil
	}
	if e.ID == "" {
		e.ID = env.Data.ID
	}
	obj := env.Data.Object
	if obj == nil {
		return e, nil
	}

	e.ReferenceID = obj.ReferenceID
	e.Email = obj.BuyerEmailAddress
	if obj.Customer != nil {
		e.CustomerID = obj.Customer.ID
		e.Email = firstNonEmpty(obj.Customer.EmailAddress, e.Email)
	}
	if s := obj.Subscription; s != nil {
		sub := &Subscription{ID: s.ID, Status: s.Status, CustomerID: s.CustomerID}
		if s.ChargedThroughDate != "" {
			t, err := time.Parse(time.DateOnly, s.ChargedThroughDate)
			if err != nil {
				return nil, fmt.Errorf("%w: charged_through_date: %v", ErrMalformedEvent, err)
			}
			sub.ChargedThroughDate = &t
		}
		e.Subscription = sub
		e.CustomerID = firstNonEmpty(e.CustomerID, s.CustomerID)
	}
	if p := obj.Payment; p != nil {
		pay := &Payment{ID: p.ID, Status: p.Status, ReferenceID: p.ReferenceID, OrderID: p.OrderID}
		if p.AmountMoney != nil {
			pay.AmountCents = p.AmountMoney.Amount
		}
		e.Payment = pay
		e.CustomerID = firstNonEmpty(e.CustomerID, p.CustomerID)
		e.Email = firstNonEmpty(e.Email, p.BuyerEmailAddress)
		e.ReferenceID = firstNonEmpty(p.ReferenceID, e.ReferenceID)
	}
	return e, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
