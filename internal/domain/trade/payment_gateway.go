package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment gateway errors
var (
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
	ErrGatewayInvalidCallback = errors.New("payment: invalid callback signature")
)

// PaymentOutcome is the result reported by the gateway for a payment
type PaymentOutcome string

const (
	PaymentOutcomeApproved PaymentOutcome = "approved"
	PaymentOutcomeRejected PaymentOutcome = "rejected"
	PaymentOutcomePending  PaymentOutcome = "pending"
)

// PreferenceRequest asks the gateway to prepare a checkout session.
// ExternalReference is the order id; the gateway echoes it back in the
// webhook so deliveries can be correlated and retried safely.
type PreferenceRequest struct {
	ExternalReference string
	Amount            decimal.Decimal
	Description       string
	PayerEmail        string
}

// Preference is the gateway's checkout session for an order
type Preference struct {
	PreferenceID string
	RedirectURL  string
}

// WebhookEvent is one parsed, signature-verified gateway callback.
// EventID identifies the delivery (not the payment) and keys the
// idempotency fast-path; retried deliveries reuse the same EventID.
type WebhookEvent struct {
	EventID           string
	ExternalReference string
	Outcome           PaymentOutcome
}

// PaymentGateway creates payment preferences and interprets webhook
// callbacks. Implementations live in infrastructure.
type PaymentGateway interface {
	// CreatePreference registers a checkout session for the order and
	// returns the redirect URL for the payer
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)

	// ParseWebhook verifies and decodes a raw webhook delivery.
	// Returns ErrGatewayInvalidCallback when the signature check fails.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// OrderReference builds the external reference sent to the gateway for
// an order. The order id itself serves as the idempotency key.
func OrderReference(orderID uuid.UUID) string {
	return orderID.String()
}
