package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// StubGateway is a no-op gateway for local development when no provider
// is configured. It approves nothing on its own; webhook payloads are
// accepted without signature verification.
type StubGateway struct {
	logger *zap.Logger
}

// NewStubGateway creates a stub payment gateway
func NewStubGateway(logger *zap.Logger) *StubGateway {
	return &StubGateway{logger: logger}
}

// CreatePreference fabricates a local checkout session
func (g *StubGateway) CreatePreference(ctx context.Context, req trade.PreferenceRequest) (*trade.Preference, error) {
	prefID := uuid.New().String()
	g.logger.Info("stub gateway created preference",
		zap.String("preference_id", prefID),
		zap.String("external_reference", req.ExternalReference),
	)
	return &trade.Preference{
		PreferenceID: prefID,
		RedirectURL:  fmt.Sprintf("http://localhost/checkout/%s", prefID),
	}, nil
}

// ParseWebhook decodes the delivery without verifying any signature
func (g *StubGateway) ParseWebhook(payload []byte, signature string) (*trade.WebhookEvent, error) {
	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrGatewayInvalidResponse, err)
	}
	outcome, err := mapOutcome(body.Status)
	if err != nil {
		return nil, err
	}
	return &trade.WebhookEvent{
		EventID:           body.EventID,
		ExternalReference: body.ExternalReference,
		Outcome:           outcome,
	}, nil
}

var _ trade.PaymentGateway = (*StubGateway)(nil)
