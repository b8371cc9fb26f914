package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/printshop/backend/internal/domain/trade"
	"go.uber.org/zap"
)

const preferencePath = "/v1/preferences"

// Config holds the gateway connection settings
type Config struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	Timeout       time.Duration
}

// HTTPGateway implements trade.PaymentGateway against the provider's
// REST API. Webhook deliveries are authenticated with an HMAC-SHA256
// signature over the raw body.
type HTTPGateway struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPGateway creates a new HTTP payment gateway adapter
func NewHTTPGateway(cfg Config, logger *zap.Logger) (*HTTPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("payment: base URL is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("payment: webhook secret is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPGateway{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type preferenceRequestBody struct {
	ExternalReference string `json:"external_reference"`
	Amount            string `json:"amount"`
	Description       string `json:"description,omitempty"`
	PayerEmail        string `json:"payer_email,omitempty"`
}

type preferenceResponseBody struct {
	PreferenceID string `json:"preference_id"`
	RedirectURL  string `json:"redirect_url"`
}

// CreatePreference registers a checkout session with the provider
func (g *HTTPGateway) CreatePreference(ctx context.Context, req trade.PreferenceRequest) (*trade.Preference, error) {
	body, err := json.Marshal(preferenceRequestBody{
		ExternalReference: req.ExternalReference,
		Amount:            req.Amount.StringFixed(2),
		Description:       req.Description,
		PayerEmail:        req.PayerEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("payment: failed to marshal preference request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+preferencePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrGatewayInvalidResponse, err)
	}

	if resp.StatusCode >= 500 {
		g.logger.Warn("payment gateway returned server error",
			zap.Int("status", resp.StatusCode),
			zap.String("external_reference", req.ExternalReference),
		)
		return nil, fmt.Errorf("%w: status %d", trade.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d", trade.ErrGatewayRequestFailed, resp.StatusCode)
	}

	var pref preferenceResponseBody
	if err := json.Unmarshal(respBody, &pref); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrGatewayInvalidResponse, err)
	}
	if pref.PreferenceID == "" {
		return nil, fmt.Errorf("%w: missing preference id", trade.ErrGatewayInvalidResponse)
	}

	return &trade.Preference{
		PreferenceID: pref.PreferenceID,
		RedirectURL:  pref.RedirectURL,
	}, nil
}

type webhookBody struct {
	EventID           string `json:"event_id"`
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
}

// ParseWebhook verifies the HMAC signature over the raw payload and
// decodes the delivery. Verification happens before any decoding so an
// unsigned body is never interpreted.
func (g *HTTPGateway) ParseWebhook(payload []byte, signature string) (*trade.WebhookEvent, error) {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return nil, trade.ErrGatewayInvalidCallback
	}

	mac := hmac.New(sha256.New, []byte(g.config.WebhookSecret))
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return nil, trade.ErrGatewayInvalidCallback
	}

	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrGatewayInvalidResponse, err)
	}
	if body.EventID == "" || body.ExternalReference == "" {
		return nil, fmt.Errorf("%w: missing event fields", trade.ErrGatewayInvalidResponse)
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

func mapOutcome(status string) (trade.PaymentOutcome, error) {
	switch status {
	case "approved", "paid":
		return trade.PaymentOutcomeApproved, nil
	case "rejected", "cancelled":
		return trade.PaymentOutcomeRejected, nil
	case "pending", "in_process":
		return trade.PaymentOutcomePending, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", trade.ErrGatewayInvalidResponse, status)
	}
}

// SignPayload computes the hex HMAC-SHA256 signature for a payload with
// the given secret. Shared with tests and webhook simulators.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ trade.PaymentGateway = (*HTTPGateway)(nil)
