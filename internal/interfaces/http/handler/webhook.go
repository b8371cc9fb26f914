package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/printshop/backend/internal/application/trade"
	"github.com/printshop/backend/internal/domain/trade"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SignatureHeader carries the HMAC signature of a webhook delivery
const SignatureHeader = "X-Signature"

// WebhookHandler receives payment gateway callbacks. Deliveries arrive
// at least once and out of order; the fulfillment service absorbs
// duplicates, so this handler only verifies, decodes, and dispatches.
type WebhookHandler struct {
	BaseHandler
	gateway     trade.PaymentGateway
	fulfillment *tradeapp.FulfillmentService
}

// NewWebhookHandler creates a WebhookHandler
func NewWebhookHandler(gateway trade.PaymentGateway, fulfillment *tradeapp.FulfillmentService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: NewBaseHandler(logger),
		gateway:     gateway,
		fulfillment: fulfillment,
	}
}

// HandlePayment processes one gateway delivery. The signature is
// checked over the raw body before anything is decoded. Rejected and
// pending outcomes are acknowledged without touching the order; only
// approved payments confirm.
// POST /api/v1/webhooks/payment
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "unable to read request body")
		return
	}

	event, err := h.gateway.ParseWebhook(payload, c.GetHeader(SignatureHeader))
	if err != nil {
		if errors.Is(err, trade.ErrGatewayInvalidCallback) {
			h.logger.Warn("Webhook signature verification failed",
				zap.String("remote_addr", c.ClientIP()))
			c.JSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "invalid webhook signature"))
			return
		}
		h.BadRequest(c, "malformed webhook payload")
		return
	}

	if event.Outcome != trade.PaymentOutcomeApproved {
		h.logger.Info("Webhook acknowledged without confirmation",
			zap.String("event_id", event.EventID),
			zap.String("external_reference", event.ExternalReference),
			zap.String("outcome", string(event.Outcome)))
		h.Success(c, gin.H{"acknowledged": true, "outcome": event.Outcome})
		return
	}

	result, err := h.fulfillment.Confirm(c.Request.Context(), event.ExternalReference, event.EventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
