package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/printshop/backend/internal/application/trade"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// OrderHandler exposes the public checkout and the staff-side order
// lifecycle
type OrderHandler struct {
	BaseHandler
	orders      *tradeapp.OrderService
	fulfillment *tradeapp.FulfillmentService
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(orders *tradeapp.OrderService, fulfillment *tradeapp.FulfillmentService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		orders:      orders,
		fulfillment: fulfillment,
	}
}

type checkoutItem struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type checkoutRequest struct {
	Email      string         `json:"email" binding:"required,email"`
	Name       string         `json:"name" binding:"omitempty,max=200"`
	ClientType string         `json:"client_type" binding:"omitempty,oneof=individual company"`
	Items      []checkoutItem `json:"items" binding:"required,min=1,dive"`
}

// Checkout starts a guest purchase and returns the payment redirect
// POST /api/v1/public/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	items := make([]tradeapp.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "product_id must be a valid UUID")
			return
		}
		items = append(items, tradeapp.CheckoutItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	resp, err := h.orders.Checkout(c.Request.Context(), tradeapp.CheckoutRequest{
		Email:      req.Email,
		Name:       req.Name,
		ClientType: req.ClientType,
		Items:      items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get retrieves an order
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List retrieves orders
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if clientID := c.Query("client_id"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			h.BadRequest(c, "client_id must be a valid UUID")
			return
		}
		filter.Filters["client_id"] = id
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, dto.NewMeta(filter.Page, filter.Limit(), total))
}

// Cancel cancels a pending order
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.orders.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Fulfill marks a confirmed order fulfilled
// POST /api/v1/orders/:id/fulfill
func (h *OrderHandler) Fulfill(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.orders.Fulfill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmReturn is the client-side redirect fallback after payment.
// It carries no gateway event id, so only the database guard applies.
// POST /api/v1/public/orders/:id/confirm-return
func (h *OrderHandler) ConfirmReturn(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	result, err := h.fulfillment.Confirm(c.Request.Context(), id.String(), "")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
