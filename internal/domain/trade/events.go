package trade

import (
	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the trade context
const (
	EventTypeOrderCreated   = "trade.order.created"
	EventTypeOrderConfirmed = "trade.order.confirmed"
	EventTypeOrderCancelled = "trade.order.cancelled"
	EventTypeOrderFulfilled = "trade.order.fulfilled"
)

// OrderCreatedEvent is emitted when a checkout creates a pending order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID       `json:"client_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewOrderCreatedEvent creates an order created event
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, "Order", o.ID),
		ClientID:        o.ClientID,
		TotalAmount:     o.TotalAmount,
		ItemCount:       len(o.Items),
	}
}

// OrderConfirmedEvent is emitted on the single Pending to Confirmed
// transition, regardless of how many webhook deliveries raced for it
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID       `json:"client_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Backordered bool            `json:"backordered"`
}

// NewOrderConfirmedEvent creates an order confirmed event
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, "Order", o.ID),
		ClientID:        o.ClientID,
		TotalAmount:     o.TotalAmount,
		Backordered:     o.Backordered,
	}
}

// OrderCancelledEvent is emitted when a pending order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

// NewOrderCancelledEvent creates an order cancelled event
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, "Order", o.ID),
		ClientID:        o.ClientID,
	}
}

// OrderFulfilledEvent is emitted when a confirmed order ships
type OrderFulfilledEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

// NewOrderFulfilledEvent creates an order fulfilled event
func NewOrderFulfilledEvent(o *Order) *OrderFulfilledEvent {
	return &OrderFulfilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFulfilled, "Order", o.ID),
		ClientID:        o.ClientID,
	}
}
