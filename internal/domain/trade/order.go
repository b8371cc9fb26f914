package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a storefront order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid returns true if the status is a known value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order represents a storefront purchase settled through the external
// payment gateway. TotalAmount always equals the sum of its items'
// quantity times snapshotted unit price.
type Order struct {
	shared.BaseAggregateRoot
	ClientID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExternalReference *string         `gorm:"type:varchar(100);uniqueIndex:idx_orders_external_ref"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Backordered       bool            `gorm:"not null;default:false"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one purchased line. UnitPrice is snapshotted from the
// catalog at checkout time and never follows later price changes.
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns quantity times unit price for this line
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is the input for one line at checkout, with the unit price
// already snapshotted by the caller.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// NewOrder creates a new pending order from snapshotted lines
func NewOrder(clientID uuid.UUID, lines []OrderLine) (*Order, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("client ID is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("order needs at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Status:            OrderStatusPending,
		TotalAmount:       decimal.Zero,
		Items:             make([]OrderItem, 0, len(lines)),
	}
	total := decimal.Zero
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("order item product ID is required")
		}
		if line.Quantity < 1 {
			return nil, shared.NewValidationError("order item quantity must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("order item unit price cannot be negative")
		}
		item := OrderItem{
			BaseEntity: shared.NewBaseEntity(),
			OrderID:    o.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice.Round(2),
		}
		o.Items = append(o.Items, item)
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AttachExternalReference records the gateway's reference once a payment
// preference has been created. Set at most once.
func (o *Order) AttachExternalReference(ref string) error {
	if ref == "" {
		return shared.NewValidationError("external reference is required")
	}
	if o.ExternalReference != nil && *o.ExternalReference != ref {
		return shared.NewInvalidStateError("order already carries a different external reference")
	}
	o.ExternalReference = &ref
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Cancel cancels the order. Allowed only while Pending; once payment is
// confirmed, cancellation is a separate compensating flow.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending {
		return shared.NewInvalidStateError(
			fmt.Sprintf("cannot cancel order in state %s", o.Status))
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}

// Fulfill marks a confirmed order as fulfilled
func (o *Order) Fulfill() error {
	if o.Status != OrderStatusConfirmed {
		return shared.NewInvalidStateError(
			fmt.Sprintf("cannot fulfill order in state %s", o.Status))
	}
	o.Status = OrderStatusFulfilled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderFulfilledEvent(o))
	return nil
}
