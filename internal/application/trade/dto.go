package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CheckoutItem is one line of a guest checkout
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutRequest is the input for a guest checkout
type CheckoutRequest struct {
	Email      string
	Name       string
	ClientType string
	Items      []CheckoutItem
}

// CheckoutResponse is the result of a checkout: the pending order plus
// the gateway URL the payer is redirected to
type CheckoutResponse struct {
	Order       OrderResponse `json:"order"`
	RedirectURL string        `json:"redirect_url"`
}

// ConfirmResult reports how a confirmation delivery resolved
type ConfirmResult struct {
	OrderID          uuid.UUID         `json:"order_id"`
	Status           trade.OrderStatus `json:"status"`
	AlreadyConfirmed bool              `json:"already_confirmed"`
	Backordered      bool              `json:"backordered"`
	ShortItems       []uuid.UUID       `json:"short_items,omitempty"`
}

// OrderItemResponse is one purchased line in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	ClientID          uuid.UUID           `json:"client_id"`
	Status            trade.OrderStatus   `json:"status"`
	ExternalReference *string             `json:"external_reference,omitempty"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	Backordered       bool                `json:"backordered"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ToOrderResponse maps an order aggregate to its API representation
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		ClientID:          o.ClientID,
		Status:            o.Status,
		ExternalReference: o.ExternalReference,
		TotalAmount:       o.TotalAmount,
		Backordered:       o.Backordered,
		Items:             make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for i := range o.Items {
		item := o.Items[i]
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return resp
}
