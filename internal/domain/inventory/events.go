package inventory

import (
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the inventory context
const (
	EventTypeLowStockCrossed = "inventory.low_stock_crossed"
)

// LowStockCrossedEvent is emitted exactly once when a decrement moves an
// item from above its minimum stock threshold to at or below it.
// Further decrements below the threshold stay silent; restocking above
// the threshold re-arms the edge.
type LowStockCrossedEvent struct {
	shared.BaseDomainEvent
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	MinStock         decimal.Decimal `json:"min_stock"`
}

// NewLowStockCrossedEvent creates a low stock crossed event
func NewLowStockCrossedEvent(item *InventoryItem, previous, current decimal.Decimal) *LowStockCrossedEvent {
	return &LowStockCrossedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeLowStockCrossed, "InventoryItem", item.ID),
		Name:             item.Name,
		Unit:             item.Unit,
		PreviousQuantity: previous,
		NewQuantity:      current,
		MinStock:         item.MinStock,
	}
}
