package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockMovement reports the quantities around one successful ledger
// mutation. The edge-triggered low-stock check compares Previous and
// Current against the threshold.
type StockMovement struct {
	Item     *InventoryItem
	Previous decimal.Decimal
	Current  decimal.Decimal
}

// InventoryRepository defines persistence operations for inventory items
type InventoryRepository interface {
	// FindByID retrieves an inventory item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindAll retrieves inventory items matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryItem, int64, error)

	// FindLowStock retrieves items at or below their minimum stock,
	// computed at read time
	FindLowStock(ctx context.Context) ([]InventoryItem, error)

	// Create inserts a new inventory item
	Create(ctx context.Context, item *InventoryItem) error

	// Save persists changes to an existing item's descriptive fields
	Save(ctx context.Context, item *InventoryItem) error

	// Delete removes an inventory item
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically subtracts amount from the item's
	// quantity with a conditional update that refuses to go negative.
	// Returns shared.ErrInsufficientStock without any change when the
	// remaining quantity does not cover the amount.
	DecrementStock(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*StockMovement, error)

	// IncrementStock atomically adds amount to the item's quantity
	IncrementStock(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*StockMovement, error)
}

// UsageRecordRepository defines persistence operations for the
// material usage ledger
type UsageRecordRepository interface {
	// FindByReference retrieves the record for one (reference, item)
	// pair, or nil when none exists
	FindByReference(ctx context.Context, ref UsageReference, inventoryItemID uuid.UUID) (*MaterialUsageRecord, error)

	// FindAllByReference retrieves every record for a reference
	FindAllByReference(ctx context.Context, ref UsageReference) ([]MaterialUsageRecord, error)

	// Create inserts a new usage record. Returns shared.ErrAlreadyExists
	// when a record for the same (reference, item) pair already exists.
	Create(ctx context.Context, record *MaterialUsageRecord) error

	// MarkShortfall flags a record whose decrement could not be covered
	MarkShortfall(ctx context.Context, recordID uuid.UUID) error
}
