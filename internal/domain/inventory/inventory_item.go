package inventory

import (
	"time"

	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked material. Quantity never goes negative;
// every mutation happens through the ledger's conditional updates, not
// through read-modify-write on the aggregate.
type InventoryItem struct {
	shared.BaseAggregateRoot
	Name     string          `gorm:"type:varchar(200);not null"`
	Unit     string          `gorm:"type:varchar(20);not null;default:'unit'"`
	Quantity decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MinStock decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a new inventory item
func NewInventoryItem(name, unit string, quantity, minStock decimal.Decimal) (*InventoryItem, error) {
	if name == "" {
		return nil, shared.NewValidationError("inventory item name is required")
	}
	if unit == "" {
		unit = "unit"
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("inventory quantity cannot be negative")
	}
	if minStock.IsNegative() {
		return nil, shared.NewValidationError("minimum stock cannot be negative")
	}

	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Unit:              unit,
		Quantity:          quantity.Round(2),
		MinStock:          minStock.Round(2),
	}, nil
}

// Update changes the item's descriptive fields and threshold. Quantity
// is deliberately not editable here.
func (i *InventoryItem) Update(name, unit string, minStock decimal.Decimal) error {
	if name == "" {
		return shared.NewValidationError("inventory item name is required")
	}
	if minStock.IsNegative() {
		return shared.NewValidationError("minimum stock cannot be negative")
	}
	i.Name = name
	if unit != "" {
		i.Unit = unit
	}
	i.MinStock = minStock.Round(2)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// IsLow reports whether the item currently sits at or below its
// minimum stock threshold
func (i *InventoryItem) IsLow() bool {
	return i.Quantity.LessThanOrEqual(i.MinStock)
}
