package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the storefront catalog.
// Products may declare a bill of materials linking them to the
// inventory items consumed when an order for them is confirmed.
type Product struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Active      bool            `gorm:"not null;default:true"`

	Materials []ProductMaterial `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductMaterial is one bill-of-materials row: producing one unit of
// the product consumes QuantityNeeded of the referenced inventory item.
type ProductMaterial struct {
	shared.BaseEntity
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_materials_pair,priority:1"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_materials_pair,priority:2"`
	QuantityNeeded  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ProductMaterial) TableName() string {
	return "product_materials"
}

// NewProduct creates a new active product
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, shared.NewValidationError("product name is required")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("product price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price.Round(2),
		Active:            true,
		Materials:         make([]ProductMaterial, 0),
	}, nil
}

// AddMaterial appends a bill-of-materials row
func (p *Product) AddMaterial(inventoryItemID uuid.UUID, quantityNeeded decimal.Decimal) error {
	if inventoryItemID == uuid.Nil {
		return shared.NewValidationError("inventory item ID is required")
	}
	if quantityNeeded.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("material quantity must be positive")
	}
	for _, m := range p.Materials {
		if m.InventoryItemID == inventoryItemID {
			return shared.NewValidationError("material already declared for this product")
		}
	}
	p.Materials = append(p.Materials, ProductMaterial{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       p.ID,
		InventoryItemID: inventoryItemID,
		QuantityNeeded:  quantityNeeded.Round(2),
	})
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdatePrice changes the catalog price. Orders snapshot unit prices at
// checkout time, so existing orders are unaffected.
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("product price cannot be negative")
	}
	p.Price = price.Round(2)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from sale
func (p *Product) Deactivate() {
	if !p.Active {
		return
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate returns the product to sale
func (p *Product) Activate() {
	if p.Active {
		return
	}
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
