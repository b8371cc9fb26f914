package inventory

import (
	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReferenceType identifies the production event a usage record belongs to
type ReferenceType string

const (
	ReferenceTypeOrder   ReferenceType = "order"
	ReferenceTypeProject ReferenceType = "project"
)

// IsValid returns true if the reference type is a known value
func (t ReferenceType) IsValid() bool {
	return t == ReferenceTypeOrder || t == ReferenceTypeProject
}

// UsageReference points at the order or project that consumed material
type UsageReference struct {
	Type ReferenceType
	ID   uuid.UUID
}

// MaterialUsageRecord ties a consumption event to a stock decrement.
// The ledger is append-only: records are inserted, never updated or
// deleted. (ReferenceType, ReferenceID, InventoryItemID) is unique and
// serves as the idempotency key for webhook retries and duplicate
// conversions.
type MaterialUsageRecord struct {
	shared.BaseEntity
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_reference,priority:3"`
	QuantityUsed    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReferenceType   ReferenceType   `gorm:"type:varchar(10);not null;uniqueIndex:idx_usage_reference,priority:1"`
	ReferenceID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_reference,priority:2"`
	Shortfall       bool            `gorm:"not null;default:false"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MaterialUsageRecord) TableName() string {
	return "material_usage_records"
}

// NewMaterialUsageRecord creates a usage record for a consumption event
func NewMaterialUsageRecord(ref UsageReference, inventoryItemID uuid.UUID, quantityUsed decimal.Decimal, notes string) (*MaterialUsageRecord, error) {
	if !ref.Type.IsValid() {
		return nil, shared.NewValidationError("usage reference type must be order or project")
	}
	if ref.ID == uuid.Nil {
		return nil, shared.NewValidationError("usage reference ID is required")
	}
	if inventoryItemID == uuid.Nil {
		return nil, shared.NewValidationError("inventory item ID is required")
	}
	if quantityUsed.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("quantity used must be positive")
	}

	return &MaterialUsageRecord{
		BaseEntity:      shared.NewBaseEntity(),
		InventoryItemID: inventoryItemID,
		QuantityUsed:    quantityUsed.Round(2),
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		Notes:           notes,
	}, nil
}
