package quote

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// MaxAssetsPerQuote caps the reference images accepted on submission
const MaxAssetsPerQuote = 5

// AssetStatus tracks the upload saga for a reference image. The asset
// row is persisted before the upload is attempted; a failed or
// abandoned upload leaves the row in Pending rather than disappearing.
type AssetStatus string

const (
	AssetStatusPending  AssetStatus = "pending"
	AssetStatusUploaded AssetStatus = "uploaded"
)

// QuoteAsset is a reference image attached to a quote submission
type QuoteAsset struct {
	shared.BaseEntity
	QuoteID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	StorageKey  string      `gorm:"type:varchar(500);not null;uniqueIndex:idx_quote_assets_key"`
	ContentType string      `gorm:"type:varchar(100);not null"`
	Status      AssetStatus `gorm:"type:varchar(10);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (QuoteAsset) TableName() string {
	return "quote_assets"
}

// NewQuoteAsset creates a pending asset row for a quote
func NewQuoteAsset(quoteID uuid.UUID, storageKey, contentType string) (*QuoteAsset, error) {
	if quoteID == uuid.Nil {
		return nil, shared.NewValidationError("quote ID is required")
	}
	if storageKey == "" {
		return nil, shared.NewValidationError("storage key is required")
	}
	if contentType == "" {
		return nil, shared.NewValidationError("content type is required")
	}
	return &QuoteAsset{
		BaseEntity:  shared.NewBaseEntity(),
		QuoteID:     quoteID,
		StorageKey:  storageKey,
		ContentType: contentType,
		Status:      AssetStatusPending,
	}, nil
}

// MarkUploaded completes the upload saga for this asset
func (a *QuoteAsset) MarkUploaded() {
	if a.Status == AssetStatusUploaded {
		return
	}
	a.Status = AssetStatusUploaded
	a.UpdatedAt = time.Now()
}
