package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUsageRecordRepository implements inventory.UsageRecordRepository
// using GORM. The unique index on (reference_type, reference_id,
// inventory_item_id) backs the ledger's idempotency.
type GormUsageRecordRepository struct {
	db *gorm.DB
}

// NewGormUsageRecordRepository creates a new GormUsageRecordRepository
func NewGormUsageRecordRepository(db *gorm.DB) *GormUsageRecordRepository {
	return &GormUsageRecordRepository{db: db}
}

// FindByReference finds the record for one (reference, item) pair.
// Returns nil without error when no record exists.
func (r *GormUsageRecordRepository) FindByReference(ctx context.Context, ref inventory.UsageReference, inventoryItemID uuid.UUID) (*inventory.MaterialUsageRecord, error) {
	var record inventory.MaterialUsageRecord
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("reference_type = ? AND reference_id = ? AND inventory_item_id = ?",
			ref.Type, ref.ID, inventoryItemID).
		First(&record).Error
	if err != nil {
		if translateNotFound(err) == shared.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindAllByReference finds every record for a reference
func (r *GormUsageRecordRepository) FindAllByReference(ctx context.Context, ref inventory.UsageReference) ([]inventory.MaterialUsageRecord, error) {
	var records []inventory.MaterialUsageRecord
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", ref.Type, ref.ID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Create inserts a new usage record
func (r *GormUsageRecordRepository) Create(ctx context.Context, record *inventory.MaterialUsageRecord) error {
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Create(record).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// MarkShortfall flags a record whose decrement could not be covered
func (r *GormUsageRecordRepository) MarkShortfall(ctx context.Context, recordID uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&inventory.MaterialUsageRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"shortfall":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
