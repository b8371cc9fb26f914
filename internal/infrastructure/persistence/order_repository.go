package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

// FindByExternalReference finds an order by its gateway reference
func (r *GormOrderRepository) FindByExternalReference(ctx context.Context, ref string) (*trade.Order, error) {
	var order trade.Order
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		First(&order, "external_reference = ?", ref).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

// FindAll finds orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := db.Model(&trade.Order{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if clientID, ok := filter.Filters["client_id"]; ok {
		query = query.Where("client_id = ?", clientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []trade.Order
	if err := applyFilter(query, filter).Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Create inserts an order together with its items
func (r *GormOrderRepository) Create(ctx context.Context, o *trade.Order) error {
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Create(o).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists the order's own columns under an optimistic lock on
// the version the caller loaded. The status column is excluded: status
// only changes through the conditional transitions below, so a stale
// aggregate can never write a transition back. Items never change
// after creation.
func (r *GormOrderRepository) Save(ctx context.Context, o *trade.Order) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"external_reference": o.ExternalReference,
			"backordered":        o.Backordered,
			"version":            o.Version,
			"updated_at":         o.UpdatedAt,
		})
	if result.Error != nil {
		if isDuplicateKeyErr(result.Error) {
			return shared.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ConfirmPending moves the order from Pending to Confirmed with a
// conditional update. A false return means the order was no longer
// Pending when the update ran.
func (r *GormOrderRepository) ConfirmPending(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND status = ?", orderID, trade.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     trade.OrderStatusConfirmed,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CancelPending moves the order from Pending to Cancelled with a
// conditional update. A false return means the order had already left
// Pending, typically because a payment confirmation landed first.
func (r *GormOrderRepository) CancelPending(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND status = ?", orderID, trade.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     trade.OrderStatusCancelled,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FulfillConfirmed moves the order from Confirmed to Fulfilled with a
// conditional update. A false return means the order was not Confirmed
// when the update ran.
func (r *GormOrderRepository) FulfillConfirmed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND status = ?", orderID, trade.OrderStatusConfirmed).
		Updates(map[string]interface{}{
			"status":     trade.OrderStatusFulfilled,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkBackordered flags an order whose material usage fell short
func (r *GormOrderRepository) MarkBackordered(ctx context.Context, orderID uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"backordered": true,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByClient reports how many orders reference the client
func (r *GormOrderRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&trade.Order{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}
