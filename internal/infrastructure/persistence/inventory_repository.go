package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInventoryRepository implements inventory.InventoryRepository
// using GORM. Stock movements are single conditional updates, so
// concurrent writers serialize on the row and the quantity can never
// be driven negative.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &item, nil
}

// FindAll finds inventory items matching the filter
func (r *GormInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := db.Model(&inventory.InventoryItem{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []inventory.InventoryItem
	if err := applyFilter(query, filter).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindLowStock finds items at or below their minimum stock threshold
func (r *GormInventoryRepository) FindLowStock(ctx context.Context) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("min_stock > 0 AND quantity <= min_stock").
		Order("quantity ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new inventory item
func (r *GormInventoryRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(item).Error
}

// Save persists changes to an item's descriptive fields. Quantity is
// excluded; it moves only through the conditional updates below.
func (r *GormInventoryRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).
		Model(item).
		Select("name", "unit", "min_stock", "version", "updated_at").
		Updates(item).Error
}

// Delete removes an inventory item
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&inventory.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DecrementStock atomically subtracts amount, refusing to go negative.
// The guard and the subtraction are one UPDATE, so there is no
// read-then-write window between concurrent decrements.
func (r *GormInventoryRepository) DecrementStock(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*inventory.StockMovement, error) {
	var movement *inventory.StockMovement
	err := dbFromContext(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&inventory.InventoryItem{}).
			Where("id = ? AND quantity >= ?", id, amount).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", amount),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var item inventory.InventoryItem
			if err := tx.First(&item, "id = ?", id).Error; err != nil {
				return translateNotFound(err)
			}
			return shared.NewInsufficientStockError(item.Name)
		}

		// The row is locked by the update; this read sees our write.
		var item inventory.InventoryItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		movement = &inventory.StockMovement{
			Item:     &item,
			Previous: item.Quantity.Add(amount),
			Current:  item.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// IncrementStock atomically adds amount to the item's quantity
func (r *GormInventoryRepository) IncrementStock(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*inventory.StockMovement, error) {
	var movement *inventory.StockMovement
	err := dbFromContext(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&inventory.InventoryItem{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", amount),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		var item inventory.InventoryItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		movement = &inventory.StockMovement{
			Item:     &item,
			Previous: item.Quantity.Sub(amount),
			Current:  item.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}
