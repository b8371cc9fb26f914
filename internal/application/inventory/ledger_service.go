package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService is the only mutation path for stock quantities. All
// movements go through atomic conditional updates in the repository, so
// concurrent callers serialize on the row instead of racing a
// read-then-write window.
type LedgerService struct {
	inventoryRepo  inventory.InventoryRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(inventoryRepo inventory.InventoryRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		inventoryRepo:  inventoryRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Decrement atomically subtracts amount from an item's stock. A
// movement that would drive the quantity negative fails with
// INSUFFICIENT_STOCK and changes nothing. The low-stock alert is
// edge-triggered: it fires only when this movement crosses the
// threshold from above, never while the item merely stays below it.
func (s *LedgerService) Decrement(ctx context.Context, itemID uuid.UUID, amount decimal.Decimal) (*inventory.StockMovement, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("decrement amount must be positive")
	}

	movement, err := s.inventoryRepo.DecrementStock(ctx, itemID, amount.Round(2))
	if err != nil {
		return nil, err
	}

	item := movement.Item
	if movement.Previous.GreaterThan(item.MinStock) && movement.Current.LessThanOrEqual(item.MinStock) {
		event := inventory.NewLowStockCrossedEvent(item, movement.Previous, movement.Current)
		if s.eventPublisher != nil {
			if pubErr := s.eventPublisher.Publish(ctx, event); pubErr != nil {
				s.logger.Warn("Failed to publish low stock event",
					zap.String("item_id", itemID.String()),
					zap.Error(pubErr))
			}
		}
		s.logger.Info("Low stock threshold crossed",
			zap.String("item_id", itemID.String()),
			zap.String("item_name", item.Name),
			zap.String("previous", movement.Previous.String()),
			zap.String("current", movement.Current.String()),
			zap.String("min_stock", item.MinStock.String()))
	}

	return movement, nil
}

// Increment atomically adds amount to an item's stock. Restocking above
// the threshold re-arms the low-stock edge for the next crossing.
func (s *LedgerService) Increment(ctx context.Context, itemID uuid.UUID, amount decimal.Decimal) (*inventory.StockMovement, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("increment amount must be positive")
	}
	return s.inventoryRepo.IncrementStock(ctx, itemID, amount.Round(2))
}

// CreateItem adds a new inventory item
func (s *LedgerService) CreateItem(ctx context.Context, name, unit string, quantity, minStock decimal.Decimal) (*inventory.InventoryItem, error) {
	item, err := inventory.NewInventoryItem(name, unit, quantity, minStock)
	if err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem changes an item's descriptive fields and threshold
func (s *LedgerService) UpdateItem(ctx context.Context, id uuid.UUID, name, unit string, minStock decimal.Decimal) (*inventory.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.Update(name, unit, minStock); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem retrieves an inventory item by ID
func (s *LedgerService) GetItem(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	return s.inventoryRepo.FindByID(ctx, id)
}

// ListItems retrieves inventory items matching the filter
func (s *LedgerService) ListItems(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, int64, error) {
	return s.inventoryRepo.FindAll(ctx, filter)
}

// ListLowStock retrieves items at or below their minimum stock. This is
// a read-time aggregation; no counter state is kept anywhere.
func (s *LedgerService) ListLowStock(ctx context.Context) ([]inventory.InventoryItem, error) {
	return s.inventoryRepo.FindLowStock(ctx)
}

// DeleteItem removes an inventory item
func (s *LedgerService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.inventoryRepo.Delete(ctx, id)
}
