package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.InventoryItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryRepository) FindLowStock(ctx context.Context) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInventoryRepository) DecrementStock(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*inventory.StockMovement, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockMovement), args.Error(1)
}

func (m *MockInventoryRepository) IncrementStock(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*inventory.StockMovement, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockMovement), args.Error(1)
}

// capturingPublisher records every published event
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func testItem(t *testing.T, quantity, minStock int64) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem("toner", "unit",
		decimal.NewFromInt(quantity), decimal.NewFromInt(minStock))
	require.NoError(t, err)
	return item
}

func movement(item *inventory.InventoryItem, previous, current int64) *inventory.StockMovement {
	item.Quantity = decimal.NewFromInt(current)
	return &inventory.StockMovement{
		Item:     item,
		Previous: decimal.NewFromInt(previous),
		Current:  decimal.NewFromInt(current),
	}
}

func TestLedgerDecrement(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		service := NewLedgerService(repo, nil, nil)

		_, err := service.Decrement(ctx, uuid.New(), decimal.Zero)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		repo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("alert fires on the crossing movement", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		publisher := &capturingPublisher{}
		service := NewLedgerService(repo, publisher, nil)

		item := testItem(t, 12, 10)
		repo.On("DecrementStock", ctx, item.ID, decimal.NewFromInt(3).Round(2)).
			Return(movement(item, 12, 9), nil)

		_, err := service.Decrement(ctx, item.ID, decimal.NewFromInt(3))
		require.NoError(t, err)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, "inventory.low_stock_crossed", publisher.events[0].EventType())
	})

	t.Run("no alert while already below threshold", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		publisher := &capturingPublisher{}
		service := NewLedgerService(repo, publisher, nil)

		item := testItem(t, 8, 10)
		repo.On("DecrementStock", ctx, item.ID, decimal.NewFromInt(2).Round(2)).
			Return(movement(item, 8, 6), nil)

		_, err := service.Decrement(ctx, item.ID, decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.Empty(t, publisher.events)
	})

	t.Run("no alert when staying above threshold", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		publisher := &capturingPublisher{}
		service := NewLedgerService(repo, publisher, nil)

		item := testItem(t, 100, 10)
		repo.On("DecrementStock", ctx, item.ID, decimal.NewFromInt(5).Round(2)).
			Return(movement(item, 100, 95), nil)

		_, err := service.Decrement(ctx, item.ID, decimal.NewFromInt(5))
		require.NoError(t, err)
		assert.Empty(t, publisher.events)
	})

	t.Run("landing exactly on the threshold fires", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		publisher := &capturingPublisher{}
		service := NewLedgerService(repo, publisher, nil)

		item := testItem(t, 12, 10)
		repo.On("DecrementStock", ctx, item.ID, decimal.NewFromInt(2).Round(2)).
			Return(movement(item, 12, 10), nil)

		_, err := service.Decrement(ctx, item.ID, decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.Len(t, publisher.events, 1)
	})

	t.Run("insufficient stock propagates", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		service := NewLedgerService(repo, nil, nil)

		itemID := uuid.New()
		repo.On("DecrementStock", ctx, itemID, mock.Anything).
			Return(nil, shared.ErrInsufficientStock)

		_, err := service.Decrement(ctx, itemID, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestLedgerIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		service := NewLedgerService(repo, nil, nil)

		_, err := service.Increment(ctx, uuid.New(), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("delegates to the repository", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		service := NewLedgerService(repo, nil, nil)

		item := testItem(t, 0, 5)
		repo.On("IncrementStock", ctx, item.ID, decimal.NewFromInt(10).Round(2)).
			Return(movement(item, 0, 10), nil)

		result, err := service.Increment(ctx, item.ID, decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.True(t, result.Current.Equal(decimal.NewFromInt(10)))
	})
}
