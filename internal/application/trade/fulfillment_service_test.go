package trade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	inventoryapp "github.com/printshop/backend/internal/application/inventory"
	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByExternalReference(ctx context.Context, ref string) (*trade.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *trade.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *trade.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) ConfirmPending(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CancelPending(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FulfillConfirmed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkBackordered(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDWithMaterials(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindMaterials(ctx context.Context, productID uuid.UUID) ([]catalog.ProductMaterial, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductMaterial), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryStore is a map-backed idempotency store for tests
type memoryStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]struct{}{}}
}

func (s *memoryStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *memoryStore) Unmark(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }

// MockUsageRecordRepository is a mock implementation of UsageRecordRepository
type MockUsageRecordRepository struct {
	mock.Mock
}

func (m *MockUsageRecordRepository) FindByReference(ctx context.Context, ref inventory.UsageReference, inventoryItemID uuid.UUID) (*inventory.MaterialUsageRecord, error) {
	args := m.Called(ctx, ref, inventoryItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.MaterialUsageRecord), args.Error(1)
}

func (m *MockUsageRecordRepository) FindAllByReference(ctx context.Context, ref inventory.UsageReference) ([]inventory.MaterialUsageRecord, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).([]inventory.MaterialUsageRecord), args.Error(1)
}

func (m *MockUsageRecordRepository) Create(ctx context.Context, record *inventory.MaterialUsageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUsageRecordRepository) MarkShortfall(ctx context.Context, recordID uuid.UUID) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

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

// passthroughTx runs the callback without a transaction
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fulfillmentFixture struct {
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	usageRepo   *MockUsageRecordRepository
	invRepo     *MockInventoryRepository
	store       *memoryStore
	service     *FulfillmentService
}

func newFulfillmentFixture() *fulfillmentFixture {
	f := &fulfillmentFixture{
		orderRepo:   new(MockOrderRepository),
		productRepo: new(MockProductRepository),
		usageRepo:   new(MockUsageRecordRepository),
		invRepo:     new(MockInventoryRepository),
		store:       newMemoryStore(),
	}
	ledger := inventoryapp.NewLedgerService(f.invRepo, nil, nil)
	recorder := inventoryapp.NewUsageRecorderService(f.usageRepo, ledger, passthroughTx{}, nil)
	f.service = NewFulfillmentService(FulfillmentServiceConfig{
		OrderRepo:        f.orderRepo,
		ProductRepo:      f.productRepo,
		UsageRecorder:    recorder,
		IdempotencyStore: f.store,
	})
	return f
}

func pendingOrder(t *testing.T, productID uuid.UUID, quantity int) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(uuid.New(), []trade.OrderLine{
		{ProductID: productID, Quantity: quantity, UnitPrice: decimal.NewFromInt(25)},
	})
	require.NoError(t, err)
	require.NoError(t, o.AttachExternalReference(trade.OrderReference(o.ID)))
	return o
}

func TestFulfillmentConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("first confirmation consumes materials", func(t *testing.T) {
		f := newFulfillmentFixture()
		productID := uuid.New()
		order := pendingOrder(t, productID, 3)
		ref := *order.ExternalReference
		itemID := uuid.New()

		f.orderRepo.On("FindByExternalReference", ctx, ref).Return(order, nil)
		f.orderRepo.On("ConfirmPending", ctx, order.ID).Return(true, nil)
		f.productRepo.On("FindMaterials", ctx, productID).Return([]catalog.ProductMaterial{
			{InventoryItemID: itemID, QuantityNeeded: decimal.NewFromInt(2)},
		}, nil)
		usageRef := inventory.UsageReference{Type: inventory.ReferenceTypeOrder, ID: order.ID}
		f.usageRepo.On("FindByReference", ctx, usageRef, itemID).Return(nil, nil)
		f.usageRepo.On("Create", ctx, mock.AnythingOfType("*inventory.MaterialUsageRecord")).Return(nil)
		item, err := inventory.NewInventoryItem("vinyl", "m", decimal.NewFromInt(20), decimal.NewFromInt(2))
		require.NoError(t, err)
		f.invRepo.On("DecrementStock", ctx, itemID, decimal.NewFromInt(6).Round(2)).
			Return(&inventory.StockMovement{
				Item:     item,
				Previous: decimal.NewFromInt(20),
				Current:  decimal.NewFromInt(14),
			}, nil)

		result, err := f.service.Confirm(ctx, ref, "evt-1")
		require.NoError(t, err)
		assert.Equal(t, order.ID, result.OrderID)
		assert.Equal(t, trade.OrderStatusConfirmed, result.Status)
		assert.False(t, result.AlreadyConfirmed)
		assert.False(t, result.Backordered)
		f.usageRepo.AssertExpectations(t)
	})

	t.Run("duplicate event id short-circuits before database work", func(t *testing.T) {
		f := newFulfillmentFixture()
		order := pendingOrder(t, uuid.New(), 1)
		order.Status = trade.OrderStatusConfirmed
		ref := *order.ExternalReference

		_, err := f.store.MarkProcessed(ctx, "payment:webhook:evt-dup", time.Hour)
		require.NoError(t, err)
		f.orderRepo.On("FindByExternalReference", ctx, ref).Return(order, nil)

		result, err := f.service.Confirm(ctx, ref, "evt-dup")
		require.NoError(t, err)
		assert.True(t, result.AlreadyConfirmed)
		f.orderRepo.AssertNotCalled(t, "ConfirmPending", mock.Anything, mock.Anything)
	})

	t.Run("marked delivery with an unapplied transition confirms again", func(t *testing.T) {
		f := newFulfillmentFixture()
		order := pendingOrder(t, uuid.New(), 1)
		ref := *order.ExternalReference

		_, err := f.store.MarkProcessed(ctx, "payment:webhook:evt-crash", time.Hour)
		require.NoError(t, err)
		f.orderRepo.On("FindByExternalReference", ctx, ref).Return(order, nil)
		f.orderRepo.On("ConfirmPending", ctx, order.ID).Return(true, nil)
		f.productRepo.On("FindMaterials", ctx, order.Items[0].ProductID).
			Return([]catalog.ProductMaterial{}, nil)

		result, err := f.service.Confirm(ctx, ref, "evt-crash")
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusConfirmed, result.Status)
		assert.False(t, result.AlreadyConfirmed)
		f.orderRepo.AssertCalled(t, "ConfirmPending", ctx, order.ID)
	})

	t.Run("already confirmed order reports success without effect", func(t *testing.T) {
		f := newFulfillmentFixture()
		order := pendingOrder(t, uuid.New(), 1)
		order.Status = trade.OrderStatusConfirmed
		ref := *order.ExternalReference

		f.orderRepo.On("FindByExternalReference", ctx, ref).Return(order, nil)

		result, err := f.service.Confirm(ctx, ref, "")
		require.NoError(t, err)
		assert.True(t, result.AlreadyConfirmed)
		assert.Equal(t, trade.OrderStatusConfirmed, result.Status)
		f.orderRepo.AssertNotCalled(t, "ConfirmPending", mock.Anything, mock.Anything)
	})

	t.Run("cancelled order cannot be confirmed", func(t *testing.T) {
		f := newFulfillmentFixture()
		order := pendingOrder(t, uuid.New(), 1)
		order.Status = trade.OrderStatusCancelled
		ref := *order.ExternalReference

		f.orderRepo.On("FindByExternalReference", ctx, ref).Return(order, nil)

		_, err := f.service.Confirm(ctx, ref, "evt-cancelled")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidState, domainErr.Code)

		// The failed delivery must stay retryable.
		marked, err := f.store.MarkProcessed(ctx, "payment:webhook:evt-cancelled", time.Hour)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("lost conditional update re-reads the winner's outcome", func(t *testing.T) {
		f := newFulfillmentFixture()
		order := pendingOrder(t, uuid.New(), 1)
		ref := *order.ExternalReference

		confirmed := *order
		confirmed.Status = trade.OrderStatusConfirmed

		f.orderRepo.On("FindByExternalReference", ctx, ref).Return(order, nil)
		f.orderRepo.On("ConfirmPending", ctx, order.ID).Return(false, nil)
		f.orderRepo.On("FindByID", ctx, order.ID).Return(&confirmed, nil)

		result, err := f.service.Confirm(ctx, ref, "")
		require.NoError(t, err)
		assert.True(t, result.AlreadyConfirmed)
		f.productRepo.AssertNotCalled(t, "FindMaterials", mock.Anything, mock.Anything)
	})

	t.Run("shortfall marks the order backordered", func(t *testing.T) {
		f := newFulfillmentFixture()
		productID := uuid.New()
		order := pendingOrder(t, productID, 2)
		ref := *order.ExternalReference
		itemID := uuid.New()

		f.orderRepo.On("FindByExternalReference", ctx, ref).Return(order, nil)
		f.orderRepo.On("ConfirmPending", ctx, order.ID).Return(true, nil)
		f.productRepo.On("FindMaterials", ctx, productID).Return([]catalog.ProductMaterial{
			{InventoryItemID: itemID, QuantityNeeded: decimal.NewFromInt(10)},
		}, nil)
		usageRef := inventory.UsageReference{Type: inventory.ReferenceTypeOrder, ID: order.ID}
		f.usageRepo.On("FindByReference", ctx, usageRef, itemID).Return(nil, nil)
		f.usageRepo.On("Create", ctx, mock.AnythingOfType("*inventory.MaterialUsageRecord")).Return(nil)
		f.invRepo.On("DecrementStock", ctx, itemID, mock.Anything).
			Return(nil, shared.ErrInsufficientStock)
		f.usageRepo.On("MarkShortfall", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)
		f.orderRepo.On("MarkBackordered", ctx, order.ID).Return(nil)

		result, err := f.service.Confirm(ctx, ref, "evt-short")
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusConfirmed, result.Status)
		assert.True(t, result.Backordered)
		assert.Equal(t, []uuid.UUID{itemID}, result.ShortItems)
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("empty external reference is rejected", func(t *testing.T) {
		f := newFulfillmentFixture()
		_, err := f.service.Confirm(ctx, "", "evt-1")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
	})

	t.Run("failure releases the idempotency key", func(t *testing.T) {
		f := newFulfillmentFixture()
		f.orderRepo.On("FindByExternalReference", ctx, "missing-ref").Return(nil, shared.ErrNotFound)

		_, err := f.service.Confirm(ctx, "missing-ref", "evt-retry")
		require.Error(t, err)

		marked, err := f.store.MarkProcessed(ctx, "payment:webhook:evt-retry", time.Hour)
		require.NoError(t, err)
		assert.True(t, marked)
	})
}
