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

// passthroughTx runs the callback without a transaction
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestUsageRecorderRecord(t *testing.T) {
	ctx := context.Background()
	ref := inventory.UsageReference{Type: inventory.ReferenceTypeOrder, ID: uuid.New()}

	t.Run("decrements stock alongside the record", func(t *testing.T) {
		usageRepo := new(MockUsageRecordRepository)
		invRepo := new(MockInventoryRepository)
		service := NewUsageRecorderService(usageRepo, NewLedgerService(invRepo, nil, nil), passthroughTx{}, nil)

		item := testItem(t, 50, 5)
		usageRepo.On("FindByReference", ctx, ref, item.ID).Return(nil, nil)
		usageRepo.On("Create", ctx, mock.AnythingOfType("*inventory.MaterialUsageRecord")).Return(nil)
		invRepo.On("DecrementStock", ctx, item.ID, decimal.NewFromInt(3).Round(2)).
			Return(movement(item, 50, 47), nil)

		result, err := service.Record(ctx, ref, item.ID, decimal.NewFromInt(3), "banner run")
		require.NoError(t, err)
		assert.False(t, result.AlreadyRecorded)
		assert.False(t, result.Shortfall)
		assert.True(t, result.Record.QuantityUsed.Equal(decimal.NewFromInt(3)))
		usageRepo.AssertExpectations(t)
	})

	t.Run("existing pair returns as-is without a second decrement", func(t *testing.T) {
		usageRepo := new(MockUsageRecordRepository)
		invRepo := new(MockInventoryRepository)
		service := NewUsageRecorderService(usageRepo, NewLedgerService(invRepo, nil, nil), passthroughTx{}, nil)

		itemID := uuid.New()
		existing, err := inventory.NewMaterialUsageRecord(ref, itemID, decimal.NewFromInt(2), "")
		require.NoError(t, err)
		usageRepo.On("FindByReference", ctx, ref, itemID).Return(existing, nil)

		result, err := service.Record(ctx, ref, itemID, decimal.NewFromInt(2), "")
		require.NoError(t, err)
		assert.True(t, result.AlreadyRecorded)
		assert.Equal(t, existing.ID, result.Record.ID)
		usageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		invRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("shortfall keeps the record for audit", func(t *testing.T) {
		usageRepo := new(MockUsageRecordRepository)
		invRepo := new(MockInventoryRepository)
		service := NewUsageRecorderService(usageRepo, NewLedgerService(invRepo, nil, nil), passthroughTx{}, nil)

		itemID := uuid.New()
		usageRepo.On("FindByReference", ctx, ref, itemID).Return(nil, nil)
		usageRepo.On("Create", ctx, mock.AnythingOfType("*inventory.MaterialUsageRecord")).Return(nil)
		invRepo.On("DecrementStock", ctx, itemID, mock.Anything).
			Return(nil, shared.ErrInsufficientStock)
		usageRepo.On("MarkShortfall", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)

		result, err := service.Record(ctx, ref, itemID, decimal.NewFromInt(100), "")
		require.NoError(t, err)
		assert.True(t, result.Shortfall)
		assert.True(t, result.Record.Shortfall)
		usageRepo.AssertExpectations(t)
	})

	t.Run("lost race falls back to the winner", func(t *testing.T) {
		usageRepo := new(MockUsageRecordRepository)
		invRepo := new(MockInventoryRepository)
		service := NewUsageRecorderService(usageRepo, NewLedgerService(invRepo, nil, nil), passthroughTx{}, nil)

		itemID := uuid.New()
		winner, err := inventory.NewMaterialUsageRecord(ref, itemID, decimal.NewFromInt(4), "")
		require.NoError(t, err)

		usageRepo.On("FindByReference", ctx, ref, itemID).Return(nil, nil).Once()
		usageRepo.On("Create", ctx, mock.AnythingOfType("*inventory.MaterialUsageRecord")).
			Return(shared.ErrAlreadyExists)
		usageRepo.On("FindByReference", ctx, ref, itemID).Return(winner, nil).Once()

		result, err := service.Record(ctx, ref, itemID, decimal.NewFromInt(4), "")
		require.NoError(t, err)
		assert.True(t, result.AlreadyRecorded)
		assert.Equal(t, winner.ID, result.Record.ID)
		invRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid quantity never reaches the repository", func(t *testing.T) {
		usageRepo := new(MockUsageRecordRepository)
		invRepo := new(MockInventoryRepository)
		service := NewUsageRecorderService(usageRepo, NewLedgerService(invRepo, nil, nil), passthroughTx{}, nil)

		itemID := uuid.New()
		usageRepo.On("FindByReference", ctx, ref, itemID).Return(nil, nil)

		_, err := service.Record(ctx, ref, itemID, decimal.Zero, "")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		usageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
