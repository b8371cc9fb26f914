package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordResult reports how a usage recording resolved
type RecordResult struct {
	Record          *inventory.MaterialUsageRecord
	AlreadyRecorded bool
	Shortfall       bool
}

// UsageRecorderService links production events (orders, projects) to
// stock decrements. Each (reference, inventory item) pair is recorded
// at most once, which makes retried webhooks and duplicate conversions
// harmless.
type UsageRecorderService struct {
	usageRepo inventory.UsageRecordRepository
	ledger    *LedgerService
	tx        shared.TxManager
	logger    *zap.Logger
}

// NewUsageRecorderService creates a new UsageRecorderService
func NewUsageRecorderService(usageRepo inventory.UsageRecordRepository, ledger *LedgerService, tx shared.TxManager, logger *zap.Logger) *UsageRecorderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageRecorderService{
		usageRepo: usageRepo,
		ledger:    ledger,
		tx:        tx,
		logger:    logger,
	}
}

// Record inserts a usage record and decrements stock as one atomic
// unit. A record that already exists for the pair is returned as-is
// with no further decrement. When stock cannot cover the amount the
// record is kept for audit, flagged as a shortfall, and the result
// reports it to the caller.
func (s *UsageRecorderService) Record(ctx context.Context, ref inventory.UsageReference, inventoryItemID uuid.UUID, quantityUsed decimal.Decimal, notes string) (*RecordResult, error) {
	existing, err := s.usageRepo.FindByReference(ctx, ref, inventoryItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &RecordResult{Record: existing, AlreadyRecorded: true, Shortfall: existing.Shortfall}, nil
	}

	record, err := inventory.NewMaterialUsageRecord(ref, inventoryItemID, quantityUsed, notes)
	if err != nil {
		return nil, err
	}

	result := &RecordResult{Record: record}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.usageRepo.Create(txCtx, record); err != nil {
			return err
		}

		_, decErr := s.ledger.Decrement(txCtx, inventoryItemID, record.QuantityUsed)
		if decErr != nil {
			var domainErr *shared.DomainError
			if errors.As(decErr, &domainErr) && domainErr.Code == shared.CodeInsufficientStock {
				record.Shortfall = true
				result.Shortfall = true
				return s.usageRepo.MarkShortfall(txCtx, record.ID)
			}
			return decErr
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent writer recorded the same pair first.
			winner, findErr := s.usageRepo.FindByReference(ctx, ref, inventoryItemID)
			if findErr != nil {
				return nil, findErr
			}
			if winner != nil {
				return &RecordResult{Record: winner, AlreadyRecorded: true, Shortfall: winner.Shortfall}, nil
			}
		}
		return nil, err
	}

	if result.Shortfall {
		s.logger.Warn("Material usage recorded with shortfall",
			zap.String("reference_type", string(ref.Type)),
			zap.String("reference_id", ref.ID.String()),
			zap.String("item_id", inventoryItemID.String()),
			zap.String("quantity", record.QuantityUsed.String()))
	}

	return result, nil
}

// History retrieves every usage record for a reference
func (s *UsageRecorderService) History(ctx context.Context, ref inventory.UsageReference) ([]inventory.MaterialUsageRecord, error) {
	return s.usageRepo.FindAllByReference(ctx, ref)
}
