package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	inventoryapp "github.com/printshop/backend/internal/application/inventory"
	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FulfillmentService processes payment confirmations delivered by the
// gateway webhook and by the client-side redirect fallback. Deliveries
// arrive at least once; the service is safe under unlimited duplicates.
//
// Two layers keep it idempotent. The idempotency store short-circuits
// retried deliveries of the same gateway event id before any database
// work; the conditional Pending to Confirmed update is the correctness
// guard and stands alone if the store is disabled or lossy.
type FulfillmentService struct {
	orderRepo        trade.OrderRepository
	productRepo      catalog.ProductRepository
	usageRecorder    *inventoryapp.UsageRecorderService
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// FulfillmentServiceConfig holds the dependencies of FulfillmentService
type FulfillmentServiceConfig struct {
	OrderRepo        trade.OrderRepository
	ProductRepo      catalog.ProductRepository
	UsageRecorder    *inventoryapp.UsageRecorderService
	IdempotencyStore shared.IdempotencyStore
	IdempotencyCfg   *shared.IdempotencyConfig
	EventPublisher   shared.EventPublisher
	Logger           *zap.Logger
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(cfg FulfillmentServiceConfig) *FulfillmentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	idemCfg := shared.DefaultIdempotencyConfig()
	if cfg.IdempotencyCfg != nil {
		idemCfg = *cfg.IdempotencyCfg
	}
	return &FulfillmentService{
		orderRepo:        cfg.OrderRepo,
		productRepo:      cfg.ProductRepo,
		usageRecorder:    cfg.UsageRecorder,
		idempotencyStore: cfg.IdempotencyStore,
		idempotencyCfg:   idemCfg,
		eventPublisher:   cfg.EventPublisher,
		logger:           logger,
	}
}

// Confirm applies a payment confirmation for the order carrying the
// external reference. eventID identifies the gateway delivery and may
// be empty (the redirect fallback has none). The first successful call
// performs the single Pending to Confirmed transition and records
// material usage for every ordered product with a bill of materials;
// every later call reports success without further effect.
func (s *FulfillmentService) Confirm(ctx context.Context, externalReference, eventID string) (*ConfirmResult, error) {
	if externalReference == "" {
		return nil, shared.NewValidationError("external reference is required")
	}

	marked, err := s.markDelivery(ctx, eventID)
	if err != nil {
		s.logger.Warn("Idempotency store unavailable, continuing on database guard",
			zap.String("event_id", eventID),
			zap.Error(err))
	} else if !marked {
		order, err := s.orderRepo.FindByExternalReference(ctx, externalReference)
		if err != nil {
			return nil, err
		}
		switch order.Status {
		case trade.OrderStatusConfirmed, trade.OrderStatusFulfilled:
			s.logger.Info("Duplicate webhook delivery short-circuited",
				zap.String("event_id", eventID),
				zap.String("external_reference", externalReference))
			return &ConfirmResult{
				OrderID:          order.ID,
				Status:           order.Status,
				AlreadyConfirmed: true,
				Backordered:      order.Backordered,
			}, nil
		}
		// A marked key with an order still Pending means an earlier
		// delivery stopped between marking and the database update.
		// The conditional update below keeps the retry safe.
		s.logger.Warn("Marked delivery found unapplied, confirming again",
			zap.String("event_id", eventID),
			zap.String("external_reference", externalReference))
	}

	result, err := s.confirm(ctx, externalReference)
	if err != nil {
		s.unmarkDelivery(ctx, eventID)
		return nil, err
	}
	return result, nil
}

func (s *FulfillmentService) confirm(ctx context.Context, externalReference string) (*ConfirmResult, error) {
	order, err := s.orderRepo.FindByExternalReference(ctx, externalReference)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case trade.OrderStatusConfirmed, trade.OrderStatusFulfilled:
		return &ConfirmResult{
			OrderID:          order.ID,
			Status:           order.Status,
			AlreadyConfirmed: true,
			Backordered:      order.Backordered,
		}, nil
	case trade.OrderStatusCancelled:
		return nil, shared.NewInvalidStateError("order has been cancelled")
	}

	transitioned, err := s.orderRepo.ConfirmPending(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// A concurrent delivery won the conditional update.
		current, err := s.orderRepo.FindByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		switch current.Status {
		case trade.OrderStatusConfirmed, trade.OrderStatusFulfilled:
			return &ConfirmResult{
				OrderID:          current.ID,
				Status:           current.Status,
				AlreadyConfirmed: true,
				Backordered:      current.Backordered,
			}, nil
		default:
			return nil, shared.NewInvalidStateError(
				fmt.Sprintf("order is in state %s and cannot be confirmed", current.Status))
		}
	}

	order.Status = trade.OrderStatusConfirmed
	shortItems, err := s.recordMaterialUsage(ctx, order)
	if err != nil {
		return nil, err
	}
	if len(shortItems) > 0 {
		if err := s.orderRepo.MarkBackordered(ctx, order.ID); err != nil {
			return nil, err
		}
		order.Backordered = true
	}

	if s.eventPublisher != nil {
		event := trade.NewOrderConfirmedEvent(order)
		if pubErr := s.eventPublisher.Publish(ctx, event); pubErr != nil {
			s.logger.Warn("Failed to publish order confirmed event",
				zap.String("order_id", order.ID.String()),
				zap.Error(pubErr))
		}
	}

	s.logger.Info("Order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.Bool("backordered", order.Backordered),
		zap.Int("short_items", len(shortItems)))

	return &ConfirmResult{
		OrderID:     order.ID,
		Status:      trade.OrderStatusConfirmed,
		Backordered: order.Backordered,
		ShortItems:  shortItems,
	}, nil
}

// recordMaterialUsage consumes stock for every ordered product with a
// bill of materials. Usage recording is idempotent per (order, item)
// pair, so a retried confirmation cannot decrement twice.
func (s *FulfillmentService) recordMaterialUsage(ctx context.Context, order *trade.Order) ([]uuid.UUID, error) {
	ref := inventory.UsageReference{Type: inventory.ReferenceTypeOrder, ID: order.ID}

	var shortItems []uuid.UUID
	for i := range order.Items {
		item := order.Items[i]
		materials, err := s.productRepo.FindMaterials(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		for _, material := range materials {
			needed := material.QuantityNeeded.Mul(decimal.NewFromInt(int64(item.Quantity)))
			result, err := s.usageRecorder.Record(ctx, ref, material.InventoryItemID, needed,
				fmt.Sprintf("order %s", order.ID))
			if err != nil {
				return nil, err
			}
			if result.Shortfall {
				shortItems = append(shortItems, material.InventoryItemID)
			}
		}
	}
	return shortItems, nil
}

func (s *FulfillmentService) markDelivery(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return true, nil
	}
	ttl := s.idempotencyCfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return s.idempotencyStore.MarkProcessed(ctx, deliveryKey(eventID), ttl)
}

func (s *FulfillmentService) unmarkDelivery(ctx context.Context, eventID string) {
	if eventID == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return
	}
	if err := s.idempotencyStore.Unmark(ctx, deliveryKey(eventID)); err != nil {
		s.logger.Warn("Failed to release idempotency key",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}

func deliveryKey(eventID string) string {
	return "payment:webhook:" + eventID
}
