package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	partnerapp "github.com/printshop/backend/internal/application/partner"
	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderService handles guest checkout and the staff-side order
// lifecycle. Payment confirmation lives in FulfillmentService.
type OrderService struct {
	orderRepo      trade.OrderRepository
	productRepo    catalog.ProductRepository
	clients        *partnerapp.ClientService
	gateway        trade.PaymentGateway
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// OrderServiceConfig holds the dependencies of OrderService
type OrderServiceConfig struct {
	OrderRepo      trade.OrderRepository
	ProductRepo    catalog.ProductRepository
	Clients        *partnerapp.ClientService
	Gateway        trade.PaymentGateway
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(cfg OrderServiceConfig) *OrderService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:      cfg.OrderRepo,
		productRepo:    cfg.ProductRepo,
		clients:        cfg.Clients,
		gateway:        cfg.Gateway,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
	}
}

// Checkout resolves the client, snapshots unit prices from the catalog
// at this instant, creates a pending order, and asks the gateway for a
// payment preference keyed on the order id. A gateway failure leaves
// the order Pending with no external reference; the caller may retry.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("checkout needs at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, shared.NewValidationError("item quantity must be at least 1")
		}
	}

	client, err := s.clients.Resolve(ctx, req.Email, partnerapp.ClientDefaults{
		Name: req.Name,
		Type: partner.ClientType(req.ClientType),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]trade.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError(fmt.Sprintf("product %s", item.ProductID))
		}
		if !product.Active {
			return nil, shared.NewValidationError(
				fmt.Sprintf("product %q is not available", product.Name))
		}
		lines = append(lines, trade.OrderLine{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	order, err := trade.NewOrder(client.ID, lines)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	pref, err := s.gateway.CreatePreference(ctx, trade.PreferenceRequest{
		ExternalReference: trade.OrderReference(order.ID),
		Amount:            order.TotalAmount,
		Description:       fmt.Sprintf("Order %s", order.ID),
		PayerEmail:        client.Email,
	})
	if err != nil {
		s.logger.Warn("Payment preference creation failed, order stays pending",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, shared.NewExternalGatewayError("payment gateway is unavailable, please retry")
	}

	if err := order.AttachExternalReference(trade.OrderReference(order.ID)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.String("client_id", client.ID.String()),
		zap.String("total", order.TotalAmount.String()))

	return &CheckoutResponse{
		Order:       ToOrderResponse(order),
		RedirectURL: pref.RedirectURL,
	}, nil
}

// Get retrieves an order by ID
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List retrieves orders matching the filter
func (s *OrderService) List(ctx context.Context, filter shared.Filter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

// Cancel cancels a pending order. The transition is a conditional
// update on the current status, so a payment confirmation that lands
// after the read wins and the cancellation is refused.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}
	cancelled, err := s.orderRepo.CancelPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		current, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, shared.NewInvalidStateError(
			fmt.Sprintf("cannot cancel order in state %s", current.Status))
	}
	s.publishEvents(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Fulfill marks a confirmed order fulfilled. Like Cancel, the
// transition is guarded on the current status in the database.
func (s *OrderService) Fulfill(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Fulfill(); err != nil {
		return nil, err
	}
	fulfilled, err := s.orderRepo.FulfillConfirmed(ctx, id)
	if err != nil {
		return nil, err
	}
	if !fulfilled {
		current, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, shared.NewInvalidStateError(
			fmt.Sprintf("cannot fulfill order in state %s", current.Status))
	}
	s.publishEvents(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("aggregate_id", aggregate.GetID().String()),
			zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
