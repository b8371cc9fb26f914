package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	partnerapp "github.com/printshop/backend/internal/application/partner"
	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// checkoutClientRepo serves a single known client by email
type checkoutClientRepo struct {
	client *partner.Client
}

func (r *checkoutClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	return r.client, nil
}

func (r *checkoutClientRepo) FindByEmail(ctx context.Context, email string) (*partner.Client, error) {
	if r.client != nil && r.client.Email == email {
		return r.client, nil
	}
	return nil, shared.ErrNotFound
}

func (r *checkoutClientRepo) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, int64, error) {
	return nil, 0, nil
}

func (r *checkoutClientRepo) Create(ctx context.Context, client *partner.Client) error {
	r.client = client
	return nil
}

func (r *checkoutClientRepo) Save(ctx context.Context, client *partner.Client) error { return nil }

func (r *checkoutClientRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *checkoutClientRepo) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

// stubGateway records the last preference request and answers with a
// canned preference or a canned error
type stubGateway struct {
	preference *trade.Preference
	err        error
	lastReq    *trade.PreferenceRequest
}

func (g *stubGateway) CreatePreference(ctx context.Context, req trade.PreferenceRequest) (*trade.Preference, error) {
	g.lastReq = &req
	if g.err != nil {
		return nil, g.err
	}
	return g.preference, nil
}

func (g *stubGateway) ParseWebhook(payload []byte, signature string) (*trade.WebhookEvent, error) {
	return nil, trade.ErrGatewayInvalidCallback
}

type orderFixture struct {
	orders   *MockOrderRepository
	products *MockProductRepository
	gateway  *stubGateway
	service  *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:   new(MockOrderRepository),
		products: new(MockProductRepository),
		gateway: &stubGateway{
			preference: &trade.Preference{PreferenceID: "pref-1", RedirectURL: "https://pay.test/session/pref-1"},
		},
	}
	f.service = NewOrderService(OrderServiceConfig{
		OrderRepo:   f.orders,
		ProductRepo: f.products,
		Clients:     partnerapp.NewClientService(&checkoutClientRepo{}, nil, nil),
		Gateway:     f.gateway,
	})
	return f
}

func checkoutRequest(productID uuid.UUID, quantity int) CheckoutRequest {
	return CheckoutRequest{
		Email:      "guest@example.com",
		Name:       "Guest Buyer",
		ClientType: string(partner.ClientTypeIndividual),
		Items:      []CheckoutItem{{ProductID: productID, Quantity: quantity}},
	}
}

func activeProduct(t *testing.T, price int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("vinyl banner", decimal.NewFromInt(price))
	require.NoError(t, err)
	return product
}

func TestOrderServiceCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots prices and attaches the gateway reference", func(t *testing.T) {
		f := newOrderFixture()
		product := activeProduct(t, 25)

		f.products.On("FindByIDs", ctx, []uuid.UUID{product.ID}).
			Return([]catalog.Product{*product}, nil)
		f.orders.On("Create", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)
		f.orders.On("Save", ctx, mock.MatchedBy(func(o *trade.Order) bool {
			return o.ExternalReference != nil && *o.ExternalReference == o.ID.String()
		})).Return(nil)

		resp, err := f.service.Checkout(ctx, checkoutRequest(product.ID, 2))
		require.NoError(t, err)

		assert.Equal(t, "https://pay.test/session/pref-1", resp.RedirectURL)
		assert.Equal(t, trade.OrderStatusPending, resp.Order.Status)
		assert.True(t, resp.Order.TotalAmount.Equal(decimal.NewFromInt(50)))
		require.Len(t, resp.Order.Items, 1)
		assert.True(t, resp.Order.Items[0].UnitPrice.Equal(decimal.NewFromInt(25)))

		require.NotNil(t, f.gateway.lastReq)
		assert.Equal(t, resp.Order.ID.String(), f.gateway.lastReq.ExternalReference)
		assert.True(t, f.gateway.lastReq.Amount.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, "guest@example.com", f.gateway.lastReq.PayerEmail)
		f.orders.AssertExpectations(t)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.service.Checkout(ctx, CheckoutRequest{Email: "guest@example.com", Name: "Guest"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		f.products.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})

	t.Run("zero quantity", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.service.Checkout(ctx, checkoutRequest(uuid.New(), 0))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newOrderFixture()
		productID := uuid.New()

		f.products.On("FindByIDs", ctx, []uuid.UUID{productID}).
			Return([]catalog.Product{}, nil)

		_, err := f.service.Checkout(ctx, checkoutRequest(productID, 1))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeNotFound, domainErr.Code)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("inactive product is not sellable", func(t *testing.T) {
		f := newOrderFixture()
		product := activeProduct(t, 25)
		product.Deactivate()

		f.products.On("FindByIDs", ctx, []uuid.UUID{product.ID}).
			Return([]catalog.Product{*product}, nil)

		_, err := f.service.Checkout(ctx, checkoutRequest(product.ID, 1))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure leaves the order pending without a reference", func(t *testing.T) {
		f := newOrderFixture()
		f.gateway.err = trade.ErrGatewayUnavailable
		product := activeProduct(t, 25)

		f.products.On("FindByIDs", ctx, []uuid.UUID{product.ID}).
			Return([]catalog.Product{*product}, nil)
		f.orders.On("Create", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		_, err := f.service.Checkout(ctx, checkoutRequest(product.ID, 1))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeExternalGateway, domainErr.Code)
		f.orders.AssertCalled(t, "Create", ctx, mock.AnythingOfType("*trade.Order"))
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestOrderServiceCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a pending order", func(t *testing.T) {
		f := newOrderFixture()
		order := pendingOrder(t, uuid.New(), 1)

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("CancelPending", ctx, order.ID).Return(true, nil)

		resp, err := f.service.Cancel(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusCancelled, resp.Status)
	})

	t.Run("confirmed order cannot be cancelled", func(t *testing.T) {
		f := newOrderFixture()
		order := pendingOrder(t, uuid.New(), 1)
		order.Status = trade.OrderStatusConfirmed

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.Cancel(ctx, order.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidState, domainErr.Code)
		f.orders.AssertNotCalled(t, "CancelPending", mock.Anything, mock.Anything)
	})

	t.Run("confirmation landing after the read wins the race", func(t *testing.T) {
		f := newOrderFixture()
		order := pendingOrder(t, uuid.New(), 1)
		confirmed := *order
		confirmed.Status = trade.OrderStatusConfirmed

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil).Once()
		f.orders.On("CancelPending", ctx, order.ID).Return(false, nil)
		f.orders.On("FindByID", ctx, order.ID).Return(&confirmed, nil).Once()

		_, err := f.service.Cancel(ctx, order.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidState, domainErr.Code)
		assert.Contains(t, domainErr.Message, "confirmed")
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestOrderServiceFulfill(t *testing.T) {
	ctx := context.Background()

	t.Run("fulfills a confirmed order", func(t *testing.T) {
		f := newOrderFixture()
		order := pendingOrder(t, uuid.New(), 1)
		order.Status = trade.OrderStatusConfirmed

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("FulfillConfirmed", ctx, order.ID).Return(true, nil)

		resp, err := f.service.Fulfill(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusFulfilled, resp.Status)
	})

	t.Run("pending order is not fulfillable", func(t *testing.T) {
		f := newOrderFixture()
		order := pendingOrder(t, uuid.New(), 1)

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.Fulfill(ctx, order.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidState, domainErr.Code)
		f.orders.AssertNotCalled(t, "FulfillConfirmed", mock.Anything, mock.Anything)
	})

	t.Run("cancellation landing after the read refuses fulfillment", func(t *testing.T) {
		f := newOrderFixture()
		order := pendingOrder(t, uuid.New(), 1)
		order.Status = trade.OrderStatusConfirmed
		cancelled := *order
		cancelled.Status = trade.OrderStatusCancelled

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil).Once()
		f.orders.On("FulfillConfirmed", ctx, order.ID).Return(false, nil)
		f.orders.On("FindByID", ctx, order.ID).Return(&cancelled, nil).Once()

		_, err := f.service.Fulfill(ctx, order.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidState, domainErr.Code)
		assert.Contains(t, domainErr.Message, "cancelled")
	})
}
