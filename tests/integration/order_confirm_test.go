package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/domain/trade"
	"github.com/printshop/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderConfirmation_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	clientRepo := persistence.NewGormClientRepository(testDB.DB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	orderRepo := persistence.NewGormOrderRepository(testDB.DB)
	ctx := context.Background()

	client, err := partner.NewClient("buyer@example.com", "Buyer", partner.ClientTypeIndividual)
	require.NoError(t, err)
	require.NoError(t, clientRepo.Create(ctx, client))

	product, err := catalog.NewProduct("Business cards", decimal.NewFromInt(40))
	require.NoError(t, err)
	require.NoError(t, productRepo.Create(ctx, product))

	newPendingOrder := func(t *testing.T) *trade.Order {
		t.Helper()
		order, err := trade.NewOrder(client.ID, []trade.OrderLine{
			{ProductID: product.ID, Quantity: 2, UnitPrice: product.Price},
		})
		require.NoError(t, err)
		require.NoError(t, order.AttachExternalReference(trade.OrderReference(order.ID)))
		require.NoError(t, orderRepo.Create(ctx, order))
		return order
	}

	t.Run("pending to confirmed happens exactly once", func(t *testing.T) {
		order := newPendingOrder(t)

		transitioned, err := orderRepo.ConfirmPending(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, transitioned)

		again, err := orderRepo.ConfirmPending(ctx, order.ID)
		require.NoError(t, err)
		assert.False(t, again)

		found, err := orderRepo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusConfirmed, found.Status)
	})

	t.Run("concurrent confirmations have a single winner", func(t *testing.T) {
		order := newPendingOrder(t)

		const workers = 10
		var wg sync.WaitGroup
		wins := make(chan struct{}, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				transitioned, err := orderRepo.ConfirmPending(ctx, order.ID)
				if err == nil && transitioned {
					wins <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(wins)

		count := 0
		for range wins {
			count++
		}
		assert.Equal(t, 1, count)
	})

	t.Run("lookup by external reference", func(t *testing.T) {
		order := newPendingOrder(t)

		found, err := orderRepo.FindByExternalReference(ctx, order.ID.String())
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
		require.Len(t, found.Items, 1)
		assert.Equal(t, product.ID, found.Items[0].ProductID)
	})

	t.Run("concurrent client resolve creates one row", func(t *testing.T) {
		email := "race@example.com"

		const workers = 8
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c, err := partner.NewClient(email, "Race", partner.ClientTypeIndividual)
				if err != nil {
					return
				}
				// Losers get ErrAlreadyExists from the unique index.
				_ = clientRepo.Create(ctx, c)
			}()
		}
		wg.Wait()

		var count int64
		require.NoError(t, testDB.DB.Model(&partner.Client{}).
			Where("email = ?", email).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
