package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/domain/project"
	"github.com/printshop/backend/internal/domain/quote"
	"github.com/printshop/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectConversion_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	clientRepo := persistence.NewGormClientRepository(testDB.DB)
	quoteRepo := persistence.NewGormQuoteRepository(testDB.DB)
	projectRepo := persistence.NewGormProjectRepository(testDB.DB)
	ctx := context.Background()

	client, err := partner.NewClient("studio@example.com", "Studio", partner.ClientTypeCompany)
	require.NoError(t, err)
	require.NoError(t, clientRepo.Create(ctx, client))

	newQuote := func(t *testing.T) *quote.Quote {
		t.Helper()
		q, err := quote.NewQuote(client.ID, "banner for storefront", nil)
		require.NoError(t, err)
		require.NoError(t, quoteRepo.Create(ctx, q))
		return q
	}

	t.Run("a quote converts to at most one project", func(t *testing.T) {
		q := newQuote(t)

		const workers = 6
		var wg sync.WaitGroup
		results := make([]*project.Project, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p, err := project.NewProject(client.ID, "banner production", &q.ID, []project.ItemSnapshot{
					{Description: "banner", Quantity: 1},
				})
				if err != nil {
					return
				}
				created, err := projectRepo.CreateFromQuote(ctx, p)
				if err == nil {
					results[i] = created
				}
			}(i)
		}
		wg.Wait()

		var winner uuid.UUID
		for _, p := range results {
			require.NotNil(t, p)
			if winner == uuid.Nil {
				winner = p.ID
			}
			assert.Equal(t, winner, p.ID)
		}

		var count int64
		require.NoError(t, testDB.DB.Model(&project.Project{}).
			Where("quote_id = ?", q.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("winner carries the snapshotted items", func(t *testing.T) {
		q := newQuote(t)

		p, err := project.NewProject(client.ID, "sticker run", &q.ID, []project.ItemSnapshot{
			{Description: "die-cut stickers", Quantity: 500},
		})
		require.NoError(t, err)

		created, err := projectRepo.CreateFromQuote(ctx, p)
		require.NoError(t, err)

		found, err := projectRepo.FindByQuoteID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		require.Len(t, found.Items, 1)
		assert.Equal(t, 500, found.Items[0].Quantity)
	})
}
