package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("rounds the price and starts active", func(t *testing.T) {
		p, err := NewProduct("vinyl banner", decimal.NewFromFloat(24.999))
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(25)))
		assert.True(t, p.Active)
		assert.Empty(t, p.Materials)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := NewProduct("", decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := NewProduct("banner", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestAddMaterial(t *testing.T) {
	p, err := NewProduct("banner", decimal.NewFromInt(25))
	require.NoError(t, err)

	itemID := uuid.New()
	require.NoError(t, p.AddMaterial(itemID, decimal.NewFromFloat(1.5)))
	require.Len(t, p.Materials, 1)
	assert.Equal(t, p.ID, p.Materials[0].ProductID)

	t.Run("duplicate inventory item", func(t *testing.T) {
		assert.Error(t, p.AddMaterial(itemID, decimal.NewFromInt(2)))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		assert.Error(t, p.AddMaterial(uuid.New(), decimal.Zero))
	})

	t.Run("missing inventory item", func(t *testing.T) {
		assert.Error(t, p.AddMaterial(uuid.Nil, decimal.NewFromInt(1)))
	})
}

func TestProductLifecycle(t *testing.T) {
	p, err := NewProduct("banner", decimal.NewFromInt(25))
	require.NoError(t, err)

	require.NoError(t, p.UpdatePrice(decimal.NewFromFloat(29.995)))
	assert.True(t, p.Price.Equal(decimal.NewFromInt(30)))
	assert.Error(t, p.UpdatePrice(decimal.NewFromInt(-5)))

	p.Deactivate()
	assert.False(t, p.Active)
	version := p.Version
	p.Deactivate()
	assert.Equal(t, version, p.Version)

	p.Activate()
	assert.True(t, p.Active)
}
