package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jo@example.com", NormalizeEmail("  Jo@Example.COM "))
}

func TestNewClient(t *testing.T) {
	t.Run("normalizes and defaults", func(t *testing.T) {
		client, err := NewClient("Jo@Example.com", "", "")
		require.NoError(t, err)
		assert.Equal(t, "jo@example.com", client.Email)
		assert.Equal(t, "jo@example.com", client.Name)
		assert.Equal(t, ClientTypeIndividual, client.Type)
		assert.True(t, client.Active)
		assert.Len(t, client.GetDomainEvents(), 1)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := NewClient("not-an-email", "Jo", ClientTypeIndividual)
		assert.Error(t, err)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := NewClient("jo@example.com", "Jo", ClientType("agency"))
		assert.Error(t, err)
	})
}

func TestClientLifecycle(t *testing.T) {
	client, err := NewClient("jo@example.com", "Jo", ClientTypeIndividual)
	require.NoError(t, err)

	require.NoError(t, client.Update("Jo Studio", ClientTypeCompany))
	assert.Equal(t, "Jo Studio", client.Name)
	assert.Equal(t, ClientTypeCompany, client.Type)

	assert.Error(t, client.Update("", ClientTypeCompany))

	client.Deactivate()
	assert.False(t, client.Active)
	version := client.Version
	client.Deactivate()
	assert.Equal(t, version, client.Version)

	client.Activate()
	assert.True(t, client.Active)
}
