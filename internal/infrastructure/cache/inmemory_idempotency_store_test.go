package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkProcessedFirstWins(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh)
}

func TestMarkProcessedExpiredEntryIsReusable(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "evt-2", time.Nanosecond)
	require.NoError(t, err)
	assert.True(t, fresh)

	time.Sleep(5 * time.Millisecond)

	fresh, err = store.MarkProcessed(ctx, "evt-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestUnmarkAllowsRetry(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "evt-3", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	require.NoError(t, store.Unmark(ctx, "evt-3"))

	fresh, err = store.MarkProcessed(ctx, "evt-3", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestCleanupRemovesExpiredEntries(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "evt-4", time.Nanosecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "evt-5", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestCloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
