package cache

import (
	"context"
	"testing"
	"time"

	"tokenhealth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, hit, err := store.Get(ctx, "pepe", models.CategorySecurity, now)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, store.Put(ctx, "pepe", models.CategorySecurity, []byte(`{"honeypot":false}`), now, TTLSlowMetrics))

	entry, hit, err := store.Get(ctx, "pepe", models.CategorySecurity, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []byte(`{"honeypot":false}`), entry.Payload)
	assert.Equal(t, now, entry.LastUpdated)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Put(ctx, "pepe", models.CategoryLiquidity, []byte(`{}`), now, TTLLiveMetrics))

	// Still fresh exactly at the expiry instant.
	_, hit, err := store.Get(ctx, "pepe", models.CategoryLiquidity, now.Add(TTLLiveMetrics))
	require.NoError(t, err)
	assert.True(t, hit)

	_, hit, err = store.Get(ctx, "pepe", models.CategoryLiquidity, now.Add(TTLLiveMetrics+time.Nanosecond))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryStoreCategoriesAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Put(ctx, "pepe", models.CategorySecurity, []byte(`1`), now, TTLSlowMetrics))

	_, hit, err := store.Get(ctx, "pepe", models.CategoryCommunity, now)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Put(ctx, "pepe", models.CategorySecurity, []byte(`old`), now, TTLSlowMetrics))
	later := now.Add(2 * time.Hour)
	require.NoError(t, store.Put(ctx, "pepe", models.CategorySecurity, []byte(`new`), later, TTLSlowMetrics))

	entry, hit, err := store.Get(ctx, "pepe", models.CategorySecurity, later)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []byte(`new`), entry.Payload)
	assert.Equal(t, later, entry.LastUpdated)
}

func TestForCategory(t *testing.T) {
	assert.Equal(t, TTLSlowMetrics, ForCategory(models.CategorySecurity))
	assert.Equal(t, TTLLiveMetrics, ForCategory(models.CategoryLiquidity))
	assert.Equal(t, TTLSlowMetrics, ForCategory(models.CategoryTokenomics))
	assert.Equal(t, TTLSocialProfile, ForCategory(models.CategoryCommunity))
	assert.Equal(t, TTLGeneric, ForCategory(models.CategoryGeneric))
}
