package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchlens/domain/stats"
	"switchlens/domain/survey"
)

func TestCacheStoreRoundTrip(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	empty, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	entries := []stats.CacheEntry{
		{Insurer: "Alpha", Product: survey.ProductMotor, TimeWindowMonths: 24, N: 60, RawRate: 0.9, PosteriorMean: 0.88},
		{Insurer: "Beacon", Product: survey.ProductHome, TimeWindowMonths: 12, N: 40, RawRate: 0.8, PosteriorMean: 0.81},
	}
	require.NoError(t, store.Replace(ctx, entries))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	// Replace is a full swap, never a merge.
	require.NoError(t, store.Replace(ctx, entries[:1]))
	loaded, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestCacheStoreCopiesOnWriteAndRead(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	entries := []stats.CacheEntry{{Insurer: "Alpha", Product: survey.ProductMotor, TimeWindowMonths: 24}}
	require.NoError(t, store.Replace(ctx, entries))

	entries[0].Insurer = "Mutated"
	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", loaded[0].Insurer)

	loaded[0].Insurer = "AlsoMutated"
	again, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", again[0].Insurer)
}
