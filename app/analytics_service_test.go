package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchlens/adapters/memory"
	"switchlens/domain/stats"
	"switchlens/domain/survey"
	"switchlens/internal"
	"switchlens/internal/bayes"
	"switchlens/internal/bayescache"
	"switchlens/internal/config"
	"switchlens/internal/filter"
	"switchlens/internal/rates"
	"switchlens/internal/testkit"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Products = []survey.Product{survey.ProductMotor}
	cfg.TimeWindows = []int{24}
	return cfg
}

func fixtureDataset() *survey.Dataset {
	gen := testkit.NewGenerator(testkit.DefaultConfig())
	return gen.GenerateDataset()
}

func TestSmoothedRetentionCacheMissFallsBackToLive(t *testing.T) {
	ds := fixtureDataset()
	cfg := testConfig()
	service := NewAnalyticsService(cfg, bayescache.New()) // always-miss cache

	insurer := ds.Insurers()[0]
	p := filter.Params{Insurer: insurer, Product: survey.ProductMotor, TimeWindowMonths: 24}

	got := service.SmoothedRetention(ds, p)
	require.NotNil(t, got)

	// The fallback must agree with a direct smooth on the equivalent
	// filtered subset.
	marketParams := p
	marketParams.Insurer = ""
	market := filter.Apply(ds, marketParams)
	marketRate := rates.RetentionRate(market)
	require.NotNil(t, marketRate)
	segment := filter.Apply(ds, p)
	retained, total := rates.RetainedCount(segment)
	want := bayes.Smooth(retained, total, *marketRate, cfg.PriorStrength)

	assert.InDelta(t, want.PosteriorMean, got.PosteriorMean, 1e-12)
	assert.InDelta(t, want.CILower, got.CILower, 1e-12)
	assert.InDelta(t, want.CIUpper, got.CIUpper, 1e-12)
}

func TestSmoothedRetentionUsesCacheWhenUnfiltered(t *testing.T) {
	ds := fixtureDataset()
	cfg := testConfig()
	cache := bayescache.New()

	refresh := NewRefreshService(cfg, cache, nil, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, refresh.Rebuild(context.Background(), ds))
	require.NotZero(t, cache.Len())

	service := NewAnalyticsService(cfg, cache)
	insurer := ds.Insurers()[0]
	p := filter.Params{Insurer: insurer, Product: survey.ProductMotor, TimeWindowMonths: 24}

	cached := service.SmoothedRetention(ds, p)
	require.NotNil(t, cached)

	entry := cache.Lookup(insurer, survey.ProductMotor, 24)
	require.NotNil(t, entry)
	assert.Equal(t, entry.PosteriorMean, cached.PosteriorMean)

	// Cached and live paths agree: the cache is an optimization, not a
	// second source of truth.
	live := NewAnalyticsService(cfg, bayescache.New()).SmoothedRetention(ds, p)
	require.NotNil(t, live)
	assert.InDelta(t, live.PosteriorMean, cached.PosteriorMean, 1e-12)
}

func TestSmoothedRetentionBypassesCacheWithDemographicFilter(t *testing.T) {
	ds := fixtureDataset()
	cfg := testConfig()
	cache := bayescache.New()

	// Poison the cache: if the demographic-filtered path consulted it,
	// the poisoned value would leak through.
	insurer := ds.Insurers()[0]
	cache.Publish(bayescache.Snapshot{
		{Insurer: insurer, Product: survey.ProductMotor, TimeWindowMonths: 24}: {
			Insurer: insurer, Product: survey.ProductMotor, TimeWindowMonths: 24,
			PosteriorMean: -1,
		},
	})
	service := NewAnalyticsService(cfg, cache)

	p := filter.Params{
		Insurer: insurer, Product: survey.ProductMotor, TimeWindowMonths: 24,
		AgeBand: "25-34",
	}
	result := service.SmoothedRetention(ds, p)
	if result != nil {
		assert.GreaterOrEqual(t, result.PosteriorMean, 0.0)
	}

	// Without the filter the poisoned entry is served, proving the two
	// paths really differ.
	unfiltered := service.SmoothedRetention(ds, filter.Params{
		Insurer: insurer, Product: survey.ProductMotor, TimeWindowMonths: 24,
	})
	require.NotNil(t, unfiltered)
	assert.Equal(t, -1.0, unfiltered.PosteriorMean)
}

func TestSmoothedRetentionNoInsurerIsNil(t *testing.T) {
	service := NewAnalyticsService(testConfig(), bayescache.New())
	assert.Nil(t, service.SmoothedRetention(fixtureDataset(), filter.Params{Product: survey.ProductMotor}))
}

func TestGatedRateSuppressesThinSegments(t *testing.T) {
	cfg := testConfig()
	// A segment this small cannot clear the publishable threshold.
	gen := testkit.NewGenerator(testkit.GeneratorConfig{
		RespondentCount: 30,
		Product:         survey.ProductMotor,
		Insurers:        []string{"Alpha", "Beacon"},
		ShopperRate:     0.5,
		SwitcherRate:    0.2,
		StartYearMonth:  202401,
		Months:          12,
		Seed:            7,
	})
	ds := gen.GenerateDataset()
	service := NewAnalyticsService(cfg, bayescache.New())

	result := service.GatedRate(ds, rates.Shopper, filter.Params{
		Insurer: "Alpha", Product: survey.ProductMotor, TimeWindowMonths: 24,
	})
	assert.False(t, result.Suppression.CanShowInsurer)
	assert.Nil(t, result.Insurer)
	assert.NotEmpty(t, result.Suppression.Message)
	assert.False(t, result.Suppression.CanShowMarket) // 30 < market minimum
	assert.Nil(t, result.Market)
}

func TestGatedRateShowsPublishableSegments(t *testing.T) {
	cfg := testConfig()
	gen := testkit.NewGenerator(testkit.GeneratorConfig{
		RespondentCount: 600,
		Product:         survey.ProductMotor,
		Insurers:        []string{"Alpha", "Beacon"},
		ShopperRate:     0.5,
		SwitcherRate:    0.2,
		StartYearMonth:  202401,
		Months:          12,
		Seed:            7,
	})
	ds := gen.GenerateDataset()
	service := NewAnalyticsService(cfg, bayescache.New())

	result := service.GatedRate(ds, rates.Shopper, filter.Params{
		Insurer: "Alpha", Product: survey.ProductMotor, TimeWindowMonths: 24,
	})
	require.True(t, result.Suppression.CanShowInsurer)
	require.NotNil(t, result.Insurer)
	assert.Equal(t, result.Suppression.InsurerN, result.Insurer.N)
	require.True(t, result.Suppression.CanShowMarket)
	require.NotNil(t, result.Market)
	assert.Equal(t, stats.ConfidencePublishable, result.Confidence)
}

func TestRefreshRebuildPersistsThroughStore(t *testing.T) {
	ds := fixtureDataset()
	cfg := testConfig()
	cache := bayescache.New()
	store := memory.NewCacheStore()

	refresh := NewRefreshService(cfg, cache, store, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, refresh.Rebuild(context.Background(), ds))

	persisted, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cache.Len(), len(persisted))

	// A fresh process restores the same snapshot from the store.
	restoredCache := bayescache.New()
	restored := NewRefreshService(cfg, restoredCache, store, internal.NewLogger(internal.LogLevelError))
	restored.Restore(context.Background())
	assert.Equal(t, cache.Len(), restoredCache.Len())
}

func TestRefreshRestoreWithFailingStoreIsAlwaysMiss(t *testing.T) {
	cache := bayescache.New()
	refresh := NewRefreshService(testConfig(), cache, failingStore{}, internal.NewLogger(internal.LogLevelError))
	refresh.Restore(context.Background())
	assert.Zero(t, cache.Len())
}

func TestRefreshRebuildSurvivesPersistFailure(t *testing.T) {
	ds := fixtureDataset()
	cache := bayescache.New()
	refresh := NewRefreshService(testConfig(), cache, failingStore{}, internal.NewLogger(internal.LogLevelError))

	// Persist failure is logged and swallowed; the in-memory snapshot
	// still serves.
	require.NoError(t, refresh.Rebuild(context.Background(), ds))
	assert.NotZero(t, cache.Len())
}

type failingStore struct{}

func (failingStore) Replace(context.Context, []stats.CacheEntry) error {
	return assert.AnError
}

func (failingStore) LoadAll(context.Context) ([]stats.CacheEntry, error) {
	return nil, assert.AnError
}
