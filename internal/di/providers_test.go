package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalrepo "StockLens/internal/repository"
	"StockLens/internal/service/yahoo"
	"StockLens/pkg/cache"
	"StockLens/pkg/config"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/metrics"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func TestProvide_DisabledInfrastructureIsNil(t *testing.T) {
	cfg := defaultConfig(t)

	producer, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, producer)

	ch, err := ProvideClickHouseClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, ch)

	store, err := ProvideCacheStore(cfg)
	require.NoError(t, err)
	assert.Nil(t, store)

	assert.IsType(t, internalrepo.NoopPublisher{}, ProvideSignalPublisher(cfg, nil))
}

func TestProvideCacheStore_Memory(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Cache.Enabled = true

	store, err := ProvideCacheStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.IsType(t, &cache.MemoryCache{}, store)
}

func TestProvideMarketData_Chain(t *testing.T) {
	cfg := defaultConfig(t)
	l := applogger.Nop()

	md := ProvideMarketData(cfg, nil, nil, metrics.Noop{}, l)
	assert.IsType(t, &yahoo.Client{}, md)

	store := cache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })
	md = ProvideMarketData(cfg, nil, store, metrics.Noop{}, l)
	assert.IsType(t, &internalrepo.CachedMarketData{}, md)
}

func TestProvideRateLimiter(t *testing.T) {
	cfg := defaultConfig(t)
	lim := ProvideRateLimiter(cfg)
	require.NotNil(t, lim)
	for i := 0; i < int(cfg.Server.RateLimit.Capacity); i++ {
		assert.True(t, lim.Allow("1.2.3.4"))
	}
	assert.False(t, lim.Allow("1.2.3.4"))

	cfg.Server.RateLimit.Enabled = false
	assert.Nil(t, ProvideRateLimiter(cfg))
}

func TestTechnicalConfig(t *testing.T) {
	tc := technicalConfig(defaultConfig(t))
	require.NoError(t, tc.Validate())
	assert.Equal(t, 27, tc.MinPoints())
}
