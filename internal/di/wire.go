//go:build wireinject
// +build wireinject

package di

import (
	"StockLens/pkg/config"
	"StockLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideCacheStore,

		// Repositories and upstream services
		ProvideMarketData,
		ProvideNewsProvider,
		ProvideNarrator,
		ProvideSignalPublisher,
		ProvideRateLimiter,

		// Use cases
		ProvideStockUseCase,
		ProvideSentimentUseCase,

		// HTTP and application server
		ProvideStockHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
