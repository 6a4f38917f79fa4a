//go:build wireinject
// +build wireinject

package di

import (
	"CryptoView/pkg/config"
	"CryptoView/pkg/server"

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
		ProvideRedisCache,
		ProvideCacheService,
		ProvideEntryCache,
		ProvideClickHouseClient,

		// Repositories and upstream clients
		ProvideMarketData,
		ProvideAnalysisGenerator,
		ProvideEventPublisher,
		ProvideSnapshotRecorder,

		// Use cases
		ProvideRoster,
		ProvideAnalysisViewers,
		ProvideSearchOptions,
		ProvideSearchSessions,

		// Transport
		ProvideHub,
		ProvideLimiter,
		ProvideHandler,
		ProvideHTTPServer,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
