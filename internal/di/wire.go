//go:build wireinject
// +build wireinject

package di

import (
	"TradeForge/pkg/config"
	"TradeForge/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,

		// Repositories
		ProvideBarStore,
		ProvideBarSource,
		ProvideBarSink,
		ProvideJournal,
		ProvideModelStore,
		ProvideSignalPublisher,
		ProvideMarketStream,
		ProvideBroker,

		// Domain services
		ProvideCollector,
		ProvideLearner,
		ProvideScorer,

		// Use cases
		ProvideTrainUseCase,
		ProvideBacktestUseCase,
		ProvideBarsUseCase,
		ProvideKafkaBarsHandler,
		ProvideStreamIngest,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
