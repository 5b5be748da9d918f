// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"TradeForge/pkg/config"
	"TradeForge/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	marketStream := ProvideMarketStream(cfg, logger)
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	metrics := ProvideMetrics()
	streamIngest := ProvideStreamIngest(marketStream, producer, metrics, cfg, logger)
	consumer, err := ProvideKafkaConsumer(cfg)
	if err != nil {
		return nil, err
	}
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	chBarStore := ProvideBarStore(client, logger)
	barSink := ProvideBarSink(chBarStore)
	kafkaBarsHandler := ProvideKafkaBarsHandler(barSink, metrics, cfg)
	redisCache, err := ProvideRedisCache(cfg)
	if err != nil {
		return nil, err
	}
	collector := ProvideCollector(barSink, metrics, logger)
	learner := ProvideLearner(cfg, logger)
	service := ProvideCacheService(redisCache)
	modelStore := ProvideModelStore(service)
	trainUseCase := ProvideTrainUseCase(collector, learner, modelStore, metrics, logger)
	scorer := ProvideScorer(learner)
	journal := ProvideJournal(client, logger)
	backtestUseCase := ProvideBacktestUseCase(collector, scorer, journal, metrics, cfg, logger)
	barSource := ProvideBarSource(chBarStore)
	barsUseCase := ProvideBarsUseCase(barSource)
	broker := ProvideBroker(cfg, logger)
	eventPublisher := ProvideSignalPublisher(producer, cfg)
	app := ProvideApp(cfg, logger, streamIngest, consumer, kafkaBarsHandler, client, redisCache, trainUseCase, backtestUseCase, barsUseCase, scorer, barSource, broker, journal, eventPublisher, metrics)
	return app, nil
}
