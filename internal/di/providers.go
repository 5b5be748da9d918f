package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradeForge/internal/broker"
	"TradeForge/internal/collector"
	"TradeForge/internal/domain/repository"
	domsvc "TradeForge/internal/domain/service"
	"TradeForge/internal/learner"
	mid "TradeForge/internal/middleware"
	internalrepo "TradeForge/internal/repository"
	"TradeForge/internal/service/stream"
	"TradeForge/internal/usecase"
	pkgcache "TradeForge/pkg/cache"
	pkgch "TradeForge/pkg/clickhouse"
	"TradeForge/pkg/config"
	pkgkafka "TradeForge/pkg/kafka"
	applogger "TradeForge/pkg/logger"
	"TradeForge/pkg/metrics"
	"TradeForge/pkg/server"
)

// ProvideLogger creates the application logger. Development gets console
// output, everything else JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	return applogger.New(lc)
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// bar and journal schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const barTable = " (ts DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, volume Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, ts)"
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS tradeforge",
		"CREATE TABLE IF NOT EXISTS tradeforge.bars_1m" + barTable,
		"CREATE TABLE IF NOT EXISTS tradeforge.bars_1h" + barTable,
		"CREATE TABLE IF NOT EXISTS tradeforge.bars_1d" + barTable,
		"CREATE TABLE IF NOT EXISTS tradeforge.fills (fill_id String, ts DateTime, symbol String, side String, quantity Float64, price Float64) ENGINE=MergeTree ORDER BY (symbol, ts)",
		"CREATE TABLE IF NOT EXISTS tradeforge.predictions (ts DateTime, symbol String, score Float64, signal Int8) ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache connects to Redis when enabled. A nil return means the
// in-memory fallback is used and async features stay off.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideCacheService layers a memory cache over Redis when available,
// memory-only otherwise. Model artifacts are read far more often than
// written, so the L1 pays for itself on every scoring call.
func ProvideCacheService(rc *pkgcache.RedisCache) pkgcache.Service {
	if rc != nil {
		return pkgcache.NewLayeredCache(rc)
	}
	return pkgcache.NewMemoryCache()
}

// ProvideModelStore creates the versioned model artifact store.
func ProvideModelStore(c pkgcache.Service) repository.ModelStore {
	return internalrepo.NewCacheModelStore(c)
}

// ProvideBarStore creates the ClickHouse bar repository.
func ProvideBarStore(ch *pkgch.Client, l *applogger.Logger) *internalrepo.CHBarStore {
	store := internalrepo.NewCHBarStore(ch)
	store.SetLogger(l)
	return store
}

// ProvideBarSource exposes the bar store read side.
func ProvideBarSource(store *internalrepo.CHBarStore) repository.BarSource { return store }

// ProvideBarSink exposes the bar store write side.
func ProvideBarSink(store *internalrepo.CHBarStore) repository.BarSink { return store }

// ProvideJournal creates the fill and prediction journal.
func ProvideJournal(ch *pkgch.Client, l *applogger.Logger) repository.Journal {
	return internalrepo.NewCHJournal(ch, l)
}

// ProvideSignalPublisher creates the Kafka signal publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideCollector builds the historical collector: CoinGecko primary with
// synthetic fallback, writing through to ClickHouse.
func ProvideCollector(sink repository.BarSink, m repository.Metrics, l *applogger.Logger) domsvc.Collector {
	return collector.New(collector.NewCoinGecko(l), sink, m, l)
}

// ProvideLearner creates the in-process model registry.
func ProvideLearner(cfg *config.Config, l *applogger.Logger) *learner.Learner {
	params := learner.DefaultTrainParams()
	if cfg.Training.Splits > 0 {
		params.Splits = cfg.Training.Splits
	}
	return learner.New(learner.NewStore(), params, l)
}

// ProvideScorer exposes the learner's scoring side.
func ProvideScorer(lr *learner.Learner) domsvc.Scorer { return lr }

// ProvideTrainUseCase creates the training use case.
func ProvideTrainUseCase(
	c domsvc.Collector,
	lr *learner.Learner,
	store repository.ModelStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.TrainUseCase {
	return usecase.NewTrainUseCase(c, lr, store, m, l)
}

// ProvideBacktestUseCase creates the backtest use case.
func ProvideBacktestUseCase(
	c domsvc.Collector,
	scorer domsvc.Scorer,
	journal repository.Journal,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.BacktestUseCase {
	return usecase.NewBacktestUseCase(usecase.BacktestDeps{
		Collector:   c,
		Scorer:      scorer,
		Journal:     journal,
		Metrics:     m,
		InitialCash: cfg.Strategy.InitialCash,
		ShortWindow: cfg.Strategy.ShortWindow,
		LongWindow:  cfg.Strategy.LongWindow,
		Logger:      l,
	})
}

// ProvideBarsUseCase creates the bar retrieval use case.
func ProvideBarsUseCase(source repository.BarSource) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(source)
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(sink repository.BarSink, m repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	tf := repository.NormalizeTimeframe(cfg.Stream.Interval)
	return usecase.NewKafkaBarsHandler(cfg.Kafka.BarsTopic, sink, tf, m)
}

// ProvideMarketStream creates the exchange WebSocket stream.
func ProvideMarketStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	return stream.New(
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.Interval,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		l,
	)
}

// ProvideBroker selects the execution backend by configured mode.
func ProvideBroker(cfg *config.Config, l *applogger.Logger) repository.Broker {
	if cfg.Broker.Mode == "live" {
		return broker.NewLive(cfg.Broker.APIKey, cfg.Broker.APISecret, cfg.Broker.Testnet, l)
	}
	return broker.NewPaper(cfg.Strategy.InitialCash, l)
}

// ProvideStreamIngest wires stream, realtime pipeline and Kafka ingestor.
func ProvideStreamIngest(
	ms repository.MarketStream,
	producer *pkgkafka.Producer,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.StreamIngest {
	ingestor := usecase.NewBarIngestor(producer, cfg.Kafka.BarsTopic, m)
	pipe := mid.NewRealtimePipeline(ingestor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewStreamIngest(ms, ingestor, m, pipe, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	ingest *usecase.StreamIngest,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
	rc *pkgcache.RedisCache,
	train *usecase.TrainUseCase,
	backtest *usecase.BacktestUseCase,
	bars *usecase.BarsUseCase,
	scorer domsvc.Scorer,
	barSource repository.BarSource,
	brk repository.Broker,
	journal repository.Journal,
	publisher repository.EventPublisher,
	m repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(server.Deps{
		Config:      cfg,
		Logger:      l,
		Ingest:      ingest,
		Consumer:    consumer,
		BarsHandler: kh,
		CH:          chClient,
		Redis:       rc,
		Train:       train,
		Backtest:    backtest,
		Bars:        bars,
		Scorer:      scorer,
		BarSource:   barSource,
		Broker:      brk,
		Journal:     journal,
		Publisher:   publisher,
		Metrics:     m,
	})
}
