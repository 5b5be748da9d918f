package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"TradeForge/internal/domain/repository"
	domsvc "TradeForge/internal/domain/service"
	"TradeForge/internal/handler/api"
	icache "TradeForge/internal/service/cache"
	"TradeForge/internal/usecase"
	pkgcache "TradeForge/pkg/cache"
	pkgch "TradeForge/pkg/clickhouse"
	"TradeForge/pkg/config"
	xhttp "TradeForge/pkg/http"
	pkgkafka "TradeForge/pkg/kafka"
	applogger "TradeForge/pkg/logger"
	"TradeForge/pkg/queue"
)

// Deps carries everything the application lifecycle owns or starts.
type Deps struct {
	Config      *config.Config
	Logger      *applogger.Logger
	Ingest      *usecase.StreamIngest
	Consumer    *pkgkafka.Consumer
	BarsHandler *usecase.KafkaBarsHandler
	CH          *pkgch.Client
	Redis       *pkgcache.RedisCache
	Train       *usecase.TrainUseCase
	Backtest    *usecase.BacktestUseCase
	Bars        *usecase.BarsUseCase
	Scorer      domsvc.Scorer
	BarSource   repository.BarSource
	Broker      repository.Broker
	Journal     repository.Journal
	Publisher   repository.EventPublisher
	Metrics     repository.Metrics
}

// App encapsulates the entire application lifecycle.
type App struct {
	d          Deps
	httpServer *xhttp.Server
	jobs       *queue.RedisQueue
}

// New creates a new App instance with all dependencies.
func New(d Deps) *App {
	return &App{d: d}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := a.d.Config
	l := a.d.Logger

	handler := api.NewPipelineEchoHandler(l, a.d.Train, a.d.Backtest, a.d.Bars)

	// Async training jobs need Redis; without it /api/train stays sync only.
	if a.d.Redis != nil {
		a.jobs = queue.NewRedisQueue(l, &queue.QueueConfig{
			Workers:    2,
			QueueSize:  64,
			RetryLimit: 3,
			RetryDelay: 10 * time.Second,
		}, a.d.Redis.Client(), queue.ModeProducerConsumer, queue.WithKeyPrefix("tradeforge:jobs"))
		a.jobs.RegisterJob(usecase.NewTrainJob(a.d.Train, l))
		if err := a.jobs.Start(); err != nil {
			l.Error("job queue start error", applogger.Error(err))
		} else {
			a.jobs.StartRetryProcessor()
			handler.SetJobQueue(a.jobs)
		}
	}

	reports := api.NewReportsHandler(a.d.Backtest)
	reports.SetLogger(l)
	if cfg.Redis.Enabled {
		reports.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		reports.SetCache(icache.NewTTLCache())
	}

	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	a.registerExtraRoutes(reports)

	// Live ingestion: WebSocket -> pipeline -> Kafka.
	go func() {
		if err := a.d.Ingest.Start(ctx); err != nil {
			l.Error("stream ingest error", applogger.Error(err))
		}
	}()
	l.Info("stream ingest started", applogger.Strings("symbols", cfg.Stream.Symbols))

	// Persistence: Kafka -> ClickHouse.
	if a.d.Consumer != nil && a.d.BarsHandler != nil {
		a.d.Consumer.RegisterHandler(a.d.BarsHandler)
		go func() {
			if err := a.d.Consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.d.BarsHandler.Topic()))
	}

	if cfg.Agent.Enabled {
		if err := a.startAgents(ctx); err != nil {
			l.Error("agent start error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx, cancel)
}

// registerExtraRoutes mounts the net/http reporting surface and health
// probe on the shared Echo instance.
func (a *App) registerExtraRoutes(reports *api.ReportsHandler) {
	e := a.httpServer.Echo()
	e.GET("/api/v1/report", echo.WrapHandler(reports.Report()))
	e.GET("/api/v1/equity", echo.WrapHandler(reports.Equity()))
	e.GET("/api/v1/trades", echo.WrapHandler(reports.Trades()))
	e.GET("/healthz", func(c echo.Context) error {
		status := map[string]interface{}{
			"status": "ok",
			"stream": a.d.Ingest.IsConnected(),
		}
		if a.d.CH != nil {
			status["clickhouse"] = a.d.CH.Health(c.Request().Context()) == nil
		}
		return c.JSON(http.StatusOK, status)
	})
}

// startAgents launches one decision loop per configured symbol.
func (a *App) startAgents(ctx context.Context) error {
	cfg := a.d.Config
	for _, symbol := range cfg.Stream.Symbols {
		agent, err := usecase.NewAgent(usecase.AgentConfig{
			Symbol:      symbol,
			Lookback:    cfg.Agent.Lookback,
			Quantity:    cfg.Strategy.Quantity,
			ShortWindow: cfg.Strategy.ShortWindow,
			LongWindow:  cfg.Strategy.LongWindow,
			Model:       cfg.Strategy.Model,
			Confidence:  cfg.Strategy.Confidence,
		}, usecase.AgentDeps{
			Bars:      a.d.BarSource,
			Scorer:    a.d.Scorer,
			Broker:    a.d.Broker,
			Journal:   a.d.Journal,
			Publisher: a.d.Publisher,
			Metrics:   a.d.Metrics,
			Logger:    a.d.Logger,
		})
		if err != nil {
			return err
		}
		go func(sym string) {
			if err := agent.Run(ctx, cfg.Agent.Interval); err != nil && ctx.Err() == nil {
				a.d.Logger.Error("agent stopped", applogger.String("symbol", sym), applogger.Error(err))
			}
		}(symbol)
		a.d.Logger.Info("agent started", applogger.String("symbol", symbol))
	}
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context, cancel context.CancelFunc) error {
	l := a.d.Logger
	l.Info("shutting down...")
	cancel()

	if err := a.d.Ingest.Shutdown(ctx); err != nil {
		l.Warn("stream ingest stop error", applogger.Error(err))
	}

	shutdownCtx, cancelHTTP := context.WithTimeout(context.Background(), a.d.Config.Server.ShutdownTimeout)
	defer cancelHTTP()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.d.Consumer != nil {
		if err := a.d.Consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.jobs != nil {
		if err := a.jobs.Stop(shutdownCtx); err != nil {
			l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	// Publisher and ingestor share one producer; closing either closes it.
	if a.d.Publisher != nil {
		if err := a.d.Publisher.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.d.CH != nil {
		if err := a.d.CH.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.d.Redis != nil {
		if err := a.d.Redis.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
