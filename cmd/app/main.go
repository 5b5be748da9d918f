package main

import (
	"flag"
	"log"
	"os"

	"TradeForge/internal/di"
	"TradeForge/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s broker=%s symbols=%v", cfg.Environment, cfg.Broker.Mode, cfg.Stream.Symbols)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	log.Printf("kafka: connected brokers=%v bars=%s signals=%s", cfg.Kafka.Brokers, cfg.Kafka.BarsTopic, cfg.Kafka.SignalsTopic)

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
