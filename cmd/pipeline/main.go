package main

import (
	"context"
	"time"

	"cryptodwh/config"
	"cryptodwh/internal/pipeline"
	"cryptodwh/internal/staging"
	"cryptodwh/logger"
	"cryptodwh/pkg/coingecko"
	"cryptodwh/pkg/coinmarketcap"
	"cryptodwh/pkg/storage/warehouse"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// warehouse connection and idempotent table provisioning
	client, err := warehouse.Initialize(cfg.Postgres, cfg.Log.Environment, true)
	if err != nil {
		log.Fatal("failed to initialize warehouse", zap.Error(err))
	}
	defer client.Close()

	loc, err := time.LoadLocation(cfg.Pipeline.Timezone)
	if err != nil {
		log.Fatal("invalid pipeline timezone", zap.String("timezone", cfg.Pipeline.Timezone), zap.Error(err))
	}

	prices := coingecko.NewClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.Timeout)
	profiles := coinmarketcap.NewClient(
		cfg.CoinMarketCap.BaseURL,
		cfg.CoinMarketCap.APIKey,
		cfg.CoinMarketCap.Timeout,
		cfg.CoinMarketCap.MaxRetries,
	)

	stager := staging.New(
		prices, profiles,
		cfg.Pipeline.Coins, cfg.Pipeline.ProfileIDs,
		cfg.CoinGecko.RequestDelay, cfg.Pipeline.DataDir,
		log,
	)

	runner := &pipeline.Runner{
		Stager:    stager,
		Store:     client,
		Migrate:   client.Migrate,
		Sink:      &pipeline.LogSink{Logger: log},
		Logger:    log,
		DataDir:   cfg.Pipeline.DataDir,
		SymbolMap: cfg.Pipeline.SymbolMap,
	}

	if cfg.Pipeline.Schedule {
		sched := &pipeline.Scheduler{Runner: runner, Location: loc, Logger: log}
		sched.Start()
		select {}
	}

	day := pipeline.RunDate(loc)
	if _, err := runner.Run(context.Background(), day); err != nil {
		log.Fatal("pipeline run failed", zap.Time("date", day), zap.Error(err))
	}
}
