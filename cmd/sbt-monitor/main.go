package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xiantools/sbt-sync/internal/client"
	"github.com/xiantools/sbt-sync/internal/config"
	"github.com/xiantools/sbt-sync/internal/store"
	"github.com/xiantools/sbt-sync/monitor"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg := config.Get()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	st, err := store.NewTraitStore(connectCtx, cfg.MongoURI, cfg.MongoDB, cfg.TraitsCollection, cfg.ProcessedCollection)
	cancel()
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}
	defer st.Close(context.Background())

	mon := monitor.New(monitor.Config{
		WSURL:        cfg.ChainWSURL,
		Contract:     cfg.ContractName,
		Rules:        monitor.DefaultRules(),
		RefreshEvery: config.GetHolderRefreshInterval(),
	}, client.NewGraphQLClient(cfg.GraphQLURL), st, logger)

	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("monitor failed", zap.Error(err))
	}
	logger.Info("monitor stopped")
}
