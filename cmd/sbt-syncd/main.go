package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xiantools/sbt-sync/internal/api"
	"github.com/xiantools/sbt-sync/internal/client"
	"github.com/xiantools/sbt-sync/internal/config"
	"github.com/xiantools/sbt-sync/internal/handler"
	"github.com/xiantools/sbt-sync/traits"
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

	bridge := client.NewBridgeClient(cfg.BridgeRPCURL)

	// Readiness latches on the first successful ping; a bridge that is still
	// starting up only delays the connect flow, it does not block serving.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bridge.Init(ctx); err != nil {
		logger.Warn("wallet bridge not reachable yet", zap.Error(err))
		go pingBridge(bridge)
	}
	cancel()

	go func() {
		<-bridge.Ready()
		logger.Info("wallet bridge ready")
	}()

	compare := client.NewCompareClient(cfg.CompareAPIBaseURL)
	chain := client.NewGraphQLClient(cfg.GraphQLURL)

	ctrl := traits.NewController(compare, bridge, traits.Options{
		Contract:     cfg.ContractName,
		UpdateMethod: cfg.UpdateMethod,
		StampLimit:   cfg.StampLimit,
		TraitKeys:    cfg.TraitKeys,
		ChainFields:  cfg.ChainFieldMap,
		Debounce:     config.GetUpdateDebounce(),
		RecheckDelay: config.GetRecheckDelay(),
	}, logger)

	router := api.SetupRouter(handler.NewTraitHandler(ctrl, bridge, chain, cfg.ContractName))

	logger.Info("sbt-syncd listening",
		zap.String("port", cfg.Port),
		zap.String("contract", cfg.ContractName))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// pingBridge retries the bridge status ping until readiness latches
func pingBridge(bridge *client.BridgeClient) {
	for {
		time.Sleep(5 * time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := bridge.Init(ctx)
		cancel()
		if err == nil {
			return
		}
	}
}
