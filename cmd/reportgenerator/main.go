package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/component"
	"github.com/reactome/gsa-orchestrator/internal/config"
	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/logger"
	"github.com/reactome/gsa-orchestrator/internal/notify"
	"github.com/reactome/gsa-orchestrator/internal/tracing"
	"github.com/reactome/gsa-orchestrator/internal/worker/reportgenerator"
)

func main() {
	logger.Init("reportgenerator")

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("loading config")
	}
	logger.Init(cfg.SERVICE_NAME)

	shutdownTracing := tracing.InitTracer(context.Background(), cfg.SERVICE_NAME, cfg.TRACE_URL)
	defer shutdownTracing()

	comps, err := component.New(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize backend components")
	}
	defer comps.Close()

	cacheCfg, err := config.GetRedisCacheConfig()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("loading cache TTL config")
	}
	statusTTL := time.Duration(cacheCfg.StatusTTLSeconds) * time.Second
	resultTTL := time.Duration(cacheCfg.ResultTTLSeconds) * time.Second
	datasetTTL := time.Duration(cacheCfg.DatasetTTLSeconds) * time.Second

	store := jobservice.NewStore(comps.Blackboard, comps.Storage, statusTTL, resultTTL, datasetTTL)
	sender := notify.NewLogSender()

	w := reportgenerator.New(store, comps.Broker, sender)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Log.Info().Msg("shutting down report generator")
	cancel()
}
