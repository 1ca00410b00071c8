package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/api"
	"github.com/reactome/gsa-orchestrator/internal/component"
	"github.com/reactome/gsa-orchestrator/internal/config"
	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/logger"
	"github.com/reactome/gsa-orchestrator/internal/methodcatalog"
	"github.com/reactome/gsa-orchestrator/internal/notify"
	"github.com/reactome/gsa-orchestrator/internal/searchindex"
	"github.com/reactome/gsa-orchestrator/internal/tracing"
)

func main() {
	logger.Init("api")

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

	queueCfg, err := config.GetNatsQueueConfig()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("loading queue config")
	}
	index := searchindex.New(methodcatalog.Examples, nil, nil)

	timeouts, err := config.GetTimeoutConfig()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("loading timeout config")
	}
	progressInterval := time.Duration(timeouts.ProgressUpdateMinIntervalMS) * time.Millisecond

	server := api.NewServer(api.Config{
		Store:           store,
		Broker:          comps.Broker,
		Index:           index,
		MaxMessageTries: queueCfg.MaxMessageTries,
		LoadCacheTTL:    datasetTTL,
		AdmissionQueue:  cfg.ADMISSION_QUEUE_CAPACITY,
		RequestTimeout:  60 * time.Second,
	})

	notifyCfg, err := config.GetNotifyConfig()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("loading notify config")
	}

	sweeper := jobservice.NewSweeper(store, progressInterval,
		time.Duration(timeouts.MaxWorkerTimeoutSeconds)*time.Second,
		time.Duration(timeouts.LoadingMaxTimeoutSeconds)*time.Second,
		notify.NewLogSender(), notifyCfg.ErrorMailAddress)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)
	defer stopSweeper()

	srv := &http.Server{
		Addr:              cfg.HTTP_ADDR,
		Handler:           server.Router(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log.Info().Str("addr", cfg.HTTP_ADDR).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("http server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Log.Info().Msg("shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
