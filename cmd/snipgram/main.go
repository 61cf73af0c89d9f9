package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snipgram/internal/config"
	"github.com/kailas-cloud/snipgram/internal/db"
	dbRedis "github.com/kailas-cloud/snipgram/internal/db/redis"
	"github.com/kailas-cloud/snipgram/internal/domain"
	"github.com/kailas-cloud/snipgram/internal/lexicon"
	logpkg "github.com/kailas-cloud/snipgram/internal/logger"
	"github.com/kailas-cloud/snipgram/internal/metrics"
	datasetrepo "github.com/kailas-cloud/snipgram/internal/repository/dataset"
	"github.com/kailas-cloud/snipgram/internal/repository/simstore"
	snippetrepo "github.com/kailas-cloud/snipgram/internal/repository/snippet"
	topicrepo "github.com/kailas-cloud/snipgram/internal/repository/topic"
	chiTransport "github.com/kailas-cloud/snipgram/internal/transport/chi"
	datasetuc "github.com/kailas-cloud/snipgram/internal/usecase/dataset"
	"github.com/kailas-cloud/snipgram/internal/usecase/enrich"
	"github.com/kailas-cloud/snipgram/internal/usecase/gram"
	healthuc "github.com/kailas-cloud/snipgram/internal/usecase/health"
	"github.com/kailas-cloud/snipgram/internal/usecase/kernel"
	"github.com/kailas-cloud/snipgram/internal/usecase/simcache"
	"github.com/kailas-cloud/snipgram/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting snipgram",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("workers", cfg.Gram.Workers),
		zap.String("dispatch", cfg.Gram.Dispatch),
		zap.Bool("cache_disabled", cfg.Cache.Disabled),
		zap.String("export_engine", cfg.Export.Engine),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterKernelMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	path, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Dataset preparation failed", zap.Error(err))
	}
	logger.Info("Dataset exported", zap.String("path", path))
}

// run wires the pipeline and returns the exported dataset path.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) (string, error) {
	lex, err := lexicon.LoadFile(cfg.Input.LexiconPath)
	if err != nil {
		return "", err
	}
	table, err := topicrepo.ReadFile(cfg.Input.TopicsPath)
	if err != nil {
		return "", err
	}
	train, err := snippetrepo.ReadFile(cfg.Input.TrainPath, lex)
	if err != nil {
		return "", err
	}
	test, err := snippetrepo.ReadFile(cfg.Input.TestPath, lex)
	if err != nil {
		return "", err
	}
	logger.Info("Inputs loaded",
		zap.Int("senses", lex.Len()),
		zap.Int("topics", table.Len()),
		zap.Int("train", len(train)),
		zap.Int("test", len(test)),
	)

	// Oracle chain: lexicon -> shared memo (optional) -> topic pseudo-senses
	var oracle domain.Oracle = lex
	var store db.Store
	if cfg.SimilarityStore.Enabled() {
		store, err = connectStore(ctx, cfg.SimilarityStore, logger)
		if err != nil {
			return "", err
		}
		defer store.Close()
		oracle = simstore.New(oracle, store, cfg.SimilarityStore.KeyPrefix, metrics.SimilarityStoreTotal, logger)
	}
	oracle = lexicon.NewTopicAware(oracle, table)

	// Pass nil interface (not typed nil pointer) when no store is configured.
	var pinger healthuc.StorePinger
	if store != nil {
		pinger = store
	}
	shutdown := serveMetrics(cfg.Metrics.Addr, healthuc.New(pinger, lex), logger)
	defer shutdown()

	builder, err := gram.New(gram.Options{
		Workers:       cfg.Gram.Workers,
		BatchSize:     cfg.Gram.BatchSize,
		Dispatch:      cfg.Gram.Dispatch,
		ProgressEvery: cfg.Gram.ProgressEvery,
		NewKernel:     kernelFactory(oracle, cfg.Cache, logger),
		PairsTotal:    metrics.GramPairsTotal,
		BuildDuration: metrics.GramBuildDuration,
		WorkersGauge:  metrics.GramWorkers,
		Logger:        logger,
	})
	if err != nil {
		return "", fmt.Errorf("create gram builder: %w", err)
	}

	enricher := enrich.New(enrich.Options{
		Alpha:       cfg.Enrich.Alpha,
		Beta:        cfg.Enrich.Beta,
		TokensTotal: metrics.EnrichTopicTokensTotal,
		Logger:      logger,
	})

	svc := datasetuc.New(enricher, builder, datasetrepo.New(cfg.Export.Dir, cfg.Export.Engine), logger)

	ds, err := svc.Build(ctx, datasetuc.Input{Train: train, Test: test, Topics: table})
	if err != nil {
		return "", err
	}
	return svc.Serialize(ctx, ds)
}

// kernelFactory gives every worker its own kernel and similarity cache.
func kernelFactory(oracle domain.Oracle, cfg config.CacheConfig, logger *zap.Logger) gram.KernelFactory {
	return func(worker int) (gram.PairKernel, error) {
		if cfg.Disabled {
			return kernel.New(oracle, kernel.NewOracleScorer(oracle)), nil
		}
		cache, err := simcache.New(oracle, simcache.Options{
			Worker:      worker,
			MaxEntries:  cfg.MaxEntries,
			ReportEvery: cfg.ReportEvery,
			CacheTotal:  metrics.SimilarityCacheTotal,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		return kernel.New(oracle, cache), nil
	}
}

// connectStore opens the shared similarity memo; redis and valkey speak the same protocol.
func connectStore(ctx context.Context, cfg config.SimilarityStoreConfig, logger *zap.Logger) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create similarity store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("similarity store not ready: %w", err)
	}
	logger.Info("Connected to similarity store",
		zap.String("driver", cfg.Driver),
		zap.Strings("addrs", cfg.Addrs),
	)
	return store, nil
}

// serveMetrics starts the operational endpoint when addr is set and returns its shutdown func.
func serveMetrics(addr string, health *healthuc.Service, logger *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(health, nil, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during metrics server shutdown", zap.Error(err))
		}
	}
}
