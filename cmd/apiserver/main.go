// The apiserver binary serves the similarity, prediction and case lookup
// API. Ingestion itself runs in the worker binary; this process only
// enqueues ingestion requests.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/MarkIP-Intelligence/internal/application/prediction"
	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/oracle/gemini"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/search/milvus"
	httpserver "github.com/turtacn/MarkIP-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MarkIP-Intelligence/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("apiserver")
	logger.Info("starting api server", logging.Int("port", cfg.Server.Port))

	ctx := context.Background()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "markip",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		logger.Fatal("init metrics", logging.Err(err))
	}
	metrics := prometheus.NewAppMetrics(collector)

	pg, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("connect postgres", logging.Err(err))
	}
	defer pg.Close()
	if err := pg.Migrate(); err != nil {
		logger.Fatal("run migrations", logging.Err(err))
	}
	cases := postgres.NewCaseRepository(pg.Pool(), logger)

	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("connect redis", logging.Err(err))
	}
	defer redisClient.Close()

	oracleClient, err := gemini.NewClient(ctx, cfg.Oracle, logger)
	if err != nil {
		logger.Fatal("init oracle client", logging.Err(err))
	}
	defer oracleClient.Close()

	embeddingCache := redis.NewEmbeddingCache(redisClient, cfg.Oracle.EmbeddingModel, logger)
	embedder := redis.NewCachedEmbedder(embeddingCache, oracleClient)

	vectors, err := milvus.NewClient(cfg.Milvus, logger)
	if err != nil {
		logger.Fatal("connect milvus", logging.Err(err))
	}
	defer vectors.Close()
	if err := vectors.EnsureChunkCollection(ctx, embedder.Dimensions()); err != nil {
		logger.Fatal("ensure vector collection", logging.Err(err))
	}

	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	predictor := prediction.NewService(oracleClient, embedder, vectors, cases, prediction.Options{}, metrics, logger)

	health := handlers.NewHealthHandler(map[string]handlers.Checker{
		"postgres": handlers.CheckerFunc(func(ctx context.Context) error { return pg.HealthCheck(ctx) }),
		"redis":    handlers.CheckerFunc(func(ctx context.Context) error { return redisClient.HealthCheck(ctx) }),
		"milvus":   handlers.CheckerFunc(func(ctx context.Context) error { return vectors.CheckHealth(ctx) }),
	})

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = collector.Handler()
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Similarity:     handlers.NewSimilarityHandler(predictor),
		Prediction:     handlers.NewPredictionHandler(predictor),
		Cases:          handlers.NewCaseHandler(cases, producer),
		Health:         health,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		Logger:         logger,
	})
	srv := httpserver.NewServer(cfg.Server, router, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("http server failed", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("shutdown", logging.Err(err))
	}
	logger.Info("stopped")
}
