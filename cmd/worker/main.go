// The worker binary consumes ingestion requests from the queue and runs
// the document-to-case pipeline: fetch, chunk, extract, persist, index.
// It exposes health probes and metrics over HTTP but serves no API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/MarkIP-Intelligence/internal/application/ingestion"
	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/extraction"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/oracle/gemini"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/pdftext"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/MarkIP-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MarkIP-Intelligence/internal/interfaces/http/handlers"
)

const ingestLockTTL = 10 * time.Minute

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
	logger = logger.Named("worker")
	logger.Info("starting ingestion worker",
		logging.String("chunk_strategy", cfg.Chunking.Strategy),
		logging.String("extraction_mode", cfg.Extraction.Mode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	documents, err := minio.NewClient(cfg.Minio, logger)
	if err != nil {
		logger.Fatal("connect object store", logging.Err(err))
	}

	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	service := ingestion.NewService(ingestion.Deps{
		Documents:     minio.NewDocumentStore(documents, logger),
		Pages:         pdftext.NewExtractor(),
		Chunker:       buildChunker(cfg.Chunking, oracleClient, logger),
		OracleDocs:    oracleClient,
		Extractor:     buildExtractor(cfg, oracleClient, logger),
		Cases:         cases,
		Embedder:      embedder,
		Vectors:       vectors,
		Events:        producer,
		Lock:          redis.NewIngestLock(redisClient, ingestLockTTL),
		Metrics:       metrics,
		Logger:        logger,
		ChunkStrategy: cfg.Chunking.Strategy,
	})

	health := handlers.NewHealthHandler(map[string]handlers.Checker{
		"postgres": handlers.CheckerFunc(func(ctx context.Context) error { return pg.HealthCheck(ctx) }),
		"redis":    handlers.CheckerFunc(func(ctx context.Context) error { return redisClient.HealthCheck(ctx) }),
		"milvus":   handlers.CheckerFunc(func(ctx context.Context) error { return vectors.CheckHealth(ctx) }),
		"minio":    handlers.CheckerFunc(func(ctx context.Context) error { return documents.HealthCheck(ctx) }),
	})
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = collector.Handler()
	}
	probes := httpserver.NewServer(cfg.Server, httpserver.NewRouter(httpserver.RouterConfig{
		Health:         health,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		Logger:         logger,
	}), logger)
	go func() {
		if err := probes.Start(); err != nil {
			logger.Error("probe server failed", logging.Err(err))
		}
	}()

	consumer := kafka.NewConsumer(cfg.Kafka, logger)
	defer consumer.Close()

	if err := consumer.Run(ctx, service.Ingest); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", logging.Err(err))
	}

	logger.Info("shutting down")
	if err := probes.Stop(context.Background()); err != nil {
		logger.Error("probe server shutdown", logging.Err(err))
	}
	logger.Info("stopped")
}

// buildChunker assembles the configured primary chunker with the
// fixed-window fallback behind it.
func buildChunker(cfg config.ChunkingConfig, outline document.OutlineAnalyzer, logger logging.Logger) document.Chunker {
	var primary document.Chunker
	switch cfg.Strategy {
	case "vision":
		primary = document.NewVisionChunker(outline, logger)
	default:
		primary = document.NewHeadingChunker()
	}
	return &document.FallbackChunker{
		Primary:      primary,
		Window:       document.NewWindowChunker(cfg.WindowWords, cfg.OverlapWords),
		AutoFallback: cfg.AutoFallback,
	}
}

// buildExtractor selects the in-process fan-out engine or the remote
// batch variant.
func buildExtractor(cfg *config.Config, oracleClient *gemini.Client, logger logging.Logger) ingestion.CaseExtractor {
	opts := extraction.Options{
		Mode:           extraction.Mode(cfg.Extraction.Mode),
		Passes:         cfg.Extraction.Passes,
		MaxWorkers:     cfg.Extraction.MaxWorkers,
		MaxRetries:     cfg.Oracle.MaxRetries,
		InitialBackoff: cfg.Oracle.InitialBackoff,
		MaxBackoff:     cfg.Oracle.MaxBackoff,
	}
	if cfg.Extraction.RemoteBatch {
		runner, err := gemini.NewBatchClient(cfg.Oracle, cfg.Extraction, logger)
		if err != nil {
			logger.Fatal("init batch client", logging.Err(err))
		}
		return ingestion.NewBatchExtractor(extraction.NewBatchEngine(runner, opts, logger), logger)
	}
	return extraction.NewEngine(oracleClient, opts, logger)
}
