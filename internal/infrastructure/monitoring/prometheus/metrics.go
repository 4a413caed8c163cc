package prometheus

// AppMetrics holds every metric the platform emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Ingestion pipeline
	IngestRunsTotal     CounterVec
	IngestDuration      HistogramVec
	IngestChunks        HistogramVec
	ChunkFallbacksTotal CounterVec

	// Oracle calls
	OracleCallsTotal   CounterVec
	OracleCallDuration HistogramVec
	OracleRetriesTotal CounterVec

	// Extraction engine
	ExtractionPassesTotal     CounterVec
	ExtractionViolationsTotal CounterVec

	// Embeddings and vector index
	EmbeddingCacheTotal CounterVec
	VectorUpsertsTotal  CounterVec
	VectorSearchesTotal CounterVec

	// Predictions
	PredictionsTotal    CounterVec
	PredictionDuration  HistogramVec
	SimilarityCallsTotal CounterVec
}

var (
	httpDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	ingestDurationBuckets    = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}
	oracleDurationBuckets    = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	chunkCountBuckets        = []float64{1, 2, 4, 6, 8, 12, 20, 40}
	predictionDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// NewAppMetrics registers the full metric set on the collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"HTTP requests by method, path and status.", "method", "path", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency.", httpDurationBuckets, "method", "path"),

		IngestRunsTotal: c.RegisterCounter("ingest_runs_total",
			"Ingestion runs by outcome.", "outcome"),
		IngestDuration: c.RegisterHistogram("ingest_duration_seconds",
			"End-to-end ingestion run duration.", ingestDurationBuckets, "outcome"),
		IngestChunks: c.RegisterHistogram("ingest_chunks",
			"Chunks produced per document.", chunkCountBuckets, "strategy"),
		ChunkFallbacksTotal: c.RegisterCounter("chunk_fallbacks_total",
			"Documents that fell back to fixed-window chunking."),

		OracleCallsTotal: c.RegisterCounter("oracle_calls_total",
			"Oracle calls by operation and result.", "operation", "result"),
		OracleCallDuration: c.RegisterHistogram("oracle_call_duration_seconds",
			"Oracle call latency by operation.", oracleDurationBuckets, "operation"),
		OracleRetriesTotal: c.RegisterCounter("oracle_retries_total",
			"Oracle retry attempts by operation."),

		ExtractionPassesTotal: c.RegisterCounter("extraction_passes_total",
			"Extraction passes by mode and result.", "mode", "result"),
		ExtractionViolationsTotal: c.RegisterCounter("extraction_violations_total",
			"Schema violations in reconciled documents."),

		EmbeddingCacheTotal: c.RegisterCounter("embedding_cache_total",
			"Embedding cache lookups by result.", "result"),
		VectorUpsertsTotal: c.RegisterCounter("vector_upserts_total",
			"Chunk vectors upserted by result.", "result"),
		VectorSearchesTotal: c.RegisterCounter("vector_searches_total",
			"Vector similarity searches by result.", "result"),

		PredictionsTotal: c.RegisterCounter("predictions_total",
			"Case outcome predictions by result.", "result"),
		PredictionDuration: c.RegisterHistogram("prediction_duration_seconds",
			"Prediction request latency.", predictionDurationBuckets),
		SimilarityCallsTotal: c.RegisterCounter("similarity_calls_total",
			"Similarity computations by dimension.", "dimension"),
	}
}

// NewNopMetrics returns a metric set whose members all discard writes,
// for tests and tools that do not export metrics.
func NewNopMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:         noopCounterVec{},
		HTTPRequestDuration:       noopHistogramVec{},
		IngestRunsTotal:           noopCounterVec{},
		IngestDuration:            noopHistogramVec{},
		IngestChunks:              noopHistogramVec{},
		ChunkFallbacksTotal:       noopCounterVec{},
		OracleCallsTotal:          noopCounterVec{},
		OracleCallDuration:        noopHistogramVec{},
		OracleRetriesTotal:        noopCounterVec{},
		ExtractionPassesTotal:     noopCounterVec{},
		ExtractionViolationsTotal: noopCounterVec{},
		EmbeddingCacheTotal:       noopCounterVec{},
		VectorUpsertsTotal:        noopCounterVec{},
		VectorSearchesTotal:       noopCounterVec{},
		PredictionsTotal:          noopCounterVec{},
		PredictionDuration:        noopHistogramVec{},
		SimilarityCallsTotal:      noopCounterVec{},
	}
}
