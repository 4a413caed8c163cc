package config

import "time"

// ApplyDefaults fills every unset field of cfg with the platform default.
// It never overrides a value the operator has set explicitly.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "markip"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "markip"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 25
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "markip"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "markip-worker"
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.IngestTopic == "" {
		cfg.Kafka.IngestTopic = "markip.ingest.requests"
	}
	if cfg.Kafka.EventsTopic == "" {
		cfg.Kafka.EventsTopic = "markip.case.events"
	}

	if cfg.Milvus.Address == "" {
		cfg.Milvus.Address = "localhost:19530"
	}
	if cfg.Milvus.DBName == "" {
		cfg.Milvus.DBName = "default"
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = "case_chunks"
	}
	if cfg.Milvus.ConnectTimeout == 0 {
		cfg.Milvus.ConnectTimeout = 10 * time.Second
	}
	if cfg.Milvus.RequestTimeout == 0 {
		cfg.Milvus.RequestTimeout = 30 * time.Second
	}

	if cfg.Minio.Endpoint == "" {
		cfg.Minio.Endpoint = "localhost:9000"
	}
	if cfg.Minio.Bucket == "" {
		cfg.Minio.Bucket = "case-documents"
	}

	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "gemini-2.5-pro"
	}
	if cfg.Oracle.EmbeddingModel == "" {
		cfg.Oracle.EmbeddingModel = "embedding-001"
	}
	if cfg.Oracle.EmbeddingDims == 0 {
		cfg.Oracle.EmbeddingDims = 768
	}
	if cfg.Oracle.EmbedBatchLimit == 0 {
		cfg.Oracle.EmbedBatchLimit = 100
	}
	if cfg.Oracle.RequestTimeout == 0 {
		cfg.Oracle.RequestTimeout = 120 * time.Second
	}
	if cfg.Oracle.MaxRetries == 0 {
		cfg.Oracle.MaxRetries = 3
	}
	if cfg.Oracle.InitialBackoff == 0 {
		cfg.Oracle.InitialBackoff = 4 * time.Second
	}
	if cfg.Oracle.MaxBackoff == 0 {
		cfg.Oracle.MaxBackoff = 10 * time.Second
	}

	if cfg.Chunking.Strategy == "" {
		cfg.Chunking.Strategy = "headings"
	}
	if cfg.Chunking.WindowWords == 0 {
		cfg.Chunking.WindowWords = 500
	}
	if cfg.Chunking.OverlapWords == 0 {
		cfg.Chunking.OverlapWords = 50
	}

	if cfg.Extraction.Mode == "" {
		cfg.Extraction.Mode = "consensus"
	}
	if cfg.Extraction.Passes == 0 {
		cfg.Extraction.Passes = 5
	}
	if cfg.Extraction.MaxWorkers == 0 {
		cfg.Extraction.MaxWorkers = 8
	}
	if cfg.Extraction.BatchPollInterval == 0 {
		cfg.Extraction.BatchPollInterval = 30 * time.Second
	}
	if cfg.Extraction.BatchPollTimeout == 0 {
		cfg.Extraction.BatchPollTimeout = 30 * time.Minute
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Boolean defaults (chunking.auto_fallback, metrics.enabled) are registered
// through viper in the loader so an explicit false in the config file wins.
