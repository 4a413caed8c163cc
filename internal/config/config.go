// Package config defines all configuration structures for the
// MarkIP-Intelligence platform. No I/O or parsing logic lives here, only
// plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the embedding cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	GroupID         string   `mapstructure:"group_id"`
	AutoOffsetReset string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries int      `mapstructure:"producer_retries"`
	IngestTopic     string   `mapstructure:"ingest_topic"`
	EventsTopic     string   `mapstructure:"events_topic"`
}

// MilvusConfig holds the vector-index connection parameters.
type MilvusConfig struct {
	Address        string        `mapstructure:"address"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"db_name"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// MinioConfig holds the source-document object-store parameters.
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// OracleConfig holds parameters for the external text-understanding service.
type OracleConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	EmbeddingDims   int           `mapstructure:"embedding_dims"`
	EmbedBatchLimit int           `mapstructure:"embed_batch_limit"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
}

// ChunkingConfig governs how source documents are split into sections.
type ChunkingConfig struct {
	// Strategy selects the chunking implementation: "headings" (regex
	// heading detection) or "vision" (oracle-guided structural analysis).
	Strategy string `mapstructure:"strategy"`

	// AutoFallback controls the no-headings policy: when true the pipeline
	// substitutes fixed-window chunks, when false it aborts with a
	// structural error.
	AutoFallback bool `mapstructure:"auto_fallback"`

	// WindowWords and OverlapWords parameterise the fixed-window fallback.
	WindowWords  int `mapstructure:"window_words"`
	OverlapWords int `mapstructure:"overlap_words"`
}

// ExtractionConfig governs the multi-pass extraction engine.
type ExtractionConfig struct {
	// Mode selects the reconciliation strategy: "targeted" (one pass per
	// section, deep merge) or "consensus" (redundant passes, majority
	// vote).
	Mode string `mapstructure:"mode"`

	// Passes is the number of redundant extraction attempts per unit of
	// context in consensus mode.
	Passes int `mapstructure:"passes"`

	// MaxWorkers caps fan-out concurrency; effective parallelism is
	// min(item count, MaxWorkers).
	MaxWorkers int `mapstructure:"max_workers"`

	// RemoteBatch switches the fan-out to the batched remote-execution
	// variant: all passes submitted as one oracle batch job.
	RemoteBatch       bool          `mapstructure:"remote_batch"`
	BatchPollInterval time.Duration `mapstructure:"batch_poll_interval"`
	BatchPollTimeout  time.Duration `mapstructure:"batch_poll_timeout"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config is the root configuration object for all binaries.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Milvus     MilvusConfig     `mapstructure:"milvus"`
	Minio      MinioConfig      `mapstructure:"minio"`
	Oracle     OracleConfig     `mapstructure:"oracle"`
	Chunking   ChunkingConfig   `mapstructure:"chunking"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        logging.Config   `mapstructure:"log"`
}

// Validate checks cross-field consistency. It is called by the loader after
// defaults are applied, so zero values for defaulted fields never reach it.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	switch c.Chunking.Strategy {
	case "headings", "vision":
	default:
		return fmt.Errorf("chunking.strategy must be \"headings\" or \"vision\", got %q", c.Chunking.Strategy)
	}
	if c.Chunking.OverlapWords >= c.Chunking.WindowWords {
		return fmt.Errorf("chunking.overlap_words (%d) must be smaller than chunking.window_words (%d)",
			c.Chunking.OverlapWords, c.Chunking.WindowWords)
	}
	switch c.Extraction.Mode {
	case "targeted", "consensus":
	default:
		return fmt.Errorf("extraction.mode must be \"targeted\" or \"consensus\", got %q", c.Extraction.Mode)
	}
	if c.Extraction.Passes < 1 {
		return fmt.Errorf("extraction.passes must be >= 1, got %d", c.Extraction.Passes)
	}
	if c.Extraction.MaxWorkers < 1 {
		return fmt.Errorf("extraction.max_workers must be >= 1, got %d", c.Extraction.MaxWorkers)
	}
	if c.Oracle.EmbedBatchLimit < 1 || c.Oracle.EmbedBatchLimit > 100 {
		return fmt.Errorf("oracle.embed_batch_limit must be in [1, 100], got %d", c.Oracle.EmbedBatchLimit)
	}
	return nil
}
