package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load reads configuration from the given file path, overlays MARKIP_*
// environment variables, applies defaults and validates the result.
// An empty path loads from environment and defaults alone.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return unmarshal(v)
}

// LoadFromEnv builds a configuration from environment variables and
// defaults only. Useful for containerised deployments without a file.
func LoadFromEnv() (*Config, error) {
	return unmarshal(newViper())
}

// MustLoad is Load that panics on failure. Intended for main functions.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Watch reloads the file at path on change and invokes onChange with the
// newly validated configuration. Invalid revisions are reported through
// onError and the previous configuration stays in effect.
func Watch(path string, onChange func(*Config), onError func(error)) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		next, err := unmarshal(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
	return cfg, nil
}

// envKeys are the settings overridable through MARKIP_* environment
// variables. Viper only maps environment variables into Unmarshal for keys
// it already knows about, so each one is bound explicitly.
var envKeys = []string{
	"server.port", "server.mode",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode",
	"redis.addr", "redis.password",
	"kafka.brokers", "kafka.group_id", "kafka.ingest_topic", "kafka.events_topic",
	"milvus.address", "milvus.username", "milvus.password",
	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket",
	"oracle.api_key", "oracle.model", "oracle.embedding_model",
	"chunking.strategy", "chunking.auto_fallback",
	"extraction.mode", "extraction.passes", "extraction.max_workers",
	"extraction.remote_batch",
	"metrics.enabled",
	"log.level", "log.format",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MARKIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Boolean defaults live here so an explicit false in the file is
	// distinguishable from an unset field.
	v.SetDefault("chunking.auto_fallback", true)
	v.SetDefault("metrics.enabled", true)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
