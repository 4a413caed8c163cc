package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "consensus", cfg.Extraction.Mode)
	assert.Equal(t, 5, cfg.Extraction.Passes)
	assert.Equal(t, "headings", cfg.Chunking.Strategy)
	assert.Equal(t, 500, cfg.Chunking.WindowWords)
	assert.Equal(t, 50, cfg.Chunking.OverlapWords)
	assert.Equal(t, 768, cfg.Oracle.EmbeddingDims)
	assert.Equal(t, 100, cfg.Oracle.EmbedBatchLimit)
	assert.Equal(t, 3, cfg.Oracle.MaxRetries)
	assert.Equal(t, 4*time.Second, cfg.Oracle.InitialBackoff)
	assert.Equal(t, 10*time.Second, cfg.Oracle.MaxBackoff)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Server.Port = 9090
	cfg.Extraction.Mode = "targeted"
	ApplyDefaults(&cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "targeted", cfg.Extraction.Mode)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown chunking strategy", func(c *Config) { c.Chunking.Strategy = "tables" }},
		{"overlap not smaller than window", func(c *Config) { c.Chunking.OverlapWords = 500 }},
		{"unknown extraction mode", func(c *Config) { c.Extraction.Mode = "hybrid" }},
		{"negative passes", func(c *Config) { c.Extraction.Passes = -1 }},
		{"embed batch limit too large", func(c *Config) { c.Oracle.EmbedBatchLimit = 250 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			ApplyDefaults(&cfg)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9191
chunking:
  strategy: vision
  auto_fallback: false
extraction:
  mode: targeted
  max_workers: 4
oracle:
  api_key: test-key
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "vision", cfg.Chunking.Strategy)
	assert.False(t, cfg.Chunking.AutoFallback)
	assert.Equal(t, "targeted", cfg.Extraction.Mode)
	assert.Equal(t, 4, cfg.Extraction.MaxWorkers)
	assert.Equal(t, "test-key", cfg.Oracle.APIKey)

	// untouched sections still get defaults
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 768, cfg.Oracle.EmbeddingDims)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
extraction:
  mode: nonsense
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MARKIP_SERVER_PORT", "7070")
	t.Setenv("MARKIP_EXTRACTION_PASSES", "3")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Extraction.Passes)
}

func TestBooleanDefaultsEnabled(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Chunking.AutoFallback)
	assert.True(t, cfg.Metrics.Enabled)
}
