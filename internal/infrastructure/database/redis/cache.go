package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// EmbeddingCache memoises text embeddings keyed by model and content hash.
// Re-ingesting a document therefore re-embeds only chunks whose text
// actually changed.
type EmbeddingCache struct {
	client *Client
	model  string
	logger logging.Logger
}

func NewEmbeddingCache(client *Client, model string, logger logging.Logger) *EmbeddingCache {
	return &EmbeddingCache{client: client, model: model, logger: logger.Named("embcache")}
}

// Embedder is the compute source for cache misses.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GetOrCompute returns one vector per input text, reading cached entries
// and embedding only the misses. Cache read or write failures degrade to
// computing; they never fail the call.
func (c *EmbeddingCache) GetOrCompute(ctx context.Context, texts []string, embedder Embedder) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.cacheKey(text)
	}
	cached, err := c.client.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("embedding cache read failed, computing all", logging.Err(err))
		cached = make([]interface{}, len(texts))
	}
	for i := range texts {
		if raw, ok := cached[i].(string); ok {
			var vec []float32
			if err := json.Unmarshal([]byte(raw), &vec); err == nil && len(vec) > 0 {
				vectors[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	computed, err := embedder.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missTexts) {
		return nil, apperrors.Newf(apperrors.ErrCodeEmbeddingFailed,
			"embedder returned %d vectors for %d texts", len(computed), len(missTexts))
	}

	pipe := c.client.rdb.Pipeline()
	for j, i := range missIdx {
		vectors[i] = computed[j]
		if encoded, err := json.Marshal(computed[j]); err == nil {
			pipe.Set(ctx, keys[i], encoded, c.client.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("embedding cache write failed", logging.Err(err))
	}

	c.logger.Debug("embedding cache resolved",
		logging.Int("texts", len(texts)),
		logging.Int("misses", len(missTexts)))
	return vectors, nil
}

// Get returns the cached vector for one text, or nil on a miss.
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, error) {
	raw, err := c.client.rdb.Get(ctx, c.cacheKey(text)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "read embedding cache")
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, nil
	}
	return vec, nil
}

func (c *EmbeddingCache) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.client.key("emb", c.model, hex.EncodeToString(sum[:]))
}

// DimensionedEmbedder is an Embedder that also reports its vector width.
type DimensionedEmbedder interface {
	Embedder
	Dimensions() int
}

// CachedEmbedder routes every embedding request through the cache,
// presenting the same surface as the wrapped embedder.
type CachedEmbedder struct {
	cache *EmbeddingCache
	inner DimensionedEmbedder
}

func NewCachedEmbedder(cache *EmbeddingCache, inner DimensionedEmbedder) *CachedEmbedder {
	return &CachedEmbedder{cache: cache, inner: inner}
}

func (e *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.cache.GetOrCompute(ctx, texts, e.inner)
}

func (e *CachedEmbedder) Dimensions() int { return e.inner.Dimensions() }
