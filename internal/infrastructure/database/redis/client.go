// Package redis provides the embedding cache and the per-document ingest
// lock.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// Client wraps the redis connection with the configured key prefix.
type Client struct {
	rdb       *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    logging.Logger
}

func NewClient(cfg config.RedisConfig, logger logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "connect to redis")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "markip"
	}
	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}

	logger.Info("redis connected", logging.String("addr", cfg.Addr))
	return &Client{rdb: rdb, keyPrefix: prefix, ttl: ttl, logger: logger.Named("redis")}, nil
}

// NewClientWithRedis wires an existing redis client, used by tests with
// miniature servers.
func NewClientWithRedis(rdb *redis.Client, keyPrefix string, ttl time.Duration, logger logging.Logger) *Client {
	return &Client{rdb: rdb, keyPrefix: keyPrefix, ttl: ttl, logger: logger}
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "redis health check failed")
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) key(parts ...string) string {
	key := c.keyPrefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
