// Package milvus implements the vector index collaborator on Milvus:
// one collection of chunk embeddings, upserted at ingestion time and
// queried for nearest neighbours by the prediction services.
package milvus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// milvusNewClient is swapped in tests.
var milvusNewClient = client.NewClient

// Client manages the Milvus connection and its health state.
type Client struct {
	cfg    config.MilvusConfig
	logger logging.Logger

	mu           sync.RWMutex
	milvusClient client.Client
	healthy      atomic.Bool
	cancel       context.CancelFunc
}

// NewClient connects to Milvus and verifies connectivity. The connection
// is shared by all callers; the SDK client is safe for concurrent use.
func NewClient(cfg config.MilvusConfig, logger logging.Logger) (*Client, error) {
	if cfg.Address == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "milvus address is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer connectCancel()

	mc, err := milvusNewClient(connectCtx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.DBName,
	})
	if err != nil {
		cancel()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "connect to milvus")
	}

	c := &Client{
		cfg:          cfg,
		logger:       logger.Named("milvus"),
		milvusClient: mc,
		cancel:       cancel,
	}
	c.healthy.Store(true)
	go c.healthLoop(ctx)

	c.logger.Info("milvus client connected", logging.String("address", cfg.Address))
	return c, nil
}

func (c *Client) raw() client.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.milvusClient
}

// CheckHealth probes the cluster and updates the cached health flag.
func (c *Client) CheckHealth(ctx context.Context) error {
	mc := c.raw()
	if mc == nil {
		return apperrors.New(apperrors.ErrCodeServiceUnavailable, "milvus client not connected")
	}
	if _, err := mc.CheckHealth(ctx); err != nil {
		c.healthy.Store(false)
		return apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "milvus unhealthy")
	}
	c.healthy.Store(true)
	return nil
}

func (c *Client) IsHealthy() bool { return c.healthy.Load() }

func (c *Client) Close() error {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.milvusClient != nil {
		if err := c.milvusClient.Close(); err != nil {
			return err
		}
		c.milvusClient = nil
	}
	return nil
}

func (c *Client) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
			if err := c.CheckHealth(probe); err != nil {
				c.logger.Warn("milvus health probe failed", logging.Err(err))
			}
			cancel()
		}
	}
}
