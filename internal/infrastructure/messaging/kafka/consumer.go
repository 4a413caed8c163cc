package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// IngestHandler processes one ingest request. A transient error leaves the
// message uncommitted for redelivery; any other error is recorded by the
// handler itself and the message is committed.
type IngestHandler func(ctx context.Context, req IngestRequest) error

// Consumer reads the ingest request topic as part of the worker group.
type Consumer struct {
	reader ReaderInterface
	logger logging.Logger
}

func NewConsumer(cfg config.KafkaConfig, logger logging.Logger) *Consumer {
	startOffset := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.IngestTopic,
		StartOffset: startOffset,
	})
	return &Consumer{reader: reader, logger: logger.Named("kafka.consumer")}
}

// NewConsumerWithReader wires an existing reader, used by tests.
func NewConsumerWithReader(reader ReaderInterface, logger logging.Logger) *Consumer {
	return &Consumer{reader: reader, logger: logger}
}

// Run consumes until the context is cancelled. Malformed messages are
// committed and dropped; losing them is preferable to wedging the
// partition.
func (c *Consumer) Run(ctx context.Context, handler IngestHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "fetch message")
		}

		var req IngestRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			c.logger.Error("malformed ingest request dropped",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
			c.commit(ctx, msg)
			continue
		}

		if err := handler(ctx, req); err != nil {
			if apperrors.IsTransient(err) {
				c.logger.Warn("ingest failed transiently, message left for redelivery",
					logging.String("document_key", req.DocumentKey),
					logging.Err(err))
				continue
			}
			c.logger.Error("ingest failed",
				logging.String("document_key", req.DocumentKey),
				logging.Err(err))
		}
		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("commit failed",
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
