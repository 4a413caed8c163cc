package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes ingest requests and case events. Messages are keyed
// by document key or case reference so per-case ordering survives
// partitioning.
type Producer struct {
	writer      WriterInterface
	ingestTopic string
	eventsTopic string
	logger      logging.Logger
}

func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  cfg.ProducerRetries,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &Producer{
		writer:      writer,
		ingestTopic: cfg.IngestTopic,
		eventsTopic: cfg.EventsTopic,
		logger:      logger.Named("kafka.producer"),
	}
}

// NewProducerWithWriter wires an existing writer, used by tests.
func NewProducerWithWriter(writer WriterInterface, ingestTopic, eventsTopic string, logger logging.Logger) *Producer {
	return &Producer{writer: writer, ingestTopic: ingestTopic, eventsTopic: eventsTopic, logger: logger}
}

// PublishIngestRequest enqueues a document for the worker.
func (p *Producer) PublishIngestRequest(ctx context.Context, req IngestRequest) error {
	if req.DocumentKey == "" {
		return apperrors.New(apperrors.ErrCodeBadRequest, "ingest request has no document key")
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	return p.publish(ctx, p.ingestTopic, req.DocumentKey, req)
}

// PublishCaseEvent announces an ingestion outcome.
func (p *Producer) PublishCaseEvent(ctx context.Context, event CaseEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	key := event.CaseReference
	if key == "" {
		key = event.DocumentKey
	}
	return p.publish(ctx, p.eventsTopic, key, event)
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal message")
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "publish message").WithDetail(topic)
	}
	p.logger.Debug("message published",
		logging.String("topic", topic),
		logging.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
