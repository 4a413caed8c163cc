package kafka

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// fakeReader serves a fixed message sequence, then cancels the context so
// Run returns.
type fakeReader struct {
	messages  []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
	pos       int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if r.pos >= len(r.messages) {
		r.cancel()
		return kafkago.Message{}, context.Canceled
	}
	msg := r.messages[r.pos]
	r.pos++
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func ingestMessage(t *testing.T, offset int64, req IngestRequest) kafkago.Message {
	t.Helper()
	value, err := json.Marshal(req)
	require.NoError(t, err)
	return kafkago.Message{Topic: "markip.ingest.requests", Offset: offset, Value: value}
}

func runConsumer(t *testing.T, reader *fakeReader, handler IngestHandler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	reader.cancel = cancel
	consumer := NewConsumerWithReader(reader, logging.NewNopLogger())
	require.NoError(t, consumer.Run(ctx, handler))
}

func TestConsumerDispatchesAndCommits(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		ingestMessage(t, 0, IngestRequest{DocumentKey: "a.pdf"}),
		ingestMessage(t, 1, IngestRequest{DocumentKey: "b.pdf"}),
	}}

	var handled []string
	runConsumer(t, reader, func(_ context.Context, req IngestRequest) error {
		handled = append(handled, req.DocumentKey)
		return nil
	})

	assert.Equal(t, []string{"a.pdf", "b.pdf"}, handled)
	assert.Equal(t, []int64{0, 1}, reader.committed)
}

func TestConsumerDropsMalformedMessages(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: "markip.ingest.requests", Offset: 0, Value: []byte("{not json")},
		ingestMessage(t, 1, IngestRequest{DocumentKey: "a.pdf"}),
	}}

	var handled []string
	runConsumer(t, reader, func(_ context.Context, req IngestRequest) error {
		handled = append(handled, req.DocumentKey)
		return nil
	})

	assert.Equal(t, []string{"a.pdf"}, handled)
	assert.Equal(t, []int64{0, 1}, reader.committed)
}

func TestConsumerLeavesTransientFailuresUncommitted(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		ingestMessage(t, 0, IngestRequest{DocumentKey: "flaky.pdf"}),
		ingestMessage(t, 1, IngestRequest{DocumentKey: "ok.pdf"}),
	}}

	runConsumer(t, reader, func(_ context.Context, req IngestRequest) error {
		if req.DocumentKey == "flaky.pdf" {
			return apperrors.New(apperrors.ErrCodeOracleTransient, "rate limited")
		}
		return nil
	})

	assert.Equal(t, []int64{1}, reader.committed)
}

func TestConsumerCommitsPermanentFailures(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		ingestMessage(t, 0, IngestRequest{DocumentKey: "bad.pdf"}),
	}}

	runConsumer(t, reader, func(_ context.Context, _ IngestRequest) error {
		return apperrors.New(apperrors.ErrCodeCaseValidation, "document failed validation")
	})

	assert.Equal(t, []int64{0}, reader.committed)
}
