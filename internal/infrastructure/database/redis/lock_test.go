package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
)

func testLock(t *testing.T) (*IngestLock, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	client := NewClientWithRedis(db, "markip", time.Hour, logging.NewNopLogger())
	return NewIngestLock(client, 10*time.Minute), mock
}

func TestIngestLockAcquire(t *testing.T) {
	lock, mock := testLock(t)

	mock.CustomMatch(func(expected, actual []interface{}) error {
		// Token is a random UUID; match on command, key and TTL only.
		if len(expected) != len(actual) {
			return errors.New("arg count mismatch")
		}
		for i := range expected {
			if i == 2 {
				continue
			}
			if expected[i] != actual[i] {
				return errors.New("arg mismatch")
			}
		}
		return nil
	}).ExpectSetNX("markip:ingest-lock:decisions/O-0959-23.pdf", "", 10*time.Minute).SetVal(true)

	release, err := lock.Acquire(context.Background(), "decisions/O-0959-23.pdf")
	require.NoError(t, err)
	require.NotNil(t, release)
}

func TestIngestLockHeld(t *testing.T) {
	lock, mock := testLock(t)

	mock.CustomMatch(func(expected, actual []interface{}) error {
		return nil
	}).ExpectSetNX("markip:ingest-lock:decisions/O-0959-23.pdf", "", 10*time.Minute).SetVal(false)

	_, err := lock.Acquire(context.Background(), "decisions/O-0959-23.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockHeld)
}
