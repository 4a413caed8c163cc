package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// ErrLockHeld means another worker is currently ingesting the document.
var ErrLockHeld = apperrors.New(apperrors.ErrCodeConflict, "document is being processed by another worker")

// releaseScript deletes the lock only when still owned by the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IngestLock serialises processing per document key so that duplicate
// queue deliveries do not ingest the same decision concurrently.
type IngestLock struct {
	client *Client
	ttl    time.Duration
}

func NewIngestLock(client *Client, ttl time.Duration) *IngestLock {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &IngestLock{client: client, ttl: ttl}
}

// Acquire takes the lock for the given document key. It does not block:
// a held lock returns ErrLockHeld immediately, callers requeue or skip.
func (l *IngestLock) Acquire(ctx context.Context, documentKey string) (release func(context.Context), err error) {
	key := l.client.key("ingest-lock", documentKey)
	token := uuid.NewString()

	ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "acquire ingest lock")
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release = func(ctx context.Context) {
		if err := releaseScript.Run(ctx, l.client.rdb, []string{key}, token).Err(); err != nil {
			l.client.logger.Warn("release ingest lock failed")
		}
	}
	return release, nil
}
