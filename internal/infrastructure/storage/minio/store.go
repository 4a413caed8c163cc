package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// DocumentStore reads and writes source decision PDFs keyed by object name.
// The ingestion pipeline only reads; writes exist for intake tooling.
type DocumentStore struct {
	client *Client
	logger logging.Logger
}

func NewDocumentStore(client *Client, logger logging.Logger) *DocumentStore {
	return &DocumentStore{client: client, logger: logger.Named("docstore")}
}

// Fetch downloads a document by object key. A missing object maps to
// ErrCodeDocumentNotFound so callers can distinguish it from transport
// failures.
func (s *DocumentStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "document key is empty")
	}

	obj, err := s.client.api.GetObject(ctx, s.client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDocumentFetchFailed, "open document").WithDetail(key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, apperrors.New(apperrors.ErrCodeDocumentNotFound, "document not found").WithDetail(key)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDocumentFetchFailed, "read document").WithDetail(key)
	}

	s.logger.Debug("document fetched",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return data, nil
}

// Store uploads a document under the given key, overwriting any existing
// object.
func (s *DocumentStore) Store(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return apperrors.New(apperrors.ErrCodeBadRequest, "document key is empty")
	}
	_, err := s.client.api.PutObject(ctx, s.client.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDocumentFetchFailed, "store document").WithDetail(key)
	}
	return nil
}

// Exists reports whether a document is present without downloading it.
func (s *DocumentStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.api.StatObject(ctx, s.client.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, apperrors.Wrap(err, apperrors.ErrCodeDocumentFetchFailed, "stat document").WithDetail(key)
	}
	return true, nil
}

// Remove deletes a document. Removing an absent key is not an error.
func (s *DocumentStore) Remove(ctx context.Context, key string) error {
	err := s.client.api.RemoveObject(ctx, s.client.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return apperrors.Wrap(err, apperrors.ErrCodeDocumentFetchFailed, "remove document").WithDetail(key)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
