package minio

import (
	"bytes"
	"context"
	"io"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

type fakeObjectAPI struct {
	objects map[string][]byte
	getErr  error
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{objects: map[string][]byte{}}
}

func (f *fakeObjectAPI) ListBuckets(context.Context) ([]miniogo.BucketInfo, error) {
	return nil, nil
}

func (f *fakeObjectAPI) BucketExists(context.Context, string) (bool, error) {
	return true, nil
}

func (f *fakeObjectAPI) MakeBucket(context.Context, string, miniogo.MakeBucketOptions) error {
	return nil
}

func (f *fakeObjectAPI) GetObject(_ context.Context, _, object string, _ miniogo.GetObjectOptions) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[object]
	if !ok {
		return io.NopCloser(&failingReader{err: miniogo.ErrorResponse{Code: "NoSuchKey"}}), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectAPI) PutObject(_ context.Context, _, object string, reader io.Reader, _ int64, _ miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return miniogo.UploadInfo{}, err
	}
	f.objects[object] = data
	return miniogo.UploadInfo{Key: object, Size: int64(len(data))}, nil
}

func (f *fakeObjectAPI) StatObject(_ context.Context, _, object string, _ miniogo.StatObjectOptions) (miniogo.ObjectInfo, error) {
	if _, ok := f.objects[object]; !ok {
		return miniogo.ObjectInfo{}, miniogo.ErrorResponse{Code: "NoSuchKey"}
	}
	return miniogo.ObjectInfo{Key: object}, nil
}

func (f *fakeObjectAPI) RemoveObject(_ context.Context, _, object string, _ miniogo.RemoveObjectOptions) error {
	delete(f.objects, object)
	return nil
}

// failingReader yields the minio error on first read, matching the real
// client's deferred error behaviour.
type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }

func testStore(api ObjectAPI) *DocumentStore {
	client := &Client{api: api, bucket: "markip-decisions", logger: logging.NewNopLogger()}
	return NewDocumentStore(client, logging.NewNopLogger())
}

func TestDocumentStoreFetchRoundTrip(t *testing.T) {
	api := newFakeObjectAPI()
	store := testStore(api)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "decisions/O-0959-23.pdf", []byte("%PDF-1.7"), "application/pdf"))

	data, err := store.Fetch(ctx, "decisions/O-0959-23.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)
}

func TestDocumentStoreFetchMissing(t *testing.T) {
	store := testStore(newFakeObjectAPI())

	_, err := store.Fetch(context.Background(), "decisions/absent.pdf")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDocumentNotFound))
}

func TestDocumentStoreFetchEmptyKey(t *testing.T) {
	store := testStore(newFakeObjectAPI())

	_, err := store.Fetch(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))
}

func TestDocumentStoreExists(t *testing.T) {
	api := newFakeObjectAPI()
	api.objects["a.pdf"] = []byte("x")
	store := testStore(api)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "b.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentStoreRemoveAbsentIsNoError(t *testing.T) {
	store := testStore(newFakeObjectAPI())
	assert.NoError(t, store.Remove(context.Background(), "gone.pdf"))
}
