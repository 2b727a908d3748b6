package store

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client serves objects from a map keyed by object key.
type mockS3Client struct {
	objects map[string][]byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &notFoundError{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

type notFoundError struct{}

func (e *notFoundError) Error() string { return "NoSuchKey: key not found" }

func TestObjectFileStoreRoundTrip(t *testing.T) {
	mock := newMockS3()
	store := NewObjectFileStore(mock, "smsa-uploads", nil)
	ctx := context.Background()

	in := map[string]any{"awb": "227047923763", "document_type": "waybill"}
	require.NoError(t, store.SaveFileMetadata(ctx, "conv-1", "file-9", in))

	out, err := store.GetFileMetadata(ctx, "conv-1", "file-9")
	require.NoError(t, err)
	assert.Equal(t, "227047923763", out["awb"])
	assert.Equal(t, "waybill", out["document_type"])
}

func TestObjectFileStoreMissingObjectIsNil(t *testing.T) {
	store := NewObjectFileStore(newMockS3(), "smsa-uploads", nil)

	out, err := store.GetFileMetadata(context.Background(), "conv-1", "no-such-file")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestObjectFileStoreDisabledWithoutBucket(t *testing.T) {
	store := NewObjectFileStore(newMockS3(), "", nil)

	assert.False(t, store.Enabled())
	out, err := store.GetFileMetadata(context.Background(), "conv-1", "file-9")
	require.NoError(t, err)
	assert.Nil(t, out)
	require.NoError(t, store.SaveFileMetadata(context.Background(), "conv-1", "file-9", map[string]any{"awb": "1"}))
}
