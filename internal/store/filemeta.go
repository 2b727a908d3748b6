package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// S3API is the subset of the S3 client used by ObjectFileStore. OBS
// exposes an S3-compatible surface, so the same client talks to both.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectFileStore reads and writes per-file extraction metadata in an
// object bucket. If bucket is empty, all operations are no-ops.
type ObjectFileStore struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewObjectFileStore creates a file metadata store backed by bucket.
func NewObjectFileStore(s3Client S3API, bucket string, logger *logging.Logger) *ObjectFileStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ObjectFileStore{
		bucket:   bucket,
		s3Client: s3Client,
		logger:   logger.Component("file_store"),
	}
}

// Enabled reports whether a bucket is configured.
func (s *ObjectFileStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// GetFileMetadata loads the extraction metadata stored for an uploaded
// file. A missing object is a cache-style miss and returns nil, nil.
func (s *ObjectFileStore) GetFileMetadata(ctx context.Context, conversationID, fileID string) (map[string]any, error) {
	if !s.Enabled() {
		return nil, nil
	}

	key := fileMetadataKey(conversationID, fileID)
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: s3 get %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}

	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return metadata, nil
}

// SaveFileMetadata writes extraction metadata for an uploaded file.
func (s *ObjectFileStore) SaveFileMetadata(ctx context.Context, conversationID, fileID string, metadata map[string]any) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("store: marshal file metadata: %w", err)
	}

	key := fileMetadataKey(conversationID, fileID)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("store: s3 put %s: %w", key, err)
	}

	s.logger.Info("stored file metadata",
		"conversation_id", conversationID, "file_id", fileID, "key", key)
	return nil
}

func fileMetadataKey(conversationID, fileID string) string {
	return fmt.Sprintf("uploads/%s/%s/metadata.json", conversationID, fileID)
}

func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "404")
}
