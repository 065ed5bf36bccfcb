package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinioStore keeps each slot as an object in a bucket, under slots/<name>.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore wraps an already-connected MinIO client and ensures the
// bucket exists.
func NewMinioStore(client *minio.Client, bucket, region string) (*MinioStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func objectName(slot string) string {
	return "slots/" + slot
}

func (s *MinioStore) Load(ctx context.Context, slot string) (string, bool, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectName(slot), minio.GetObjectOptions{})
	if err != nil {
		return "", false, fmt.Errorf("failed to get slot object %s: %w", slot, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		// GetObject is lazy; a missing key surfaces on the first read.
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read slot object %s: %w", slot, err)
	}
	return string(data), true, nil
}

func (s *MinioStore) Save(ctx context.Context, slot, value string) error {
	reader := bytes.NewReader([]byte(value))
	_, err := s.client.PutObject(ctx, s.bucket, objectName(slot), reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: contentTypeFor(value),
	})
	if err != nil {
		return fmt.Errorf("failed to put slot object %s: %w", slot, err)
	}
	return nil
}

func contentTypeFor(value string) string {
	if strings.HasPrefix(value, "[") || strings.HasPrefix(value, "{") {
		return "application/json"
	}
	return "text/plain"
}
