package payments

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"

	s3infra "github.com/ivankudzin/paquera/internal/infra/s3"
)

const defaultPresignTTL = 15 * time.Minute

// S3ReceiptStorage presigns receipt image URLs. Image bytes never pass
// through the API.
type S3ReceiptStorage struct {
	client *minio.Client
	bucket string

	ensureOnce sync.Once
	ensureErr  error
}

func NewS3ReceiptStorage(client *minio.Client, bucket string) *S3ReceiptStorage {
	return &S3ReceiptStorage{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

func (s *S3ReceiptStorage) EnsureBucket(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		s.ensureErr = s3infra.EnsureBucket(ctx, s.client, s.bucket)
	})
	return s.ensureErr
}

func (s *S3ReceiptStorage) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if key == "" {
		return "", ErrValidation
	}
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return "", err
	}

	presigned, err := s.client.PresignedPutObject(ctx, s.bucket, key, ttl)
	if err != nil {
		return "", fmt.Errorf("presign put object: %w", err)
	}
	return presigned.String(), nil
}

func (s *S3ReceiptStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if key == "" {
		return "", ErrValidation
	}
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return presigned.String(), nil
}
