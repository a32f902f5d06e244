package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps media in an S3 compatible bucket. Stored paths are public
// object URLs.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects and creates the bucket when it is missing
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", opts.Bucket, err)
		}
	}

	return &MinioStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: objectBaseURL(opts),
	}, nil
}

func objectBaseURL(opts MinioOptions) string {
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, opts.Endpoint, opts.Bucket)
}

// Put implements Store
func (s *MinioStore) Put(ctx context.Context, key, localPath, contentType string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.baseURL + key, nil
}

// Remove implements Store. S3 deletes of absent objects succeed.
func (s *MinioStore) Remove(ctx context.Context, storedPath string) error {
	if storedPath == "" {
		return nil
	}
	key := objectKey(s.baseURL, storedPath)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func objectKey(baseURL, storedPath string) string {
	return strings.TrimPrefix(storedPath, baseURL)
}
