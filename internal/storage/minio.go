package storage

import (
	"context"
	"fmt"

	"github.com/Sly695/GymEasIA/internal/config"

	miniosdk "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps the MinIO client and exposes the configured bucket.
type Client struct {
	*miniosdk.Client
	bucket string
}

// Option customizes client initialization.
type Option func(*options)

type options struct {
	requireExistingBucket bool
}

// WithExistingBucketOnly requires the bucket to exist instead of creating it.
func WithExistingBucketOnly() Option {
	return func(o *options) {
		o.requireExistingBucket = true
	}
}

// NewClient creates a new MinIO client with optional bucket validation behaviour.
func NewClient(cfg config.MinIOConfig, opts ...Option) (*Client, error) {
	settings := options{}
	for _, opt := range opts {
		opt(&settings)
	}

	client, err := miniosdk.New(cfg.Endpoint, &miniosdk.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if settings.requireExistingBucket {
			return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
		}

		if err := client.MakeBucket(ctx, cfg.Bucket, miniosdk.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Client{
		Client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
