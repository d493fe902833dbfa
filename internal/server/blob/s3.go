// Package blob stores photo bytes in an S3-compatible object store.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/docsnap/docsnap/internal/common"
	sc "github.com/docsnap/docsnap/internal/server/config"
)

// Store is the object-storage contract the photo service depends on.
type Store interface {
	// Put uploads data under key with the given content type.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// PublicURL returns the externally reachable URL for key.
	PublicURL(key string) string
}

// S3Store implements Store against an S3-compatible backend (MinIO in
// development), configured with static credentials and a custom endpoint.
type S3Store struct {
	client *s3.Client
	bucket string
	public string
}

// NewS3Store builds the S3 client from server configuration.
func NewS3Store(ctx context.Context, cfg *sc.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config error: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		// MinIO serves buckets under the endpoint path, not a subdomain.
		o.UsePathStyle = true
	})

	return &S3Store{
		client: client,
		bucket: cfg.S3Bucket,
		public: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put uploads data to the configured bucket. Failures are reported as
// common.ErrUpload so callers can treat them uniformly.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUpload, err)
	}
	return nil
}

// PublicURL joins the public base URL and the object key.
func (s *S3Store) PublicURL(key string) string {
	return s.public + "/" + key
}
