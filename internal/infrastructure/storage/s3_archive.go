// Package storage archives uploaded workbooks in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	bulkapp "github.com/marketplace/portal/internal/application/bulk"
	"github.com/marketplace/portal/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ bulkapp.Archive = (*S3Archive)(nil)

const defaultPresignExpiration = 15 * time.Minute

// S3Archive stores workbooks in a bucket. Works against AWS S3 and MinIO-style endpoints.
type S3Archive struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	expiresIn time.Duration
	logger    *zap.Logger
}

// Option configures an S3Archive
type Option func(*S3Archive)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *S3Archive) { a.logger = l }
}

// NewS3Archive builds an archive from the storage section of the config
func NewS3Archive(ctx context.Context, cfg *config.StorageConfig, opts ...Option) (*S3Archive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	switch {
	case cfg.Bucket == "":
		return nil, errors.New("storage bucket is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return nil, errors.New("storage credentials are required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	a := &S3Archive{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		expiresIn: cfg.PresignExpiration,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.expiresIn <= 0 {
		a.expiresIn = defaultPresignExpiration
	}
	return a, nil
}

// endpointURL adds a scheme to bare host:port endpoints. Empty means AWS.
func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// EnsureBucket creates the bucket when it is missing
func (a *S3Archive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	a.logger.Info("Creating import archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put stores data under key
func (a *S3Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	a.logger.Debug("Workbook archived", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// URL returns a presigned download link for key
func (a *S3Archive) URL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(a.expiresIn), nil
}

// Delete removes key
func (a *S3Archive) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Bucket returns the bucket name
func (a *S3Archive) Bucket() string {
	return a.bucket
}
