package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	infraconfig "github.com/jneralrex/stratos-backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3ReceiptStore implements BlobStore
var _ financeapp.BlobStore = (*S3ReceiptStore)(nil)

// s3API is the subset of the S3 client used by S3ReceiptStore
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3ReceiptStore stores receipts in any S3-compatible bucket (AWS S3, MinIO,
// Cloudflare R2, ...)
type S3ReceiptStore struct {
	client  s3API
	bucket  string
	baseURL string
	maxSize int64
	logger  *zap.Logger
}

// S3ReceiptStoreOption is a functional option for configuring S3ReceiptStore
type S3ReceiptStoreOption func(*S3ReceiptStore)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ReceiptStoreOption {
	return func(s *S3ReceiptStore) {
		s.logger = logger
	}
}

// WithMaxSize caps the size of stored receipts
func WithMaxSize(n int64) S3ReceiptStoreOption {
	return func(s *S3ReceiptStore) {
		s.maxSize = n
	}
}

// NewS3ReceiptStore creates a store from configuration
func NewS3ReceiptStore(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ReceiptStoreOption) (*S3ReceiptStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := endpointURL(cfg)
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3ReceiptStore(client, cfg.Bucket, publicBaseURL(cfg, endpoint, region), opts...), nil
}

func newS3ReceiptStore(client s3API, bucket, baseURL string, opts ...S3ReceiptStoreOption) *S3ReceiptStore {
	s := &S3ReceiptStore{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		maxSize: DefaultMaxReceiptSize,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func endpointURL(cfg *infraconfig.StorageConfig) string {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		return ""
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			return "https://" + endpoint
		}
		return "http://" + endpoint
	}
	return endpoint
}

// publicBaseURL returns the prefix receipt keys are appended to
func publicBaseURL(cfg *infraconfig.StorageConfig, endpoint, region string) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case endpoint != "":
		return joinURL(endpoint, cfg.Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3ReceiptStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating receipt bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads a receipt under receipts/{uuid}{ext}
func (s *S3ReceiptStore) Store(ctx context.Context, file financeapp.ReceiptUpload) (finance.Receipt, error) {
	key, contentType, err := prepareReceipt(file, s.maxSize)
	if err != nil {
		return finance.Receipt{}, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(int64(len(file.Data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return finance.Receipt{}, fmt.Errorf("failed to upload receipt: %w", err)
	}

	s.logger.Debug("Receipt stored", zap.String("key", key), zap.Int("size", len(file.Data)))
	return finance.Receipt{URL: joinURL(s.baseURL, key), PublicID: key}, nil
}

// Delete removes a receipt. It reports false when the object did not exist.
func (s *S3ReceiptStore) Delete(ctx context.Context, identifier string) (bool, error) {
	if identifier == "" {
		return false, errors.New("storage key is required")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(identifier),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check receipt: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(identifier),
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete receipt: %w", err)
	}
	return true, nil
}

// Bucket returns the bucket name
func (s *S3ReceiptStore) Bucket() string {
	return s.bucket
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	// Some S3-compatible services only report the code in the message
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey")
}
