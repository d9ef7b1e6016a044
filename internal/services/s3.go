package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cargodesk/internal/config"
	"cargodesk/internal/models"
	"cargodesk/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// ObjectStorage stores product images. Keys returned by Put are what the
// product row keeps; URLs are derived on read.
type ObjectStorage interface {
	Put(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

var (
	_ models.FileURLGenerator = (*S3Service)(nil)
	_ ObjectStorage           = (*S3Service)(nil)
)

type S3Service struct {
	client     *s3.Client
	bucketName string
	provider   string
	logger     *logger.Logger
}

// NewS3Service connects to S3 or an S3 compatible store such as R2 and
// verifies the credentials by listing the bucket.
func NewS3Service(ctx context.Context, cfg config.StorageConfig) (*S3Service, error) {
	log := logger.New("s3_service")
	s3cfg := cfg.S3

	if s3cfg.AccessKey == "" || s3cfg.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty ❌", fmt.Errorf("accessKey or secretKey is empty"))
	}
	if s3cfg.BucketName == "" {
		return nil, log.Error("S3 bucket is not configured ❌", fmt.Errorf("S3_BUCKET_NAME is empty"))
	}

	region := s3cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s3cfg.AccessKey,
			s3cfg.SecretKey,
			"",
		)),
		awsconfig.WithRetryMode(aws.RetryModeStandard),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config ❌", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if _, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3cfg.BucketName),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return nil, log.Error("Failed to verify S3 credentials ❌", err)
	}

	log.Success("S3 service initialized for bucket %s ✅", s3cfg.BucketName)

	return &S3Service{
		client:     client,
		bucketName: s3cfg.BucketName,
		provider:   cfg.Provider,
		logger:     log,
	}, nil
}

// ObjectKey builds a collision free key under products/ keeping the extension.
func ObjectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("products/%s%s", uuid.New().String(), ext)
}

func (s *S3Service) Put(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	key := ObjectKey(filename)
	s.logger.Info("📤 Uploading %s as %s", filename, key)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	// R2 ignores private ACLs, objects there are read through presigned URLs only
	if s.provider != "r2" {
		input.ACL = types.ObjectCannedACLPrivate
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", s.logger.Error("Failed to upload file to storage ❌", err)
	}

	s.logger.Success("✅ File uploaded: %s", key)
	return key, nil
}

func (s *S3Service) Remove(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}); err != nil {
		return s.logger.Error("Failed to delete %s ❌", err, key)
	}
	return nil
}

// GetSignedURL implements FileURLGenerator interface
func (s *S3Service) GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", s.logger.Error("Failed to generate pre-signed URL ❌", err)
	}

	s.logger.Debug("Generated pre-signed URL for %s", path)
	return presignedURL.URL, nil
}
