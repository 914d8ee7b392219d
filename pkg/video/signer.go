package video

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/whrrk/eduplatform/pkg/config"
)

// Signer issues time-limited signed URLs against the video object
// store. The client uploads and downloads directly against these URLs;
// the API never proxies object bytes.
type Signer interface {
	// PresignGet returns a signed download URL for key, valid for ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// PresignPut returns a signed upload URL for key, valid for ttl.
	// contentType, when non-empty, is bound into the signature.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}

// S3Signer implements Signer with the S3 presign client.
type S3Signer struct {
	presign *s3.PresignClient
	bucket  string
}

// NewS3Signer builds a signer for the configured video bucket using the
// default AWS credential chain.
func NewS3Signer(ctx context.Context, cfg *appconfig.Config) (*S3Signer, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return NewS3SignerFromClient(client, cfg.VideoBucket), nil
}

// NewS3SignerFromClient wraps an already constructed S3 client.
func NewS3SignerFromClient(client *s3.Client, bucket string) *S3Signer {
	return &S3Signer{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

// PresignGet returns a signed GetObject URL.
func (s *S3Signer) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}
	return req.URL, nil
}

// PresignPut returns a signed PutObject URL.
func (s *S3Signer) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return req.URL, nil
}
