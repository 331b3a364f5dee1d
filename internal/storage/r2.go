package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stemsi/tamilprep-backend/internal/config"
)

// R2Store uploads audio to a Cloudflare R2 bucket through the S3 API.
type R2Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewR2Store returns nil, nil when R2 is not fully configured so that callers
// can fall back to local storage.
func NewR2Store(ctx context.Context, cfg *config.Config) (*R2Store, error) {
	if !cfg.R2Enabled() {
		return nil, nil
	}

	base, err := url.Parse(cfg.R2PublicURL)
	if err != nil {
		return nil, fmt.Errorf("invalid R2 public URL: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Store{client: client, bucket: cfg.R2BucketName, publicURL: base.String()}, nil
}

func (s *R2Store) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrStorageDisabled
	}

	key := path.Join("audio", name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to R2: %w", key, err)
	}

	return objectURL(s.publicURL, key)
}

func objectURL(base, key string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid R2 public URL: %w", err)
	}
	u.Path = path.Join(u.Path, key)
	return u.String(), nil
}
