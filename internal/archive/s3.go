package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds explicit construction parameters for S3Store.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; set for MinIO or other S3-compatible services
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
	PathStyle       bool
	// URLExpiry is how long presigned download URLs stay valid. Defaults to 15m.
	URLExpiry time.Duration
}

// S3Store keeps artifacts in one bucket and returns presigned GET URLs.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// NewS3Store builds an S3Store from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive.NewS3Store: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("archive.NewS3Store: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  expiry,
	}, nil
}

// Put uploads body under key and presigns a download URL for it.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, fmt.Errorf("archive.S3Store.Put: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Info{}, fmt.Errorf("archive.S3Store.Put: %w", err)
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	}, func(po *s3.PresignOptions) { po.Expires = s.expiry })
	if err != nil {
		return Info{}, fmt.Errorf("archive.S3Store.Put: presign: %w", err)
	}
	return Info{
		Key:         k,
		Size:        int64(len(body)),
		ContentType: contentType,
		URL:         req.URL,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
