// Package s3 stores rule catalogs in Amazon S3 (or any S3-compatible endpoint).
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"taxdocs/internal/config"
)

const catalogContentType = "application/yaml"

// API is the S3 client surface needed by the downloader and uploader.
type API interface {
	manager.DownloadAPIClient
	manager.UploadAPIClient
}

// CatalogStore fetches and publishes a catalog document at one bucket/key.
type CatalogStore struct {
	bucket     string
	key        string
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// ParseURI splits "s3://bucket/key" into its bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URI %q must be s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// NewClient builds an S3 client from cfg. Static keys are used when both are set;
// a custom endpoint switches to path-style addressing.
func NewClient(ctx context.Context, cfg *config.S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// NewCatalogStore creates a store for the catalog at uri ("s3://bucket/key").
func NewCatalogStore(client API, uri string) (*CatalogStore, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return &CatalogStore{
		bucket:     bucket,
		key:        key,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
	}, nil
}

// Fetch downloads the catalog document.
func (s *CatalogStore) Fetch(ctx context.Context) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download %s: %w", s.Describe(), err)
	}
	return buf.Bytes(), nil
}

// Publish uploads data as the catalog document.
func (s *CatalogStore) Publish(ctx context.Context, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(catalogContentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", s.Describe(), err)
	}
	return nil
}

func (s *CatalogStore) Describe() string {
	return "s3://" + s.bucket + "/" + s.key
}
