// Package sink uploads written artifacts to object storage.
package sink

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/huangsam/transit/internal/contract"
)

// objectUploader is the part of manager.Uploader that S3Uploader needs.
type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Uploader puts artifacts under a bucket prefix.
type S3Uploader struct {
	uploader objectUploader
	bucket   string
	prefix   string
}

var _ contract.Uploader = &S3Uploader{} // Compile-time check

// NewS3Uploader builds an uploader from the default AWS credential chain.
// An empty region falls back to the environment or shared config.
func NewS3Uploader(ctx context.Context, cfg contract.UploadConfig) (*S3Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("upload bucket is not configured")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Uploader{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}, nil
}

// ObjectKey returns the key an artifact is stored under: the prefix joined
// with the base name of the local file.
func ObjectKey(prefix, localPath string) string {
	base := filepath.Base(localPath)
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

// Upload sends the file at localPath and returns its s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact %s: %w", localPath, err)
	}
	defer func() { _ = file.Close() }()

	key := ObjectKey(u.prefix, localPath)
	if _, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", localPath, u.bucket, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
