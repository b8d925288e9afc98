// Package publish pushes the generated feed to object storage. Upload is an
// optional collaborator: when S3 (or an S3-compatible endpoint such as R2)
// is not configured the pipeline simply leaves the feed on disk.
package publish

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"je-feed-v2/internal/config"
	"je-feed-v2/internal/logger"
)

// S3Uploader uploads feed files to a bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logger.Logger
}

// NewS3Uploader builds an uploader from configuration. Static credentials
// are used when provided; otherwise the default credential chain applies.
func NewS3Uploader(ctx context.Context, cfg config.S3Config, log *logger.Logger) (*S3Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 upload not configured: S3_BUCKET missing")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log,
	}, nil
}

// Upload puts the local feed file under objectName (prefixed when a prefix
// is configured) and returns the s3:// URL of the object.
func (u *S3Uploader) Upload(ctx context.Context, localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close()

	key := strings.TrimLeft(objectName, "/")
	if u.prefix != "" {
		key = u.prefix + "/" + key
	}

	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/xml"),
	}); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
