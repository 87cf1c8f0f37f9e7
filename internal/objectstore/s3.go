// Package objectstore uploads user files (verification documents, product
// images) to S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adityatechndevoops/OliveStore/config"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores objects in a single bucket.
type S3Storage struct {
	client        putObjectAPI
	bucket        string
	region        string
	publicBaseURL string
	now           func() time.Time
}

// NewS3Storage builds a client from the default AWS credential chain.
func NewS3Storage(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Storage(client, cfg), nil
}

func newS3Storage(client putObjectAPI, cfg config.StorageConfig) *S3Storage {
	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:           time.Now,
	}
}

// Upload stores data under folder and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, data []byte, folder, filename, contentType string) (string, error) {
	ctx, span := util.StartSpan(ctx, "S3Storage.Upload")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ObjectUploadLatency.Observe(time.Since(start).Seconds())
	}()

	key := s.objectKey(folder, filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	util.LoggerFromContext(ctx).Info("Object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)))

	return s.objectURL(key), nil
}

func (s *S3Storage) objectKey(folder, filename string) string {
	return fmt.Sprintf("%s/%d_%s", strings.Trim(folder, "/"), s.now().UnixNano(), sanitizeFilename(filename))
}

func (s *S3Storage) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// sanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '-'.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '-'
	}, name)
}
