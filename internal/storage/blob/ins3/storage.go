// Package ins3 provides a blob repository backed by an S3-compatible object store (AWS S3 or MinIO).
package ins3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob"
)

// Check interface implementation explicitly
var (
	_ blob.Storage = (*Storage)(nil)
)

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	client *s3.Client
	bucket string
	prefix string
	log    *slog.Logger
}

// InitStorage builds an S3 client from the default credentials chain and the given parameters.
func InitStorage(ctx context.Context, cfg *config.S3Config, log *slog.Logger) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, Options(cfg.Endpoint, cfg.PathStyle))
	return NewStorage(client, cfg.Bucket, cfg.Prefix, log), nil
}

// Options returns client options for custom endpoints. Checksums are only computed when an
// operation requires them so that MinIO and similar stores accept plain uploads.
func Options(endpoint string, pathStyle bool) func(*s3.Options) {
	return func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	}
}

// NewStorage wraps an existing client. Keys are stored as prefix+key.
func NewStorage(client *s3.Client, bucket, prefix string, log *slog.Logger) *Storage {
	if log == nil {
		log = slog.Default()
	}
	return &Storage{client: client, bucket: bucket, prefix: prefix, log: log.With("blob", "s3", "bucket", bucket)}
}

// Store uploads data under key, replacing any previous object.
func (s *Storage) Store(ctx context.Context, key string, data []byte) error {
	if err := blob.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.log.Error("storing blob", "key", key, "error", err)
		return fmt.Errorf("put object %s: %w", key, err)
	}
	s.log.Debug("storing blob", "key", key, "size", len(data))
	return nil
}

// Fetch downloads the object stored under key.
func (s *Storage) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := blob.ValidateKey(key); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &blob.NotFoundError{Key: key, Err: err}
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
