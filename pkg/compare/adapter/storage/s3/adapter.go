// Package s3 stores exported results in Amazon S3 or an S3-compatible object store.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage"
	storageConfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// ProviderType is the storage type handled by this adapter.
const ProviderType = "s3"

const defaultRegion = "us-east-1"

func init() {
	storage.RegisterAdapter(ProviderType, func(_ context.Context, name string, cfg storageConfig.StorageConfig) (storage.StorageConnection, error) {
		return NewS3Adapter(cfg, name)
	})
}

type s3Adapter struct {
	cfg    storageConfig.StorageConfig
	name   string
	client *s3.Client
}

var _ storage.StorageConnection = (*s3Adapter)(nil)

// NewS3Adapter creates an S3 client for cfg. Static credentials are used when both
// keys are set; an Endpoint selects an S3-compatible store.
func NewS3Adapter(cfg storageConfig.StorageConfig, name string) (storage.StorageConnection, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	opts := s3.Options{
		Region:                     region,
		UsePathStyle:               cfg.UsePathStyle,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		return nil, fmt.Errorf("s3 storage adapter '%s': access_key_id and secret_access_key must be set together", name)
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &s3Adapter{cfg: cfg, name: name, client: s3.New(opts)}, nil
}

func (a *s3Adapter) Close() error { return nil }

func (a *s3Adapter) Type() string { return ProviderType }

func (a *s3Adapter) Name() string { return a.name }

func (a *s3Adapter) bucket(bucket string) (string, error) {
	b := a.cfg.Bucket(bucket)
	if b == "" {
		return "", fmt.Errorf("s3 storage adapter '%s': no bucket given and bucket_name not configured", a.name)
	}
	return b, nil
}

// Upload sends data with PutObject. Non-seekable readers are buffered first
// because request signing needs the payload length.
func (a *s3Adapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	body, ok := data.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(data)
		if err != nil {
			return fmt.Errorf("failed to read upload data for '%s': %w", objectName, err)
		}
		body = bytes.NewReader(buf)
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b),
		Key:         aws.String(objectName),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3 object %q: %w", objectName, err)
	}
	logger.Debugf("Uploaded s3://%s/%s (storage '%s').", b, objectName, a.name)
	return nil
}

func (a *s3Adapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	b, err := a.bucket(bucket)
	if err != nil {
		return nil, err
	}
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(b), Key: aws.String(objectName)})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %q: %w", objectName, err)
	}
	return out.Body, nil
}

func (a *s3Adapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list s3 objects with prefix %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			if err := fn(aws.ToString(obj.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *s3Adapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	_, err = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(b), Key: aws.String(objectName)})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("delete s3 object %q: %w", objectName, err)
	}
	return nil
}
