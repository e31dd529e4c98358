// Package gcs stores exported results in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage"
	storageConfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// ProviderType is the storage type handled by this adapter.
const ProviderType = "gcs"

func init() {
	storage.RegisterAdapter(ProviderType, func(ctx context.Context, name string, cfg storageConfig.StorageConfig) (storage.StorageConnection, error) {
		return NewGCSAdapter(ctx, cfg, name)
	})
}

// ClientOptions returns the client options derived from cfg.
// Without a credentials file, Application Default Credentials are used.
func ClientOptions(cfg storageConfig.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	return opts
}

type gcsAdapter struct {
	cfg    storageConfig.StorageConfig
	name   string
	client *gcstorage.Client
}

var _ storage.StorageConnection = (*gcsAdapter)(nil)

// NewGCSAdapter creates a GCS client for cfg.
func NewGCSAdapter(ctx context.Context, cfg storageConfig.StorageConfig, name string, extra ...option.ClientOption) (storage.StorageConnection, error) {
	client, err := gcstorage.NewClient(ctx, append(ClientOptions(cfg), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}
	return &gcsAdapter{cfg: cfg, name: name, client: client}, nil
}

func (a *gcsAdapter) Close() error { return a.client.Close() }

func (a *gcsAdapter) Type() string { return ProviderType }

func (a *gcsAdapter) Name() string { return a.name }

func (a *gcsAdapter) bucket(bucket string) (*gcstorage.BucketHandle, error) {
	b := a.cfg.Bucket(bucket)
	if b == "" {
		return nil, fmt.Errorf("gcs storage adapter '%s': no bucket given and bucket_name not configured", a.name)
	}
	return a.client.Bucket(b), nil
}

func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	bh, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	w := bh.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write gcs object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gcs object '%s': %w", objectName, err)
	}
	logger.Debugf("Uploaded gcs object '%s' (storage '%s').", objectName, a.name)
	return nil
}

func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	bh, err := a.bucket(bucket)
	if err != nil {
		return nil, err
	}
	r, err := bh.Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read gcs object '%s': %w", objectName, err)
	}
	return r, nil
}

func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	bh, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	it := bh.Objects(ctx, &gcstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list gcs objects with prefix '%s': %w", prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	bh, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	if err := bh.Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			logger.Warnf("Attempted to delete non-existent gcs object '%s' (storage '%s').", objectName, a.name)
			return nil
		}
		return fmt.Errorf("failed to delete gcs object '%s': %w", objectName, err)
	}
	return nil
}
