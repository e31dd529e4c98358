// Package storage defines the object-storage contract used to export run results.
// Adapters (local, gcs, s3) register themselves from init.
package storage

import (
	"context"
	"io"
)

// StorageExecutor defines generic storage operations.
type StorageExecutor interface {
	// Upload uploads data to the specified bucket and object name.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download returns the object's content. The caller must close it.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for each object under prefix.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes the object. A missing object is not an error.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection is an open connection to one configured storage.
type StorageConnection interface {
	StorageExecutor

	// Close releases the connection's resources.
	Close() error
	// Type returns the adapter type ("local", "gcs", "s3").
	Type() string
	// Name returns the configured storage name.
	Name() string
}

// StorageConnectionResolver resolves storage connections by configured name.
type StorageConnectionResolver interface {
	ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error)
}
