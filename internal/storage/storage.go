//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=mocks/mock_blob_store.go -package=mocks
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"chat-rooms/config"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo is what the backend reports about a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// BlobStore keeps file bytes under opaque keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	var (
		store BlobStore
		err   error
	)
	switch cfg.StorageDriver {
	case "s3":
		store, err = NewClient(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	case "gcs":
		store, err = NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentials)
	case "local", "":
		store, err = NewLocalStore(cfg.LocalStorageDir)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
