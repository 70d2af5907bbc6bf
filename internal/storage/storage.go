package storage

import (
	"context"
	"fmt"

	"github.com/andresuchdata/catalog-e2e/internal/config"
	"github.com/pkg/errors"
)

// ErrObjectNotFound is returned (wrapped) when a bucket/key pair does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage captures the S3-style operations the harness needs.
type ObjectStorage interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

// New builds the ObjectStorage selected by cfg.Driver.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Driver {
	case "", "s3":
		return NewS3Client(cfg)
	case "minio":
		return NewMinioClient(cfg)
	case "local":
		return NewLocalClient(cfg.RootDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
