package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/andresuchdata/catalog-e2e/internal/config"
)

// MinioClient implements ObjectStorage against any S3-compatible endpoint
// using minio-go.
type MinioClient struct {
	client *minio.Client
}

// NewMinioClient builds a MinioClient. Endpoint is host[:port]; a scheme
// prefix is accepted and overrides UseSSL.
func NewMinioClient(cfg config.StorageConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint must be provided")
	}

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "http://"), false
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(strings.TrimSuffix(endpoint, "/"), &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init failed: %w", err)
	}
	return &MinioClient{client: client}, nil
}

// GetObject returns the full content of bucket/key.
func (c *MinioClient) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	object, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.wrap(err, "get", bucket, key)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, c.wrap(err, "get", bucket, key)
	}
	return data, nil
}

// PutObject writes data to bucket/key as JSON content.
func (c *MinioClient) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := c.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return c.wrap(err, "put", bucket, key)
	}
	return nil
}

// DeleteObject removes bucket/key. S3 treats a missing key as success.
func (c *MinioClient) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := c.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return c.wrap(err, "delete", bucket, key)
	}
	return nil
}

func (c *MinioClient) wrap(err error, op, bucket, key string) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket") {
		return errors.Wrapf(ErrObjectNotFound, "minio %s %s/%s", op, bucket, key)
	}
	return errors.Wrapf(err, "minio %s %s/%s", op, bucket, key)
}

var _ ObjectStorage = (*MinioClient)(nil)
