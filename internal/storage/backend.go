package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	cmstorage "github.com/chartmuseum/storage"
	"github.com/pkg/errors"

	"github.com/andresuchdata/catalog-e2e/internal/config"
)

// BackendClient implements ObjectStorage on top of chartmuseum storage
// backends. chartmuseum binds a backend to a single bucket, so one is built
// lazily per bucket.
type BackendClient struct {
	name    string
	factory func(bucket string) (cmstorage.Backend, error)

	mu       sync.Mutex
	backends map[string]cmstorage.Backend
}

// NewS3Client builds a BackendClient backed by chartmuseum's Amazon S3 backend.
// Credentials come from the AWS SDK chain unless AccessKey/SecretKey are set.
func NewS3Client(cfg config.StorageConfig) (*BackendClient, error) {
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, fmt.Errorf("s3 access key and secret key must be provided together")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	if cfg.AccessKey != "" {
		os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
		os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	}

	// Path-style addressing is only needed for custom S3-compatible endpoints.
	pathStyle := endpoint != ""

	return &BackendClient{
		name: "s3",
		factory: func(bucket string) (cmstorage.Backend, error) {
			return cmstorage.NewAmazonS3BackendWithOptions(
				bucket,
				"", // no prefix
				region,
				endpoint,
				"",
				&cmstorage.AmazonS3Options{
					S3ForcePathStyle: awsBool(pathStyle),
				},
			), nil
		},
		backends: make(map[string]cmstorage.Backend),
	}, nil
}

// NewLocalClient builds a BackendClient that stores each bucket as a
// directory under rootDir.
func NewLocalClient(rootDir string) (*BackendClient, error) {
	if strings.TrimSpace(rootDir) == "" {
		return nil, fmt.Errorf("local storage root directory must be provided")
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating storage root %s: %w", rootDir, err)
	}

	return &BackendClient{
		name: "local",
		factory: func(bucket string) (cmstorage.Backend, error) {
			dir := filepath.Join(rootDir, bucket)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed creating bucket directory %s: %w", dir, err)
			}
			return cmstorage.NewLocalFilesystemBackend(dir), nil
		},
		backends: make(map[string]cmstorage.Backend),
	}, nil
}

func (c *BackendClient) backend(bucket string) (cmstorage.Backend, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("%s: bucket name must be provided", c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.backends[bucket]; ok {
		return b, nil
	}
	b, err := c.factory(bucket)
	if err != nil {
		return nil, err
	}
	c.backends[bucket] = b
	return b, nil
}

// GetObject returns the full content of bucket/key.
func (c *BackendClient) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	b, err := c.backend(bucket)
	if err != nil {
		return nil, err
	}
	object, err := b.GetObject(key)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(ErrObjectNotFound, "%s get %s/%s", c.name, bucket, key)
		}
		return nil, errors.Wrapf(err, "%s get %s/%s", c.name, bucket, key)
	}
	return object.Content, nil
}

// PutObject writes data to bucket/key, replacing any existing object.
func (c *BackendClient) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	b, err := c.backend(bucket)
	if err != nil {
		return err
	}
	if err := b.PutObject(key, data); err != nil {
		return errors.Wrapf(err, "%s put %s/%s", c.name, bucket, key)
	}
	return nil
}

// DeleteObject removes bucket/key. Deleting a missing key is not an error,
// matching S3 semantics.
func (c *BackendClient) DeleteObject(ctx context.Context, bucket, key string) error {
	b, err := c.backend(bucket)
	if err != nil {
		return err
	}
	if err := b.DeleteObject(key); err != nil && !isNotFound(err) {
		return errors.Wrapf(err, "%s delete %s/%s", c.name, bucket, key)
	}
	return nil
}

func isNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

var _ ObjectStorage = (*BackendClient)(nil)

func awsBool(v bool) *bool {
	return &v
}
