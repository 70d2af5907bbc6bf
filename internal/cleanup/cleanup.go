package cleanup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/internal/storage"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

// ManifestReader fetches the sample manifest.
type ManifestReader interface {
	Read(ctx context.Context) (*catalog.Manifest, error)
}

// Cleaner removes the input objects the uploader wrote for a manifest.
type Cleaner struct {
	manifest ManifestReader
	store    storage.ObjectStorage
	bucket   string
	prefix   string
	log      zerolog.Logger
}

func New(manifest ManifestReader, store storage.ObjectStorage, bucket, prefix string) *Cleaner {
	return &Cleaner{
		manifest: manifest,
		store:    store,
		bucket:   bucket,
		prefix:   prefix,
		log:      logger.Component("cleanup"),
	}
}

// Run re-reads the manifest and deletes every input key derived from it.
// The first failure stops the run; objects already deleted stay deleted.
func (c *Cleaner) Run(ctx context.Context) ([]string, error) {
	m, err := c.manifest.Read(ctx)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(m.Data))
	for _, entry := range m.Data {
		key := catalog.InputKey(c.prefix, entry.ID)
		if err := c.store.DeleteObject(ctx, c.bucket, key); err != nil {
			c.log.Error().Stack().Err(err).
				Str("bucket", c.bucket).
				Str("key", key).
				Msg("Error cleaning up input object")
			return deleted, err
		}
		deleted = append(deleted, key)
	}

	c.log.Info().Str("bucket", c.bucket).Int("count", len(deleted)).Msg("Input objects removed")
	return deleted, nil
}
