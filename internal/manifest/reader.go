package manifest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/internal/storage"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

// Reader fetches the sample manifest from the assets bucket.
type Reader struct {
	store  storage.ObjectStorage
	bucket string
	key    string
	log    zerolog.Logger
}

func NewReader(store storage.ObjectStorage, bucket, key string) *Reader {
	return &Reader{
		store:  store,
		bucket: bucket,
		key:    key,
		log:    logger.Component("manifest"),
	}
}

// Read makes a single attempt to fetch and decode the manifest.
func (r *Reader) Read(ctx context.Context) (*catalog.Manifest, error) {
	data, err := r.store.GetObject(ctx, r.bucket, r.key)
	if err != nil {
		r.log.Error().Stack().Err(err).
			Str("bucket", r.bucket).
			Str("key", r.key).
			Msg("Error getting manifest object, make sure the bucket and key exist")
		return nil, err
	}

	m, err := catalog.ParseManifest(data)
	if err != nil {
		r.log.Error().Err(err).
			Str("bucket", r.bucket).
			Str("key", r.key).
			Msg("Manifest object is not valid JSON")
		return nil, err
	}

	r.log.Debug().Str("bucket", r.bucket).Str("key", r.key).Int("entries", len(m.Data)).Msg("Manifest loaded")
	return m, nil
}
