package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/internal/storage"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

// ErrRoundTripMismatch is returned when an uploaded entry reads back with a
// different type or id.
var ErrRoundTripMismatch = errors.New("uploaded catalog does not match")

// Uploader writes manifest entries into the inputs bucket as timestamped
// JSON objects and verifies each write by reading it back.
type Uploader struct {
	store  storage.ObjectStorage
	bucket string
	prefix string
	now    func() time.Time
	log    zerolog.Logger
}

type Option func(*Uploader)

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		u.now = now
	}
}

func New(store storage.ObjectStorage, bucket, prefix string, opts ...Option) *Uploader {
	u := &Uploader{
		store:  store,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		log:    logger.Component("uploader"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload uploads every entry in manifest order. The first failure stops the
// run; the keys written before it are returned alongside the error.
func (u *Uploader) Upload(ctx context.Context, m *catalog.Manifest) ([]string, error) {
	if m.Empty() {
		return nil, catalog.ErrEmptyManifest
	}

	keys := make([]string, 0, len(m.Data))
	for _, entry := range m.Data {
		if err := entry.CheckType(); err != nil {
			return keys, err
		}
		key, err := u.UploadEntry(ctx, entry)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	u.log.Info().Str("bucket", u.bucket).Int("count", len(keys)).Msg("Sample catalogs uploaded")
	return keys, nil
}

// UploadEntry stamps, writes and verifies a single entry.
func (u *Uploader) UploadEntry(ctx context.Context, entry catalog.Entry) (string, error) {
	key := catalog.InputKey(u.prefix, entry.ID)
	logCtx := u.log.With().Str("bucket", u.bucket).Str("key", key).Int("catalog_id", entry.ID).Logger()

	entry.Stamp(u.now())
	body, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encoding catalog %d: %w", entry.ID, err)
	}

	if err := u.store.PutObject(ctx, u.bucket, key, body); err != nil {
		logCtx.Error().Stack().Err(err).Msg("Error putting object into bucket, make sure it exists")
		return "", err
	}

	if err := u.verify(ctx, key, entry.ID); err != nil {
		logCtx.Error().Stack().Err(err).Msg("Uploaded catalog failed verification")
		return "", err
	}

	logCtx.Debug().Msg("Catalog uploaded")
	return key, nil
}

func (u *Uploader) verify(ctx context.Context, key string, id int) error {
	data, err := u.store.GetObject(ctx, u.bucket, key)
	if err != nil {
		return err
	}

	var got catalog.Entry
	if err := json.Unmarshal(data, &got); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	if got.Type != catalog.SampleType {
		return fmt.Errorf("%w: %s has type %q, want %q", ErrRoundTripMismatch, key, got.Type, catalog.SampleType)
	}
	if got.ID != id {
		return fmt.Errorf("%w: %s has id %d, want %d", ErrRoundTripMismatch, key, got.ID, id)
	}
	return nil
}
