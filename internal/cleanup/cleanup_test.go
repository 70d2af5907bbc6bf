package cleanup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/catalog-e2e/internal/manifest"
	"github.com/andresuchdata/catalog-e2e/internal/storage"
	"github.com/andresuchdata/catalog-e2e/internal/uploader"
)

const manifestJSON = `{"data":[
	{"id":1,"type":"sample-catalog","assets":[]},
	{"id":2,"type":"sample-catalog","assets":[]}
]}`

type deleteFailingStore struct {
	storage.ObjectStorage
	failKey string
}

func (s *deleteFailingStore) DeleteObject(ctx context.Context, bucket, key string) error {
	if key == s.failKey {
		return errors.New("access denied")
	}
	return s.ObjectStorage.DeleteObject(ctx, bucket, key)
}

func setup(t *testing.T) (*storage.BackendClient, *manifest.Reader) {
	t.Helper()
	store, err := storage.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.PutObject(context.Background(), "assets", "manifest.json", []byte(manifestJSON)))
	return store, manifest.NewReader(store, "assets", "manifest.json")
}

func TestRunRemovesUploadedKeys(t *testing.T) {
	store, reader := setup(t)
	ctx := context.Background()

	m, err := reader.Read(ctx)
	require.NoError(t, err)
	uploaded, err := uploader.New(store, "inputs", "cron").Upload(ctx, m)
	require.NoError(t, err)

	// Unrelated objects under the same prefix are left alone.
	require.NoError(t, store.PutObject(ctx, "inputs", "cron/other.json", []byte("{}")))

	deleted, err := New(reader, store, "inputs", "cron").Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, uploaded, deleted)

	for _, key := range uploaded {
		_, err := store.GetObject(ctx, "inputs", key)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	}
	_, err = store.GetObject(ctx, "inputs", "cron/other.json")
	assert.NoError(t, err)
}

func TestRunIsIdempotent(t *testing.T) {
	store, reader := setup(t)
	c := New(reader, store, "inputs", "cron")

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	_, err = c.Run(context.Background())
	assert.NoError(t, err)
}

func TestRunStopsOnDeleteFailure(t *testing.T) {
	store, reader := setup(t)
	failing := &deleteFailingStore{ObjectStorage: store, failKey: "cron/sample-catalog-1.json"}

	deleted, err := New(reader, failing, "inputs", "cron").Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, deleted)
}

func TestRunManifestFailure(t *testing.T) {
	store, err := storage.NewLocalClient(t.TempDir())
	require.NoError(t, err)

	_, err = New(manifest.NewReader(store, "assets", "missing.json"), store, "inputs", "cron").Run(context.Background())
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
