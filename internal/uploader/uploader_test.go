package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/internal/storage"
)

// rewritingStore returns a modified body on read to simulate a bad write.
type rewritingStore struct {
	storage.ObjectStorage
	rewrite func([]byte) []byte
}

func (s *rewritingStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	data, err := s.ObjectStorage.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return s.rewrite(data), nil
}

// failingStore fails every put after the first n.
type failingStore struct {
	storage.ObjectStorage
	allowed int
	puts    int
}

func (s *failingStore) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	s.puts++
	if s.puts > s.allowed {
		return errors.New("access denied")
	}
	return s.ObjectStorage.PutObject(ctx, bucket, key, data)
}

func newStore(t *testing.T) *storage.BackendClient {
	t.Helper()
	store, err := storage.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	return store
}

func sampleManifest() *catalog.Manifest {
	return &catalog.Manifest{Data: []catalog.Entry{
		{ID: 1, Type: catalog.SampleType, Assets: []string{"a-catalog.png"}},
		{ID: 2, Type: catalog.SampleType, Assets: []string{"b-catalog.png", "b-catalog-metadata.json"}},
	}}
}

func TestUpload(t *testing.T) {
	store := newStore(t)
	fixed := time.Unix(1700000000, 0)
	u := New(store, "inputs", "cron-test", WithClock(func() time.Time { return fixed }))

	keys, err := u.Upload(context.Background(), sampleManifest())
	require.NoError(t, err)
	assert.Equal(t, []string{"cron-test/sample-catalog-1.json", "cron-test/sample-catalog-2.json"}, keys)

	data, err := store.GetObject(context.Background(), "inputs", "cron-test/sample-catalog-2.json")
	require.NoError(t, err)

	var got catalog.Entry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2, got.ID)
	assert.Equal(t, catalog.SampleType, got.Type)
	assert.Equal(t, []string{"b-catalog.png", "b-catalog-metadata.json"}, got.Assets)
	assert.Equal(t, float64(1700000000), got.Timestamp)
}

func TestUploadDoesNotMutateManifest(t *testing.T) {
	m := sampleManifest()
	_, err := New(newStore(t), "inputs", "p").Upload(context.Background(), m)
	require.NoError(t, err)
	assert.Zero(t, m.Data[0].Timestamp)
}

func TestUploadEmptyManifest(t *testing.T) {
	_, err := New(newStore(t), "inputs", "p").Upload(context.Background(), &catalog.Manifest{})
	assert.ErrorIs(t, err, catalog.ErrEmptyManifest)
}

func TestUploadRejectsUnexpectedType(t *testing.T) {
	m := sampleManifest()
	m.Data[1].Type = "production-catalog"

	keys, err := New(newStore(t), "inputs", "p").Upload(context.Background(), m)
	assert.ErrorIs(t, err, catalog.ErrUnexpectedType)
	assert.Equal(t, []string{"p/sample-catalog-1.json"}, keys, "entries before the bad one are still uploaded")
}

func TestUploadStopsOnFirstPutFailure(t *testing.T) {
	store := &failingStore{ObjectStorage: newStore(t), allowed: 1}
	m := sampleManifest()
	m.Data = append(m.Data, catalog.Entry{ID: 3, Type: catalog.SampleType})

	keys, err := New(store, "inputs", "p").Upload(context.Background(), m)
	require.Error(t, err)
	assert.Equal(t, []string{"p/sample-catalog-1.json"}, keys)
	assert.Equal(t, 2, store.puts, "no attempt is made after the failing entry")
}

func TestUploadDetectsRoundTripMismatch(t *testing.T) {
	tests := []struct {
		name    string
		rewrite func([]byte) []byte
	}{
		{
			name:    "id changed",
			rewrite: func([]byte) []byte { return []byte(`{"id":99,"type":"sample-catalog"}`) },
		},
		{
			name:    "type changed",
			rewrite: func([]byte) []byte { return []byte(`{"id":1,"type":"other"}`) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &rewritingStore{ObjectStorage: newStore(t), rewrite: tt.rewrite}
			_, err := New(store, "inputs", "p").Upload(context.Background(), sampleManifest())
			assert.ErrorIs(t, err, ErrRoundTripMismatch)
		})
	}
}

func TestUploadUnreadableReadBack(t *testing.T) {
	store := &rewritingStore{ObjectStorage: newStore(t), rewrite: func([]byte) []byte { return []byte("{") }}
	_, err := New(store, "inputs", "p").Upload(context.Background(), sampleManifest())
	assert.Error(t, err)
}
