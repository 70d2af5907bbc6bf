//go:build e2e

package e2e

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/catalog-e2e/internal/api"
	"github.com/andresuchdata/catalog-e2e/internal/config"
	"github.com/andresuchdata/catalog-e2e/internal/manifest"
	"github.com/andresuchdata/catalog-e2e/internal/storage"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

type liveEnv struct {
	cfg      *config.Config
	store    storage.ObjectStorage
	manifest *manifest.Reader
	api      *api.Client
}

// newLiveEnv skips the calling test when E2E_CONFIG is not set.
func newLiveEnv(t *testing.T) *liveEnv {
	t.Helper()

	path := os.Getenv("E2E_CONFIG")
	if path == "" {
		t.Skip("E2E_CONFIG not set, skipping live suite")
	}

	cfg, err := config.Load(path)
	require.NoError(t, err, "Failed to load E2E config")
	logger.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	store, err := storage.New(cfg.Storage)
	require.NoError(t, err, "Failed to initialize object storage")

	return &liveEnv{
		cfg:      cfg,
		store:    store,
		manifest: manifest.NewReader(store, cfg.Assets.BucketName, cfg.Assets.BucketKey),
		api:      api.NewClient(cfg.API.CatalogURL, cfg.API.ProductURL, cfg.API.Timeout),
	}
}
