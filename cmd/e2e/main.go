package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/catalog-e2e/internal/api"
	"github.com/andresuchdata/catalog-e2e/internal/config"
	"github.com/andresuchdata/catalog-e2e/internal/manifest"
	"github.com/andresuchdata/catalog-e2e/internal/storage"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

type harnessKey struct{}

// harness is what every command needs, built once in Before.
type harness struct {
	cfg      *config.Config
	store    storage.ObjectStorage
	manifest *manifest.Reader
	api      *api.Client
}

func newConfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the ini configuration file",
		Value:   config.DefaultPath,
		EnvVars: []string{"E2E_CONFIG"},
	}
}

func initHarness(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger.Setup(os.Stdout, level, cfg.Logging.Format)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Driver, err)
	}

	h := &harness{
		cfg:      cfg,
		store:    store,
		manifest: manifest.NewReader(store, cfg.Assets.BucketName, cfg.Assets.BucketKey),
		api:      api.NewClient(cfg.API.CatalogURL, cfg.API.ProductURL, cfg.API.Timeout),
	}
	c.Context = context.WithValue(c.Context, harnessKey{}, h)
	return nil
}

func harnessFrom(c *cli.Context) *harness {
	h, _ := c.Context.Value(harnessKey{}).(*harness)
	return h
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "e2e",
		Usage: "End-to-end checks for the catalog ingestion pipeline",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error); overrides Logging.Level",
				EnvVars: []string{"E2E_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "upload",
				Usage:  "Upload every manifest entry into the inputs bucket and verify it",
				Before: initHarness,
				Action: runUpload,
			},
			{
				Name:   "await",
				Usage:  "Poll the catalog until every input has left the ingesting state",
				Before: initHarness,
				Action: runAwait,
			},
			{
				Name:   "validate",
				Usage:  "Assert catalog and product invariants against the manifest",
				Before: initHarness,
				Action: runValidate,
			},
			{
				Name:   "cleanup",
				Usage:  "Delete the uploaded input objects",
				Before: initHarness,
				Action: runCleanup,
			},
			{
				Name:  "run",
				Usage: "Upload, wait for the pipeline, validate, then clean up",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "skip-await",
						Usage: "Validate immediately after uploading",
					},
					&cli.BoolFlag{
						Name:  "keep-inputs",
						Usage: "Do not delete uploaded inputs afterwards",
					},
				},
				Before: initHarness,
				Action: runAll,
			},
			{
				Name:  "stub",
				Usage: "Serve catalog and product fixtures in place of the pipeline API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "fixtures",
						Usage:    "JSON file with catalog and products arrays",
						Required: true,
						EnvVars:  []string{"E2E_STUB_FIXTURES"},
					},
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8080",
						EnvVars: []string{"E2E_STUB_ADDR"},
					},
				},
				Action: runStub,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("e2e failed")
	}
}
