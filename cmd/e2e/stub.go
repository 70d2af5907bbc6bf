package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/catalog-e2e/internal/api"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

func runStub(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))
	gin.SetMode(gin.ReleaseMode)

	fixtures, err := api.LoadFixtures(c.String("fixtures"))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           api.NewStubServer(fixtures).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().
			Str("addr", srv.Addr).
			Str("catalog", api.CatalogPath).
			Str("products", api.ProductsPath).
			Msg("Starting stub pipeline API")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-c.Context.Done():
	}

	logger.Log.Info().Msg("Shutting down stub...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
