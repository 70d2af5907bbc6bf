package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/catalog-e2e/internal/await"
	"github.com/andresuchdata/catalog-e2e/internal/cleanup"
	"github.com/andresuchdata/catalog-e2e/internal/uploader"
	"github.com/andresuchdata/catalog-e2e/internal/validator"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

func runUpload(c *cli.Context) error {
	h := harnessFrom(c)

	m, err := h.manifest.Read(c.Context)
	if err != nil {
		return err
	}
	u := uploader.New(h.store, h.cfg.Inputs.BucketName, h.cfg.Inputs.Prefix)
	if _, err := u.Upload(c.Context, m); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}

func runAwait(c *cli.Context) error {
	h := harnessFrom(c)

	m, err := h.manifest.Read(c.Context)
	if err != nil {
		return err
	}
	w := await.New(h.api, h.cfg.Expected, h.cfg.Await.Timeout, h.cfg.Await.Interval)
	_, err = w.Wait(c.Context, m)
	return err
}

func runValidate(c *cli.Context) error {
	h := harnessFrom(c)

	v := validator.New(h.manifest, h.api, h.cfg.Expected)
	report, err := v.Run(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, report.String())
	if report.Failed() {
		return fmt.Errorf("validation failed: %w", report.Err())
	}
	return nil
}

func runCleanup(c *cli.Context) error {
	h := harnessFrom(c)

	cl := cleanup.New(h.manifest, h.store, h.cfg.Inputs.BucketName, h.cfg.Inputs.Prefix)
	_, err := cl.Run(c.Context)
	return err
}

// runAll mirrors a full cycle. Cleanup runs even when an earlier step
// failed, like a suite-level teardown.
func runAll(c *cli.Context) (err error) {
	if !c.Bool("keep-inputs") {
		defer func() {
			if cleanupErr := runCleanup(c); cleanupErr != nil {
				err = errors.Join(err, fmt.Errorf("cleanup failed: %w", cleanupErr))
			}
		}()
	}

	if err := runUpload(c); err != nil {
		return err
	}
	if !c.Bool("skip-await") {
		if err := runAwait(c); err != nil {
			logger.Log.Warn().Err(err).Msg("Continuing to validation with an unsettled catalog")
		}
	}
	return runValidate(c)
}
