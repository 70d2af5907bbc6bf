// Package await polls the pipeline catalog until ingestion has settled for
// every uploaded sample.
package await

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/internal/config"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

// ErrNotSettled is returned when the catalog is still converging at timeout.
var ErrNotSettled = errors.New("pipeline catalog has not settled")

// CatalogSource fetches the output catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) ([]catalog.OutputEntry, error)
}

type Waiter struct {
	source    CatalogSource
	ingesting []int
	timeout  time.Duration
	interval time.Duration
	log      zerolog.Logger
}

// New builds a Waiter. Entries listed in expected.Ingesting may stay
// ingesting without holding up the wait.
func New(source CatalogSource, expected config.ExpectedConfig, timeout, interval time.Duration) *Waiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &Waiter{
		source:    source,
		ingesting: expected.Ingesting,
		timeout:  timeout,
		interval: interval,
		log:      logger.Component("await"),
	}
}

// Settled reports whether the catalog holds exactly want entries and every
// entry still ingesting is one of the ids expected to stay ingesting.
func Settled(entries []catalog.OutputEntry, want int, ingesting []int) bool {
	if len(entries) != want {
		return false
	}
	return countPending(entries, ingesting) == 0
}

// Wait polls until Settled holds for the manifest's size, backing off
// exponentially from the configured interval. Fetch errors are retried.
func (w *Waiter) Wait(ctx context.Context, m *catalog.Manifest) ([]catalog.OutputEntry, error) {
	want := len(m.Data)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.interval
	b.MaxInterval = 8 * w.interval

	var last []catalog.OutputEntry
	operation := func() ([]catalog.OutputEntry, error) {
		entries, err := w.source.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		last = entries
		if !Settled(entries, want, w.ingesting) {
			return nil, fmt.Errorf("%w: %d/%d entries, %d still ingesting", ErrNotSettled, len(entries), want, countPending(entries, w.ingesting))
		}
		return entries, nil
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithNotify(func(err error, next time.Duration) {
			w.log.Info().Err(err).Dur("next", next).Msg("Waiting for pipeline")
		}),
	}
	if w.timeout > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(w.timeout))
	}

	entries, err := backoff.Retry(ctx, operation, opts...)
	if err != nil {
		w.log.Error().Err(err).Int("entries", len(last)).Int("expected", want).Msg("Pipeline did not settle")
		return last, err
	}

	w.log.Info().Int("entries", len(entries)).Msg("Pipeline settled")
	return entries, nil
}

// countPending counts ingesting entries whose id is not expected to stay
// ingesting.
func countPending(entries []catalog.OutputEntry, ingesting []int) int {
	n := 0
	for _, e := range entries {
		if e.Status == catalog.StatusIngesting && !slices.Contains(ingesting, e.ID) {
			n++
		}
	}
	return n
}
