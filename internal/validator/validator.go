package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/internal/config"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

// ManifestReader fetches the sample manifest.
type ManifestReader interface {
	Read(ctx context.Context) (*catalog.Manifest, error)
}

// PipelineAPI fetches what the pipeline produced.
type PipelineAPI interface {
	Catalog(ctx context.Context) ([]catalog.OutputEntry, error)
	Products(ctx context.Context) ([]catalog.Product, error)
}

// Result is the outcome of one check.
type Result struct {
	Name string
	Err  error
}

func (r Result) Passed() bool { return r.Err == nil }

// Report collects the outcome of every check in a run.
type Report struct {
	Results []Result
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return true
		}
	}
	return false
}

// Err joins every failure into one error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if !res.Passed() {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *Report) String() string {
	var b strings.Builder
	for _, res := range r.Results {
		status := "PASS"
		if !res.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s %s", status, res.Name)
		if !res.Passed() {
			fmt.Fprintf(&b, ": %v", res.Err)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Validator runs the functional checks against the pipeline's output.
type Validator struct {
	manifest ManifestReader
	api      PipelineAPI
	expected config.ExpectedConfig
	log      zerolog.Logger
}

func New(manifest ManifestReader, api PipelineAPI, expected config.ExpectedConfig) *Validator {
	return &Validator{
		manifest: manifest,
		api:      api,
		expected: expected,
		log:      logger.Component("validator"),
	}
}

// Load fetches the manifest, catalog and products once each.
func (v *Validator) Load(ctx context.Context) (*State, error) {
	m, err := v.manifest.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	entries, err := v.api.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	products, err := v.api.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	return &State{
		Manifest: m,
		Catalog:  entries,
		Products: products,
		Expected: v.expected,
	}, nil
}

// Run loads the state and executes every check. The returned error is only
// set when loading fails; check failures are in the report.
func (v *Validator) Run(ctx context.Context) (*Report, error) {
	state, err := v.Load(ctx)
	if err != nil {
		v.log.Error().Err(err).Msg("Unable to load pipeline state")
		return nil, err
	}
	return v.RunChecks(state), nil
}

// RunChecks executes every check against an already loaded state.
func (v *Validator) RunChecks(state *State) *Report {
	report := &Report{Results: make([]Result, 0, len(Checks))}
	for _, check := range Checks {
		err := check.Run(state)
		report.Results = append(report.Results, Result{Name: check.Name, Err: err})
		if err != nil {
			v.log.Error().Str("check", check.Name).Err(err).Msg("Check failed")
		} else {
			v.log.Info().Str("check", check.Name).Msg("Check passed")
		}
	}
	return report
}
