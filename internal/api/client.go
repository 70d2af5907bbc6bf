package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/pkg/logger"
)

// Client reads the pipeline's output catalog and products. Each call is a
// single unauthenticated GET with no retry and no pagination.
type Client struct {
	catalogURL string
	productURL string
	http       *http.Client
	log        zerolog.Logger
}

// NewClient builds a Client. A zero timeout leaves the http.Client default.
func NewClient(catalogURL, productURL string, timeout time.Duration) *Client {
	return &Client{
		catalogURL: catalogURL,
		productURL: productURL,
		http:       &http.Client{Timeout: timeout},
		log:        logger.Component("api"),
	}
}

// Catalog fetches the output catalog.
func (c *Client) Catalog(ctx context.Context) ([]catalog.OutputEntry, error) {
	var entries []catalog.OutputEntry
	if err := c.getJSON(ctx, c.catalogURL, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Products fetches the derived product records.
func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.getJSON(ctx, c.productURL, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	err := c.doGet(ctx, url, out)
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("Error fetching pipeline resource")
	}
	return err
}

func (c *Client) doGet(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: unexpected status code %d", url, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
