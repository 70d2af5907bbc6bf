// Package catalog holds the records exchanged with the ingestion pipeline:
// the sample manifest, the uploaded input entries, and the output catalog
// and product documents served by the pipeline API.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SampleType is the type tag every manifest entry must carry.
const SampleType = "sample-catalog"

var (
	// ErrEmptyManifest is returned when a manifest has no data entries.
	ErrEmptyManifest = errors.New("manifest has no catalog entries")
	// ErrUnexpectedType is returned when an entry is not a sample catalog.
	ErrUnexpectedType = errors.New("unexpected catalog entry type")
)

// Status of an output catalog entry.
type Status string

const (
	StatusIngesting Status = "ingesting"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
)

// ProductStatus of a derived product record.
type ProductStatus string

const (
	ProductProcessing ProductStatus = "processing"
	ProductComplete   ProductStatus = "complete"
)

// Valid reports whether s is a status a linked product may carry.
func (s ProductStatus) Valid() bool {
	return s == ProductProcessing || s == ProductComplete
}

// Manifest describes all sample catalogs to ingest.
type Manifest struct {
	Data []Entry `json:"data"`
}

// Empty reports whether the manifest has no entries.
func (m *Manifest) Empty() bool {
	return m == nil || len(m.Data) == 0
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// OutputEntry is the pipeline's ingestion record for one input.
type OutputEntry struct {
	ID     int      `json:"id"`
	Status Status   `json:"status"`
	Assets []string `json:"assets"`
}

// Product is the artifact set derived from a completed catalog entry.
type Product struct {
	InputID int           `json:"input_id"`
	Status  ProductStatus `json:"status"`
	Assets  []string      `json:"assets"`
}

// InputKey is the object key a sample catalog is uploaded to, formatted as
// {prefix}/sample-catalog-{id}.json. The prefix is used verbatim.
func InputKey(prefix string, id int) string {
	return fmt.Sprintf("%s/%s-%d.json", prefix, SampleType, id)
}

// IndexOutput maps output entries by id. Later duplicates win.
func IndexOutput(entries []OutputEntry) map[int]OutputEntry {
	index := make(map[int]OutputEntry, len(entries))
	for _, e := range entries {
		index[e.ID] = e
	}
	return index
}

// IndexProducts maps products by input id. Later duplicates win.
func IndexProducts(products []Product) map[int]Product {
	index := make(map[int]Product, len(products))
	for _, p := range products {
		index[p.InputID] = p
	}
	return index
}
