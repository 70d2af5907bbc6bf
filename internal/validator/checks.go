package validator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/andresuchdata/catalog-e2e/internal/catalog"
	"github.com/andresuchdata/catalog-e2e/internal/config"
)

// ErrCheckFailed wraps every assertion failure reported by a check.
var ErrCheckFailed = errors.New("check failed")

// State is everything the checks assert against, loaded once per run.
type State struct {
	Manifest *catalog.Manifest
	Catalog  []catalog.OutputEntry
	Products []catalog.Product
	Expected config.ExpectedConfig
}

// Check is a single independent assertion group.
type Check struct {
	Name string
	Run  func(*State) error
}

// Checks lists the assertion groups in the order they are reported.
var Checks = []Check{
	{Name: "catalog_size", Run: CheckCatalogSize},
	{Name: "catalog_status", Run: CheckCatalogStatus},
	{Name: "products_size", Run: CheckProductsSize},
	{Name: "product_status", Run: CheckProductStatus},
	{Name: "product_image_assets", Run: CheckProductImageAssets},
	{Name: "product_metadata_assets", Run: CheckProductMetadataAssets},
}

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCheckFailed}, args...)...)
}

// CheckCatalogSize asserts the pipeline reports one catalog entry per
// manifest entry.
func CheckCatalogSize(s *State) error {
	if got, want := len(s.Catalog), len(s.Manifest.Data); got != want {
		return failf("catalog has %d entries, manifest has %d", got, want)
	}
	return nil
}

// CheckCatalogStatus asserts each entry's id is expected in its status.
// Unknown statuses are not checked.
func CheckCatalogStatus(s *State) error {
	for _, entry := range s.Catalog {
		var expected []int
		switch entry.Status {
		case catalog.StatusIngesting:
			expected = s.Expected.Ingesting
		case catalog.StatusComplete:
			expected = s.Expected.Complete
		case catalog.StatusFailed:
			expected = s.Expected.Failed
		default:
			continue
		}
		if !slices.Contains(expected, entry.ID) {
			return failf("catalog entry %d is %s, expected %s ids are %v", entry.ID, entry.Status, entry.Status, expected)
		}
	}
	return nil
}

// CheckProductsSize asserts one product per expected complete entry.
func CheckProductsSize(s *State) error {
	if got, want := len(s.Products), len(s.Expected.Complete); got != want {
		return failf("%d products, expected %d complete entries", got, want)
	}
	return nil
}

// CheckProductStatus asserts a product exists iff its catalog entry is
// complete, and that linked products are processing or complete.
func CheckProductStatus(s *State) error {
	products := catalog.IndexProducts(s.Products)
	for _, entry := range s.Catalog {
		product, ok := products[entry.ID]
		if entry.Status != catalog.StatusComplete {
			if ok {
				return failf("catalog entry %d is %s but has a product", entry.ID, entry.Status)
			}
			continue
		}
		if !ok {
			return failf("catalog entry %d is complete but has no product", entry.ID)
		}
		if !product.Status.Valid() {
			return failf("product for entry %d has status %q", entry.ID, product.Status)
		}
	}
	return nil
}

// CheckProductImageAssets asserts complete products and their catalog entry
// share an image stem.
func CheckProductImageAssets(s *State) error {
	return checkAssetStems(s, "image", catalog.ImageAsset, catalog.ProductImageStem, catalog.CatalogImageStem)
}

// CheckProductMetadataAssets asserts complete products and their catalog
// entry share a metadata stem.
func CheckProductMetadataAssets(s *State) error {
	return checkAssetStems(s, "metadata", catalog.MetadataAsset, catalog.ProductMetadataStem, catalog.CatalogMetadataStem)
}

func checkAssetStems(
	s *State,
	kind string,
	pick func([]string) string,
	productStem, catalogStem func(string) string,
) error {
	entries := catalog.IndexOutput(s.Catalog)
	for _, product := range s.Products {
		if product.Status != catalog.ProductComplete {
			continue
		}
		productAsset := pick(product.Assets)
		if productAsset == "" {
			return failf("product for entry %d has no %s asset", product.InputID, kind)
		}
		entry, ok := entries[product.InputID]
		if !ok {
			return failf("product references unknown catalog entry %d", product.InputID)
		}
		catalogAsset := pick(entry.Assets)
		if got, want := productStem(productAsset), catalogStem(catalogAsset); got != want {
			return failf("entry %d %s stem mismatch: product %q, catalog %q", product.InputID, kind, productAsset, catalogAsset)
		}
	}
	return nil
}
