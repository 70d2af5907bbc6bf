package catalog

import (
	"path"
	"strings"
)

const (
	productImageSuffix    = "-product.png"
	catalogImageSuffix    = "-catalog.png"
	productMetadataSuffix = "-product-metadata.json"
	catalogMetadataSuffix = "-catalog-metadata.json"
)

// ImageAsset returns the base name of the first asset that looks like a PNG
// image, or "" when there is none.
func ImageAsset(assets []string) string {
	return firstAsset(assets, ".png")
}

// MetadataAsset returns the base name of the first JSON asset, or "".
func MetadataAsset(assets []string) string {
	return firstAsset(assets, ".json")
}

func firstAsset(assets []string, marker string) string {
	for _, asset := range assets {
		if strings.Contains(asset, marker) {
			return path.Base(asset)
		}
	}
	return ""
}

func ProductImageStem(name string) string {
	return strings.TrimSuffix(name, productImageSuffix)
}

func CatalogImageStem(name string) string {
	return strings.TrimSuffix(name, catalogImageSuffix)
}

func ProductMetadataStem(name string) string {
	return strings.TrimSuffix(name, productMetadataSuffix)
}

func CatalogMetadataStem(name string) string {
	return strings.TrimSuffix(name, catalogMetadataSuffix)
}
