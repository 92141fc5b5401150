// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads statute source texts listed in a catalog and
// seeds their metadata sidecars.
package fetch

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// CatalogEntry describes one source document to download.
type CatalogEntry struct {
	// ID names the document; it becomes the output file base name.
	ID string `yaml:"id"`

	// URL is the source text location.
	URL string `yaml:"url"`

	// Type is the document kind (law, decree, resolution, circular).
	Type string `yaml:"type,omitempty"`

	// Title is the official document title.
	Title string `yaml:"title,omitempty"`
}

// Catalog is the on-disk source list, kept under version control next
// to the pipeline config.
type Catalog struct {
	Sources []CatalogEntry `yaml:"sources"`
}

// LoadCatalog reads and validates a catalog YAML file.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	for i, entry := range cat.Sources {
		if entry.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if entry.URL == "" {
			return nil, fmt.Errorf("catalog entry %d (%s): missing url", i, entry.ID)
		}
	}

	return cat.Sources, nil
}
