// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds an indexed article with law metadata for export.
type ExportEntry struct {
	ID            string     `json:"id" yaml:"id"`
	LawID         string     `json:"law_id" yaml:"law_id"`
	ChapterNumber string     `json:"chapter_number" yaml:"chapter_number"`
	ChapterTitle  string     `json:"chapter_title" yaml:"chapter_title"`
	Number        int        `json:"number" yaml:"number"`
	Title         string     `json:"title" yaml:"title"`
	Text          string     `json:"text" yaml:"text"`
	Law           *ExportLaw `json:"law,omitempty" yaml:"law,omitempty"`
}

// ExportLaw holds the law-level fields included in each export entry.
type ExportLaw struct {
	Title  string `json:"title" yaml:"title"`
	Issuer string `json:"issuer" yaml:"issuer"`
}

const exportLimit = 100000

// ExportYAML writes the article index to indexDir/export.yaml. It
// supports the same filters as Search.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the article index to indexDir/export.json. It
// supports the same filters as Search.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	results, err := s.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:            r.ID,
			LawID:         r.LawID,
			ChapterNumber: r.ChapterNumber,
			ChapterTitle:  r.ChapterTitle,
			Number:        r.Number,
			Title:         r.Title,
			Text:          r.Text,
		}
		if r.LawTitle != "" || r.LawIssuer != "" {
			entries[i].Law = &ExportLaw{
				Title:  r.LawTitle,
				Issuer: r.LawIssuer,
			}
		}
	}

	return entries, nil
}
