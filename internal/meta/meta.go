// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package meta loads auxiliary document metadata and merges it into
// parsed statute records.
package meta

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/statute-engine/pkg/types"
)

// Load reads a metadata JSON file, either a flat object or one wrapped
// under content.law, and returns the flat field map.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return unwrap(raw), nil
}

// unwrap returns the object under content.law when both levels are
// objects, otherwise the input itself.
func unwrap(raw map[string]any) map[string]any {
	content, ok := raw["content"].(map[string]any)
	if !ok {
		return raw
	}
	law, ok := content["law"].(map[string]any)
	if !ok {
		return raw
	}
	return law
}

// Merge overwrites document fields with non-empty metadata values.
// Exactly issuer, title, source_url, promulgation_date, effective_date,
// and status participate; type and structure are never touched.
func Merge(doc *types.Document, fields map[string]any) {
	set := func(dst *string, key string) {
		if s, ok := fields[key].(string); ok && s != "" {
			*dst = s
		}
	}
	set(&doc.Issuer, "issuer")
	set(&doc.Title, "title")
	set(&doc.SourceURL, "source_url")
	set(&doc.PromulgationDate, "promulgation_date")
	set(&doc.EffectiveDate, "effective_date")
	set(&doc.Status, "status")
}
