// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.yaml.in/yaml/v3"
)

// ChapterNumber is a chapter heading number. Roman numerals I through XV
// decode to their integer value; a token outside that table keeps its raw
// text and serializes as a string instead of a number.
type ChapterNumber struct {
	// Value is the decoded integer (1-15) when the heading token was in
	// the roman table.
	Value int

	// Raw is the original heading token, set only when it was outside
	// the roman table. When Raw is non-empty, Value is zero.
	Raw string
}

// String returns the raw token when set, otherwise the decimal value.
func (n ChapterNumber) String() string {
	if n.Raw != "" {
		return n.Raw
	}
	return strconv.Itoa(n.Value)
}

// MarshalJSON emits the decoded integer, or the raw token as a JSON string.
func (n ChapterNumber) MarshalJSON() ([]byte, error) {
	if n.Raw != "" {
		return json.Marshal(n.Raw)
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (n *ChapterNumber) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		*n = ChapterNumber{Value: v}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("chapter number must be an integer or a string: %w", err)
	}
	*n = ChapterNumber{Raw: s}
	return nil
}

// MarshalYAML emits the decoded integer, or the raw token as a string.
func (n ChapterNumber) MarshalYAML() (any, error) {
	if n.Raw != "" {
		return n.Raw, nil
	}
	return n.Value, nil
}

// UnmarshalYAML accepts either an integer or a string scalar.
func (n *ChapterNumber) UnmarshalYAML(node *yaml.Node) error {
	var v int
	if err := node.Decode(&v); err == nil {
		*n = ChapterNumber{Value: v}
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("chapter number must be an integer or a string: %w", err)
	}
	*n = ChapterNumber{Raw: s}
	return nil
}

// Clause is a numbered sub-unit (khoản) within an article.
type Clause struct {
	// Number is the clause number parsed from the heading line.
	Number int `json:"number" yaml:"number"`

	// Text is the clause body. Single-line after normalization.
	Text string `json:"text" yaml:"text"`
}

// Article is a numbered unit (Điều) within a chapter.
type Article struct {
	// Number is the article number parsed from the heading line.
	Number int `json:"number" yaml:"number"`

	// Title is the full heading including the marker, e.g. "Điều 3. Phạm vi".
	Title string `json:"title" yaml:"title"`

	// Text is free paragraph content preceding any numbered clause.
	// Non-empty only while Clauses is empty.
	Text string `json:"text" yaml:"text"`

	// Clauses lists the article's numbered clauses in document order.
	Clauses []*Clause `json:"clauses" yaml:"clauses"`
}

// Chapter is a top-level structural unit (Chương) of a statute.
type Chapter struct {
	// Type discriminates structural units; always "chapter".
	Type string `json:"type" yaml:"type"`

	// Number is the decoded heading number (see ChapterNumber).
	Number ChapterNumber `json:"number" yaml:"number"`

	// Title is the chapter title, adopted from the first qualifying line
	// after the heading. Assigned at most once; may stay empty.
	Title string `json:"title" yaml:"title"`

	// Articles lists the chapter's articles in document order.
	Articles []*Article `json:"articles" yaml:"articles"`
}

// CompositeMetadata is the identifier envelope of the composite form.
// All fields default to empty strings; nothing is auto-generated, so
// composite output stays deterministic.
type CompositeMetadata struct {
	// LawID identifies the primary law across versions.
	LawID string `json:"law_id" yaml:"law_id"`

	// VersionID identifies this composite build.
	VersionID string `json:"version_id" yaml:"version_id"`

	// Status is the composite's review status.
	Status string `json:"status" yaml:"status"`

	// LastUpdated is a caller-supplied timestamp, kept verbatim.
	LastUpdated string `json:"last_updated" yaml:"last_updated"`
}

// Document is one statutory document: descriptive scalar fields plus the
// chapter hierarchy recovered from its text.
type Document struct {
	// Type is the document kind (e.g. "law", "decree", "circular").
	Type string `json:"type" yaml:"type"`

	// Issuer is the promulgating body.
	Issuer string `json:"issuer" yaml:"issuer"`

	// Title is the document title.
	Title string `json:"title" yaml:"title"`

	// SourceURL is the URL the source text was retrieved from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PromulgationDate is the date of promulgation, kept verbatim.
	PromulgationDate string `json:"promulgation_date" yaml:"promulgation_date"`

	// EffectiveDate is the date of effect, kept verbatim.
	EffectiveDate string `json:"effective_date" yaml:"effective_date"`

	// Status is the document's legal status (e.g. "Còn hiệu lực").
	Status string `json:"status" yaml:"status"`

	// Structure lists the document's chapters in document order.
	Structure []*Chapter `json:"structure" yaml:"structure"`
}
