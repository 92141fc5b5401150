// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize flattens whitespace in parsed statute records and
// folds raw input text to Unicode NFC.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/statute-engine/pkg/types"
)

// Collapse replaces every maximal whitespace run, newlines included,
// with a single space and trims the ends. Idempotent.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Document collapses whitespace in every article and clause text field,
// in place. Chapter titles are single trimmed lines already and are
// left alone.
func Document(doc *types.Document) {
	for _, ch := range doc.Structure {
		for _, art := range ch.Articles {
			art.Text = Collapse(art.Text)
			for _, cl := range art.Clauses {
				cl.Text = Collapse(cl.Text)
			}
		}
	}
}

// NFC folds raw input text to Unicode NFC so composed and decomposed
// Vietnamese spellings parse identically. Applied to file text before
// parsing, never to parsed records.
func NFC(s string) string {
	return norm.NFC.String(s)
}
