// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/pdiddy/statute-engine/pkg/types"
)

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "một hai ba", "một hai ba"},
		{"runs collapse to one space", "một   hai\t\tba", "một hai ba"},
		{"newlines collapse", "dòng một\ndòng hai\n\ndòng ba", "dòng một dòng hai dòng ba"},
		{"ends trimmed", "  giữa  ", "giữa"},
		{"empty stays empty", "", ""},
		{"whitespace only becomes empty", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collapse(tt.in); got != tt.want {
				t.Errorf("Collapse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapseIdempotent(t *testing.T) {
	for _, in := range []string{"một   hai\nba", "  x  ", "a b c", ""} {
		once := Collapse(in)
		if twice := Collapse(once); twice != once {
			t.Errorf("Collapse not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestDocument(t *testing.T) {
	doc := &types.Document{
		Structure: []*types.Chapter{{
			Type:  "chapter",
			Title: "QUY  ĐỊNH", // titles are out of scope for collapse
			Articles: []*types.Article{{
				Number: 1,
				Text:   "đoạn một\nđoạn hai",
				Clauses: []*types.Clause{
					{Number: 1, Text: "khoản  một"},
					{Number: 2, Text: " khoản hai "},
				},
			}},
		}},
	}
	Document(doc)
	art := doc.Structure[0].Articles[0]
	if art.Text != "đoạn một đoạn hai" {
		t.Errorf("article text = %q", art.Text)
	}
	if got := art.Clauses[0].Text; got != "khoản một" {
		t.Errorf("clause 1 text = %q", got)
	}
	if got := art.Clauses[1].Text; got != "khoản hai" {
		t.Errorf("clause 2 text = %q", got)
	}
	if got := doc.Structure[0].Title; got != "QUY  ĐỊNH" {
		t.Errorf("title changed to %q", got)
	}
}

func TestNFC(t *testing.T) {
	// "ế" spelled as precomposed "ê" plus a combining acute accent.
	decomposed := "tiếp"
	composed := "tiếp"
	if got := NFC(decomposed); got != composed {
		t.Errorf("NFC(%q) = %q, want %q", decomposed, got, composed)
	}
	if got := NFC(composed); got != composed {
		t.Errorf("NFC not stable on composed input: %q", got)
	}
}
