// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pdiddy/statute-engine/pkg/types"
)

// genPromptTmpl asks the model to write one exam question and its
// answer for an article, again as a bare JSON object.
var genPromptTmpl = template.Must(template.New("gen").Parse(`Dựa vào điều luật sau, hãy soạn một câu hỏi kiểm tra và câu trả lời đúng.

Điều luật:
{{.Reference}}

Chỉ trả về một đối tượng JSON dạng:
{"question": "câu hỏi", "answer": "câu trả lời đúng, dựa hoàn toàn vào điều luật trên"}
`))

// LoadDocument reads a converted statute document.
func LoadDocument(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}
	return &doc, nil
}

// GenerateTestset builds one QA record per article of the document at
// lawPath. Record IDs take the form <file base>-art-<article number>.
// An article the model fails on is skipped with a warning; limit > 0
// caps the number of records.
func GenerateTestset(ctx context.Context, backend Backend, lawPath string, limit int, w io.Writer) ([]types.QARecord, error) {
	doc, err := LoadDocument(lawPath)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(lawPath), filepath.Ext(lawPath))

	var records []types.QARecord
	for _, ch := range doc.Structure {
		for _, art := range ch.Articles {
			if limit > 0 && len(records) >= limit {
				return records, nil
			}
			if err := ctx.Err(); err != nil {
				return records, err
			}

			id := fmt.Sprintf("%s-art-%d", base, art.Number)
			ref := referenceText(art)
			q, a, err := generateQA(ctx, backend, ref)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", id, err)
				continue
			}

			records = append(records, types.QARecord{
				ID:        id,
				Question:  q,
				Answer:    a,
				Reference: ref,
			})
			fmt.Fprintf(w, "generated %s\n", id)
		}
	}
	return records, nil
}

// referenceText flattens an article into the excerpt the judge sees:
// the heading, the body text if any, then one line per clause.
func referenceText(art *types.Article) string {
	var b strings.Builder
	b.WriteString(art.Title)
	if art.Text != "" {
		b.WriteString("\n")
		b.WriteString(art.Text)
	}
	for _, cl := range art.Clauses {
		fmt.Fprintf(&b, "\n%d. %s", cl.Number, cl.Text)
	}
	return b.String()
}

func generateQA(ctx context.Context, backend Backend, reference string) (string, string, error) {
	var buf bytes.Buffer
	if err := genPromptTmpl.Execute(&buf, struct{ Reference string }{reference}); err != nil {
		return "", "", fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := backend.Complete(ctx, buf.String())
	if err != nil {
		return "", "", err
	}

	raw, err := extractJSON(text)
	if err != nil {
		return "", "", err
	}
	var qa struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(raw), &qa); err != nil {
		return "", "", fmt.Errorf("parsing model output: %w", err)
	}
	if qa.Question == "" || qa.Answer == "" {
		return "", "", fmt.Errorf("model output missing question or answer")
	}
	return qa.Question, qa.Answer, nil
}

// WriteTestset writes the records as indented JSON, creating parent
// directories.
func WriteTestset(path string, records []types.QARecord) error {
	return writeJSON(path, records)
}
