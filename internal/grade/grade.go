// Package grade judges question/answer records against statute text
// with an LLM judge and reports per-record verdicts plus run totals.
package grade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/statute-engine/pkg/types"
)

// Backend abstracts the judge model API so tests can supply a mock.
// Implementations send one prompt and return the raw model text.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// LoadTestset reads a flat JSON array of QA records.
func LoadTestset(path string) ([]types.QARecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading testset %s: %w", path, err)
	}
	var records []types.QARecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing testset %s: %w", path, err)
	}
	return records, nil
}

// GradeAll judges every record in order, printing one status line per
// record to w. A failed record gets the substitute failure judgment and
// never stops the rest; only context cancellation aborts the run.
func GradeAll(ctx context.Context, backend Backend, records []types.QARecord, cfg types.GradeConfig, w io.Writer) ([]types.Judgment, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	judgments := make([]types.Judgment, 0, len(records))
	for i, rec := range records {
		if i > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return judgments, ctx.Err()
			case <-time.After(cfg.RequestDelay):
			}
		}

		j, err := JudgeRecord(ctx, backend, rec, maxRetries)
		if err != nil {
			return judgments, err
		}

		status := "incorrect"
		if j.IsCorrect {
			status = "correct"
		}
		fmt.Fprintf(w, "judged: %s (%s, score %.1f)\n", rec.ID, status, j.Score)
		judgments = append(judgments, j)
	}
	return judgments, nil
}

// JudgeRecord judges one record. When the judge never produces a valid
// verdict, the fixed failure judgment is substituted; the returned
// error is non-nil only for context cancellation.
func JudgeRecord(ctx context.Context, backend Backend, rec types.QARecord, maxRetries int) (types.Judgment, error) {
	prompt, err := renderJudgePrompt(rec)
	if err != nil {
		return failureJudgment(rec.ID), nil
	}

	j, err := callWithRetry(ctx, backend, prompt, maxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return types.Judgment{}, ctx.Err()
		}
		return failureJudgment(rec.ID), nil
	}

	j.ID = rec.ID
	return j, nil
}

// callWithRetry sends the prompt and parses the judgment, retrying
// backend failures and malformed output with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (types.Judgment, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return types.Judgment{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.Complete(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		j, err := parseJudgment(text)
		if err != nil {
			lastErr = err
			continue
		}
		return j, nil
	}
	return types.Judgment{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// extractJSON returns the object embedded in model output: everything
// from the first '{' to the last '}'.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	return text[start : end+1], nil
}

func parseJudgment(text string) (types.Judgment, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return types.Judgment{}, err
	}
	var j types.Judgment
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		return types.Judgment{}, fmt.Errorf("parsing judgment: %w", err)
	}
	return j, nil
}

// failureJudgment is the verdict recorded when the judge never returned
// parseable output for a record.
func failureJudgment(id string) types.Judgment {
	return types.Judgment{
		ID:      id,
		Issues:  []string{"LLM không trả JSON hợp lệ"},
		Comment: "Lỗi xử lý",
	}
}

// Summary aggregates one grading run.
type Summary struct {
	Total        int     `json:"total" yaml:"total"`
	Correct      int     `json:"correct" yaml:"correct"`
	CorrectPct   float64 `json:"correct_pct" yaml:"correct_pct"`
	AverageScore float64 `json:"average_score" yaml:"average_score"`
}

// Summarize computes run totals from the judgments.
func Summarize(judgments []types.Judgment) Summary {
	s := Summary{Total: len(judgments)}
	var scoreSum float64
	for _, j := range judgments {
		if j.IsCorrect {
			s.Correct++
		}
		scoreSum += j.Score
	}
	if s.Total > 0 {
		s.CorrectPct = float64(s.Correct) / float64(s.Total) * 100
		s.AverageScore = scoreSum / float64(s.Total)
	}
	return s
}

// PrintSummary writes the run totals to w.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nGrading summary: %d judged, %d correct (%.1f%%), average score %.2f/10\n",
		s.Total, s.Correct, s.CorrectPct, s.AverageScore)
}

// WriteReport writes the judgment array as indented JSON, creating
// parent directories.
func WriteReport(path string, judgments []types.Judgment) error {
	return writeJSON(path, judgments)
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
