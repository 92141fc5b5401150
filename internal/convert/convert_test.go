// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeSource implements Source with canned text or an error.
type fakeSource struct {
	text string
	err  error
}

func (f *fakeSource) Text(path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// selectiveSource returns different results per file path.
type selectiveSource struct {
	texts  map[string]string
	errors map[string]error
}

func (s *selectiveSource) Text(path string) (string, error) {
	if err, ok := s.errors[path]; ok {
		return "", err
	}
	if text, ok := s.texts[path]; ok {
		return text, nil
	}
	return "", errors.New("unexpected path: " + path)
}

const sampleStatute = `Chương I
GIÁO DỤC
Điều 3. Tính chất
Mục tiêu giáo dục.
1. Phát triển con người.
tiếp tục câu.
`

const sampleRendered = `{
  "type": "",
  "issuer": "",
  "title": "",
  "source_url": "",
  "promulgation_date": "",
  "effective_date": "",
  "status": "",
  "structure": [
    {
      "type": "chapter",
      "number": 1,
      "title": "GIÁO DỤC",
      "articles": [
        {"number": 3, "title": "Điều 3. Tính chất", "text": "Mục tiêu giáo dục.", "clauses": [{"number": 1, "text": "Phát triển con người. tiếp tục câu."}]}
      ]
    }
  ]
}
`

// setupTxt creates a statute text file and returns its path and the temp dir.
func setupTxt(t *testing.T) (txtPath, tmpDir string) {
	t.Helper()
	tmpDir = t.TempDir()
	txtDir := filepath.Join(tmpDir, "txt")
	if err := os.MkdirAll(txtDir, 0o755); err != nil {
		t.Fatal(err)
	}
	txtPath = filepath.Join(txtDir, "luat-giao-duc.txt")
	if err := os.WriteFile(txtPath, []byte(sampleStatute), 0o644); err != nil {
		t.Fatal(err)
	}
	return txtPath, tmpDir
}

// backdate moves a file's timestamps into the past so a later write
// elsewhere is strictly newer.
func backdate(t *testing.T, path string) {
	t.Helper()
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
}

func TestConvertFile(t *testing.T) {
	tests := []struct {
		name       string
		source     Source
		preCreate  bool // create a fresh output before running
		wantStatus Status
		wantLog    string
	}{
		{
			name:       "successful conversion",
			source:     &fakeSource{text: sampleStatute},
			wantStatus: StatusConverted,
			wantLog:    "converted:",
		},
		{
			name:       "skip up-to-date output",
			source:     &fakeSource{text: "should not be read"},
			preCreate:  true,
			wantStatus: StatusSkipped,
			wantLog:    "skipped:",
		},
		{
			name:       "source failure",
			source:     &fakeSource{err: errors.New("unreadable input")},
			wantStatus: StatusFailed,
			wantLog:    "failed:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txtPath, tmpDir := setupTxt(t)
			opts := Options{OutDir: filepath.Join(tmpDir, "json")}

			if tt.preCreate {
				backdate(t, txtPath)
				if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
					t.Fatal(err)
				}
				outPath := filepath.Join(opts.OutDir, "luat-giao-duc.json")
				if err := os.WriteFile(outPath, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var log bytes.Buffer
			status := ConvertFile(tt.source, txtPath, opts, &log)

			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
		})
	}
}

func TestConvertFileForce(t *testing.T) {
	txtPath, tmpDir := setupTxt(t)
	opts := Options{OutDir: filepath.Join(tmpDir, "json"), Force: true}

	backdate(t, txtPath)
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(opts.OutDir, "luat-giao-duc.json")
	if err := os.WriteFile(outPath, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	if status := ConvertFile(FileSource{}, txtPath, opts, &log); status != StatusConverted {
		t.Fatalf("status = %d, want converted", status)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "stale" {
		t.Error("force did not rewrite the output")
	}
}

func TestConvertFileOutputBytes(t *testing.T) {
	txtPath, tmpDir := setupTxt(t)
	opts := Options{OutDir: filepath.Join(tmpDir, "json")}

	var log bytes.Buffer
	if status := ConvertFile(FileSource{}, txtPath, opts, &log); status != StatusConverted {
		t.Fatalf("status = %d, want converted (log: %s)", status, log.String())
	}

	data, err := os.ReadFile(filepath.Join(opts.OutDir, "luat-giao-duc.json"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != sampleRendered {
		t.Errorf("output:\n%s\nwant:\n%s", data, sampleRendered)
	}
}

func TestConvertFileFoldsDecomposedInput(t *testing.T) {
	// "Điều" with its third letter spelled as e plus combining marks.
	decomposed := "Chương I\nĐiều 1. A\n"
	txtPath, tmpDir := setupTxt(t)
	if err := os.WriteFile(txtPath, []byte(decomposed), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := Options{OutDir: filepath.Join(tmpDir, "json"), Force: true}

	var log bytes.Buffer
	if status := ConvertFile(FileSource{}, txtPath, opts, &log); status != StatusConverted {
		t.Fatalf("status = %d, want converted", status)
	}
	data, err := os.ReadFile(filepath.Join(opts.OutDir, "luat-giao-duc.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `{"number": 1, "title": "Điều 1. A"`) {
		t.Errorf("decomposed marker not recognized:\n%s", data)
	}
}

func TestConvertFileMetadata(t *testing.T) {
	t.Run("sidecar wins over run-wide file", func(t *testing.T) {
		txtPath, tmpDir := setupTxt(t)
		metaDir := filepath.Join(tmpDir, "meta")
		if err := os.MkdirAll(metaDir, 0o755); err != nil {
			t.Fatal(err)
		}
		sidecar := filepath.Join(metaDir, "luat-giao-duc.json")
		if err := os.WriteFile(sidecar, []byte(`{"issuer": "Quốc hội"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		runWide := filepath.Join(tmpDir, "shared.json")
		if err := os.WriteFile(runWide, []byte(`{"issuer": "Chính phủ"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		opts := Options{
			OutDir:       filepath.Join(tmpDir, "json"),
			MetaDir:      metaDir,
			MetadataPath: runWide,
		}

		var log bytes.Buffer
		ConvertFile(FileSource{}, txtPath, opts, &log)

		data, err := os.ReadFile(filepath.Join(opts.OutDir, "luat-giao-duc.json"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"issuer": "Quốc hội",`) {
			t.Errorf("sidecar issuer not merged:\n%s", data)
		}
	})

	t.Run("run-wide file used without sidecar", func(t *testing.T) {
		txtPath, tmpDir := setupTxt(t)
		runWide := filepath.Join(tmpDir, "shared.json")
		if err := os.WriteFile(runWide, []byte(`{"content": {"law": {"status": "Còn hiệu lực"}}}`), 0o644); err != nil {
			t.Fatal(err)
		}
		opts := Options{OutDir: filepath.Join(tmpDir, "json"), MetadataPath: runWide}

		var log bytes.Buffer
		ConvertFile(FileSource{}, txtPath, opts, &log)

		data, err := os.ReadFile(filepath.Join(opts.OutDir, "luat-giao-duc.json"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"status": "Còn hiệu lực",`) {
			t.Errorf("wrapped metadata not merged:\n%s", data)
		}
	})

	t.Run("unreadable metadata warns and converts anyway", func(t *testing.T) {
		txtPath, tmpDir := setupTxt(t)
		bad := filepath.Join(tmpDir, "bad.json")
		if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		opts := Options{OutDir: filepath.Join(tmpDir, "json"), MetadataPath: bad}

		var log bytes.Buffer
		if status := ConvertFile(FileSource{}, txtPath, opts, &log); status != StatusConverted {
			t.Fatalf("status = %d, want converted", status)
		}
		if !strings.Contains(log.String(), "warning:") {
			t.Errorf("no warning logged: %q", log.String())
		}
	})
}

func TestConvertBatch(t *testing.T) {
	tmpDir := t.TempDir()
	txtDir := filepath.Join(tmpDir, "txt")
	if err := os.MkdirAll(txtDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if err := os.WriteFile(filepath.Join(txtDir, name), []byte("Chương I\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		backdate(t, filepath.Join(txtDir, name))
	}

	opts := Options{OutDir: filepath.Join(tmpDir, "json")}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Pre-create a fresh output for "b" to trigger a skip.
	if err := os.WriteFile(filepath.Join(opts.OutDir, "b.json"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &selectiveSource{
		texts: map[string]string{
			filepath.Join(txtDir, "a.txt"): "Chương I\nĐiều 1. A",
			filepath.Join(txtDir, "b.txt"): "unused",
		},
		errors: map[string]error{
			filepath.Join(txtDir, "c.txt"): errors.New("bad encoding"),
		},
	}

	paths := []string{
		filepath.Join(txtDir, "a.txt"),
		filepath.Join(txtDir, "b.txt"),
		filepath.Join(txtDir, "c.txt"),
	}

	var log bytes.Buffer
	result := ConvertBatch(src, paths, opts, &log)

	if result.Converted != 1 {
		t.Errorf("converted = %d, want 1", result.Converted)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 3 {
		t.Errorf("total = %d, want 3", result.Total())
	}
	if !strings.Contains(log.String(), "Batch summary: 1 converted, 1 skipped, 1 failed (total: 3)") {
		t.Errorf("batch output missing summary line: %q", log.String())
	}
}

func TestConvertDir(t *testing.T) {
	tmpDir := t.TempDir()
	txtDir := filepath.Join(tmpDir, "txt")
	if err := os.MkdirAll(txtDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.txt", "a.txt", "notes.md"} {
		if err := os.WriteFile(filepath.Join(txtDir, name), []byte("Chương I\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	opts := Options{OutDir: filepath.Join(tmpDir, "json")}
	var log bytes.Buffer
	result, err := ConvertDir(FileSource{}, txtDir, opts, &log)
	if err != nil {
		t.Fatalf("ConvertDir: %v", err)
	}
	if result.Converted != 2 {
		t.Errorf("converted = %d, want 2 (only .txt files)", result.Converted)
	}
	output := log.String()
	if strings.Index(output, "converted: a") > strings.Index(output, "converted: b") {
		t.Errorf("files not processed in name order: %q", output)
	}

	if _, err := ConvertDir(FileSource{}, filepath.Join(tmpDir, "missing"), opts, &log); err == nil {
		t.Error("missing input dir did not error")
	}
}

func TestRouter(t *testing.T) {
	plain := &fakeSource{text: "plain"}
	pdf := &fakeSource{text: "from pdf"}

	r := Router{Plain: plain, PDF: pdf}
	if text, _ := r.Text("doc.txt"); text != "plain" {
		t.Errorf("txt routed to %q", text)
	}
	if text, _ := r.Text("doc.pdf"); text != "from pdf" {
		t.Errorf("pdf routed to %q", text)
	}
	if text, _ := r.Text("DOC.PDF"); text != "from pdf" {
		t.Errorf("upper-case pdf routed to %q", text)
	}

	noPDF := Router{Plain: plain}
	if _, err := noPDF.Text("doc.pdf"); err == nil || !strings.Contains(err.Error(), "container") {
		t.Errorf("pdf without runtime: err = %v", err)
	}
}
