// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns raw statute text into the serialized document
// form: read, NFC fold, parse, normalize, metadata merge, render.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/statute-engine/internal/meta"
	"github.com/pdiddy/statute-engine/internal/normalize"
	"github.com/pdiddy/statute-engine/internal/parse"
	"github.com/pdiddy/statute-engine/internal/render"
)

// Source extracts plain text from an input file. FileSource handles
// text files; PDFSource handles scanned sources via a container.
type Source interface {
	// Text returns the document text for the file at path.
	Text(path string) (string, error)
}

// FileSource reads UTF-8 text files as-is.
type FileSource struct{}

func (FileSource) Text(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// Router dispatches to a Source by file extension: .pdf goes to PDF,
// everything else to Plain.
type Router struct {
	Plain Source
	PDF   Source
}

func (r Router) Text(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if r.PDF == nil {
			return "", fmt.Errorf("no container runtime available for PDF input %s", path)
		}
		return r.PDF.Text(path)
	}
	return r.Plain.Text(path)
}

// Options control a conversion run.
type Options struct {
	// OutDir receives the serialized <base>.json outputs.
	OutDir string

	// MetaDir holds per-document metadata sidecars named <base>.json.
	// Empty disables sidecar lookup.
	MetaDir string

	// MetadataPath is a run-wide metadata file, used for documents
	// without a sidecar. Empty disables it.
	MetadataPath string

	// Force reconverts files whose output is already up to date.
	Force bool
}

// Status is the per-file outcome of a conversion.
type Status int

const (
	StatusConverted Status = iota
	StatusSkipped
	StatusFailed
)

// BatchResult holds the outcome of a conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any files failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertFile converts a single input file, writing <base>.json under
// opts.OutDir. Outputs newer than their input are skipped unless
// opts.Force is set. Status lines go to w.
func ConvertFile(src Source, path string, opts Options, w io.Writer) Status {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(opts.OutDir, base+".json")

	if !opts.Force {
		changed, err := hasChanged(path, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			return StatusFailed
		}
		if !changed {
			fmt.Fprintf(w, "skipped: %s (up to date)\n", base)
			return StatusSkipped
		}
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	text, err := src.Text(path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	doc := parse.ParseText(normalize.NFC(text))
	normalize.Document(doc)

	if metaPath := metadataFor(base, opts); metaPath != "" {
		fields, err := meta.Load(metaPath)
		if err != nil {
			fmt.Fprintf(w, "warning: could not read metadata for %s (%v)\n", base, err)
		} else {
			meta.Merge(doc, fields)
		}
	}

	if err := os.WriteFile(outPath, render.Document(doc), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return StatusConverted
}

// ConvertBatch processes the files in order, printing per-file status
// to w and a summary line at the end. A failure on one file never
// stops the rest.
func ConvertBatch(src Source, paths []string, opts Options, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		switch ConvertFile(src, p, opts, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertDir converts every .txt file under dir, in name order.
func ConvertDir(src Source, dir string, opts Options, w io.Writer) (BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchResult{}, fmt.Errorf("reading input dir %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return ConvertBatch(src, paths, opts, w), nil
}

// metadataFor picks the metadata file for a document: its sidecar when
// one exists, else the run-wide file.
func metadataFor(base string, opts Options) string {
	if opts.MetaDir != "" {
		sidecar := filepath.Join(opts.MetaDir, base+".json")
		if _, err := os.Stat(sidecar); err == nil {
			return sidecar
		}
	}
	return opts.MetadataPath
}

// hasChanged reports whether the input file is newer than the output
// file. Returns true if the output does not exist.
func hasChanged(inPath, outPath string) (bool, error) {
	inInfo, err := os.Stat(inPath)
	if err != nil {
		return false, fmt.Errorf("stat input %s: %w", inPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}
