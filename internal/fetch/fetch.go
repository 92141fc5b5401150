// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/statute-engine/internal/httputil"
	"github.com/pdiddy/statute-engine/pkg/types"
)

const (
	txtDir  = "txt"
	pdfDir  = "pdf"
	metaDir = "meta"
)

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of catalog entries processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchEntry downloads a single catalog entry and writes its metadata
// sidecar. If the target file already exists on disk, it skips the
// download and leaves the sidecar untouched. The skipped return value
// indicates whether the download was skipped.
func FetchEntry(ctx context.Context, client *http.Client, entry CatalogEntry, cfg types.FetchConfig, w io.Writer) (skipped bool, err error) {
	destPath, kind, err := destinationPath(entry, cfg.DocumentsDir)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", entry.ID)
		return true, nil
	}

	for _, dir := range []string{
		filepath.Dir(destPath),
		filepath.Join(cfg.DocumentsDir, metaDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s (%s)\n", entry.ID, kind)

	if err := downloadFile(ctx, client, entry.URL, destPath, cfg); err != nil {
		return false, fmt.Errorf("downloading %s: %w", entry.ID, err)
	}

	if err := writeSidecar(entry, cfg.DocumentsDir); err != nil {
		return false, fmt.Errorf("writing metadata for %s: %w", entry.ID, err)
	}

	return false, nil
}

// destinationPath picks the output file from the URL extension: .pdf
// sources land under pdf/, everything else under txt/.
func destinationPath(entry CatalogEntry, documentsDir string) (string, string, error) {
	u, err := url.Parse(entry.URL)
	if err != nil {
		return "", "", fmt.Errorf("invalid url for %s: %w", entry.ID, err)
	}
	if strings.EqualFold(path.Ext(u.Path), ".pdf") {
		return filepath.Join(documentsDir, pdfDir, entry.ID+".pdf"), "pdf", nil
	}
	return filepath.Join(documentsDir, txtDir, entry.ID+".txt"), "txt", nil
}

// FetchBatch processes the whole catalog, printing per-item status and
// continuing after individual failures. A delay separates consecutive
// downloads.
func FetchBatch(ctx context.Context, client *http.Client, entries []CatalogEntry, cfg types.FetchConfig, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for i, entry := range entries {
		if i > 0 && cfg.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(cfg.DownloadDelay):
			}
		}

		skipped, err := FetchEntry(ctx, client, entry, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", entry.ID, err)
			result.Failed++
			continue
		}
		if skipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// downloadFile fetches url to destPath through a temporary file so a
// partial download never lands at the final path. Rate limiting is
// handled by the shared retry helper.
func downloadFile(ctx context.Context, client *http.Client, rawURL, destPath string, cfg types.FetchConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// sidecar is the seed metadata written next to each download. The
// convert stage merges title and source_url into the rendered document.
type sidecar struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url"`
}

func writeSidecar(entry CatalogEntry, documentsDir string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sidecar{Type: entry.Type, Title: entry.Title, SourceURL: entry.URL}); err != nil {
		return fmt.Errorf("marshaling sidecar: %w", err)
	}

	path := filepath.Join(documentsDir, metaDir, entry.ID+".json")
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
