package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/statute-engine/internal/fetch"
	"github.com/pdiddy/statute-engine/pkg/types"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultDelay        = 1 * time.Second
	defaultUserAgent    = "statute-engine/0.1"
	defaultCatalog      = "catalog.yaml"
	defaultDocumentsDir = "documents"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download statute sources listed in the catalog",
	Long: `Fetch reads a YAML catalog of source documents and downloads each to
documents/txt/ (or documents/pdf/ for scanned sources), writing a metadata
sidecar per entry to documents/meta/. Entries whose file already exists
are skipped.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("catalog", "", "path to the source catalog YAML (default catalog.yaml)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("documents-dir", "", "base directory for documents (default documents)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	catalogPath := configString(cmd, "catalog", "fetch.catalog", defaultCatalog)
	entries, err := fetch.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "catalog is empty, nothing to fetch")
		return nil
	}

	userAgent := viper.GetString("fetch.user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   configDuration(cmd, "timeout", "fetch.timeout", defaultTimeout),
			UserAgent: userAgent,
		},
		Catalog:       catalogPath,
		DownloadDelay: configDuration(cmd, "delay", "fetch.download_delay", defaultDelay),
		DocumentsDir:  configString(cmd, "documents-dir", "fetch.documents_dir", defaultDocumentsDir),
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result, err := fetch.FetchBatch(context.Background(), client, entries, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed download", result.Failed)
	}
	return nil
}
