// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/statute-engine/internal/store"
	"github.com/pdiddy/statute-engine/pkg/types"
)

const (
	defaultIndexDir   = "index"
	defaultMaxResults = 20
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the statute index (ingest, search, export)",
	Long: `Index manages a local SQLite index built from converted statute
documents. Use subcommands to ingest documents, search articles, or
export the index.`,
}

// --- ingest subcommand ---

var indexIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest converted documents into the statute index",
	Long: `Ingest reads converted JSON documents from documents/json/, loads them
into a SQLite database with FTS5 indexing over article titles and text,
and writes an export file. Unchanged documents are skipped on
subsequent runs.`,
	RunE: runIndexIngest,
}

func runIndexIngest(cmd *cobra.Command, args []string) error {
	st, err := store.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := st.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed articles with full-text search and filters",
	Long: `Search queries the statute index using FTS5 full-text search,
structured filters (law, chapter), or a combination of both. Results
name the source law, chapter, and article.`,
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --law, or --chapter")
	}

	st, err := store.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []store.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-24s  %-40s  %-20s  %s\n",
		"Rank", "Article", "Title", "Law", "Chapter")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 102))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-24s  %-40s  %-20s  %s\n",
			i+1, truncate(r.ID, 24), truncate(r.Title, 40), truncate(r.LawID, 20), r.ChapterNumber)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most max runes. Vietnamese titles are
// multibyte, so truncation counts runes rather than bytes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the statute index to YAML or JSON",
	Long: `Export writes the full statute index (or a filtered subset) to
index/export.yaml or export.json. Supports the same filter flags as
search for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := indexConfig(cmd)
	st, err := store.NewStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := st.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.IndexDir, "export.yaml"))
	case "json":
		if err := st.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.IndexDir, "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	return types.IndexConfig{
		IndexDir:     configString(cmd, "index-dir", "index.index_dir", defaultIndexDir),
		DocumentsDir: configString(cmd, "documents-dir", "index.documents_dir", defaultDocumentsDir),
		MaxResults:   configInt(cmd, "max-results", "index.max_results", defaultMaxResults),
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	lawID, _ := cmd.Flags().GetString("law")
	chapter, _ := cmd.Flags().GetString("chapter")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		LawID:      lawID,
		Chapter:    chapter,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "", "directory for the SQLite database and exports (default index)")
	indexCmd.PersistentFlags().String("documents-dir", "", "base directory for documents (contains json/)")
	indexCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (default 20)")

	// Search flags.
	indexSearchCmd.Flags().String("query", "", "full-text search query")
	indexSearchCmd.Flags().String("law", "", "filter by law ID")
	indexSearchCmd.Flags().String("chapter", "", "filter by chapter number (roman numeral)")
	indexSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	indexExportCmd.Flags().String("law", "", "filter by law ID for partial export")
	indexExportCmd.Flags().String("chapter", "", "filter by chapter number for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum articles to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexIngestCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
