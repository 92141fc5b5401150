package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/statute-engine/internal/grade"
	"github.com/pdiddy/statute-engine/pkg/types"
)

const (
	defaultOllamaModel  = "gemma3:4b"
	defaultClaudeModel  = "claude-sonnet-4-5"
	defaultMaxRetries   = 3
	defaultRequestDelay = 500 * time.Millisecond
	defaultTestsetsDir  = "testsets"
	defaultReportsDir   = "reports"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Generate testsets and judge answers with an LLM",
	Long: `Grade evaluates question/answer records against statute text. The run
subcommand judges each record with an LLM judge and writes a report;
the gen subcommand builds a testset from a converted document, one
record per article.

Backends: ollama (local, default) or claude (Messages API, reads
anthropic-api-key from .secrets/).`,
}

// --- run subcommand ---

var gradeRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Judge a testset and write a grading report",
	Long: `Run loads question/answer records from a testset, asks the judge
backend for a verdict on each, and writes the judgments as a JSON
report. Malformed model output is retried with backoff; records that
still fail get a zero-score failure judgment.`,
	RunE: runGradeRun,
}

func runGradeRun(cmd *cobra.Command, args []string) error {
	testsetPath, _ := cmd.Flags().GetString("testset")
	if testsetPath == "" {
		return fmt.Errorf("no testset selected: provide --testset")
	}

	records, err := grade.LoadTestset(testsetPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "testset is empty, nothing to judge")
		return nil
	}

	cfg := gradeConfig(cmd)
	backend, err := gradeBackend(cfg)
	if err != nil {
		return err
	}

	judgments, err := grade.GradeAll(context.Background(), backend, records, cfg, os.Stdout)
	if err != nil {
		return err
	}

	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath == "" {
		base := strings.TrimSuffix(filepath.Base(testsetPath), filepath.Ext(testsetPath))
		reportPath = filepath.Join(cfg.ReportsDir, base+"-report.json")
	}
	if err := grade.WriteReport(reportPath, judgments); err != nil {
		return err
	}

	grade.PrintSummary(os.Stdout, grade.Summarize(judgments))
	fmt.Println("Report written to", reportPath)
	return nil
}

// --- gen subcommand ---

var gradeGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a question/answer testset from a converted document",
	Long: `Gen reads a converted law document and asks the backend to produce one
question/answer pair per article, with the article text attached as the
reference. Articles the model fails on are skipped.`,
	RunE: runGradeGen,
}

func runGradeGen(cmd *cobra.Command, args []string) error {
	lawPath, _ := cmd.Flags().GetString("law")
	if lawPath == "" {
		return fmt.Errorf("no law document selected: provide --law")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := gradeConfig(cmd)
	backend, err := gradeBackend(cfg)
	if err != nil {
		return err
	}

	records, err := grade.GenerateTestset(context.Background(), backend, lawPath, limit, os.Stdout)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records generated from %s", lawPath)
	}

	base := strings.TrimSuffix(filepath.Base(lawPath), filepath.Ext(lawPath))
	outPath := filepath.Join(cfg.TestsetsDir, base+"-testset.json")
	if err := grade.WriteTestset(outPath, records); err != nil {
		return err
	}

	fmt.Printf("Testset written to %s (%d records)\n", outPath, len(records))
	return nil
}

// --- shared helpers ---

func gradeConfig(cmd *cobra.Command) types.GradeConfig {
	cfg := types.GradeConfig{
		Backend:      configString(cmd, "backend", "grade.backend", "ollama"),
		BaseURL:      configString(cmd, "base-url", "grade.base_url", grade.DefaultOllamaURL),
		RequestDelay: configDuration(cmd, "request-delay", "grade.request_delay", defaultRequestDelay),
		TestsetsDir:  configString(cmd, "testsets-dir", "grade.testsets_dir", defaultTestsetsDir),
		ReportsDir:   configString(cmd, "reports-dir", "grade.reports_dir", defaultReportsDir),
	}
	cfg.Model = configString(cmd, "model", "grade.model", "")
	if cfg.Model == "" {
		if cfg.Backend == "claude" {
			cfg.Model = defaultClaudeModel
		} else {
			cfg.Model = defaultOllamaModel
		}
	}
	cfg.APIKey = configString(cmd, "api-key", "grade.api_key", "")
	cfg.MaxRetries = configInt(cmd, "max-retries", "grade.max_retries", defaultMaxRetries)
	return cfg
}

func gradeBackend(cfg types.GradeConfig) (grade.Backend, error) {
	switch cfg.Backend {
	case "ollama", "":
		return &grade.OllamaBackend{BaseURL: cfg.BaseURL, Model: cfg.Model}, nil
	case "claude":
		key := secretDefault("anthropic-api-key", cfg.APIKey)
		if key == "" {
			return nil, fmt.Errorf("anthropic-api-key required: add .secrets/anthropic-api-key or pass --api-key")
		}
		return &grade.ClaudeBackend{APIKey: key, Model: cfg.Model}, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q: use ollama or claude", cfg.Backend)
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	gradeCmd.PersistentFlags().String("backend", "", "judge backend: ollama or claude (default ollama)")
	gradeCmd.PersistentFlags().String("model", "", "model identifier (default "+defaultOllamaModel+" for ollama, "+defaultClaudeModel+" for claude)")
	gradeCmd.PersistentFlags().String("base-url", "", "ollama server base URL (default "+grade.DefaultOllamaURL+")")
	gradeCmd.PersistentFlags().String("api-key", "", "API key for the claude backend (default from .secrets/)")
	gradeCmd.PersistentFlags().Int("max-retries", 0, "retries for malformed model output (default 3)")
	gradeCmd.PersistentFlags().Duration("request-delay", 0, "delay between consecutive model calls (default 500ms)")
	gradeCmd.PersistentFlags().String("testsets-dir", "", "directory for testsets (default testsets)")
	gradeCmd.PersistentFlags().String("reports-dir", "", "directory for grading reports (default reports)")

	// Run flags.
	gradeRunCmd.Flags().String("testset", "", "testset JSON to judge (required)")
	gradeRunCmd.Flags().String("report", "", "report output path (default <reports-dir>/<testset>-report.json)")

	// Gen flags.
	gradeGenCmd.Flags().String("law", "", "converted law document to build the testset from (required)")
	gradeGenCmd.Flags().Int("limit", 0, "maximum number of records to generate (0 = all articles)")

	// Wire subcommands.
	gradeCmd.AddCommand(gradeRunCmd)
	gradeCmd.AddCommand(gradeGenCmd)

	rootCmd.AddCommand(gradeCmd)
}
