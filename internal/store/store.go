// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists converted statutes in SQLite and builds a
// full-text article index over them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/statute-engine/pkg/types"
)

const (
	jsonDir = "json"
	dbFile  = "statutes.db"
)

// Store manages the statute index SQLite database.
type Store struct {
	db           *sql.DB
	indexDir     string
	documentsDir string
	maxResults   int
}

// NewStore opens or creates the statute index at indexDir/statutes.db.
// It creates the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:           db,
		indexDir:     cfg.IndexDir,
		documentsDir: cfg.DocumentsDir,
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS laws (
			id TEXT PRIMARY KEY,
			type TEXT,
			issuer TEXT,
			title TEXT,
			source_url TEXT,
			promulgation_date TEXT,
			effective_date TEXT,
			status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			law_id TEXT NOT NULL REFERENCES laws(id),
			chapter_number TEXT,
			chapter_title TEXT,
			number INTEGER,
			title TEXT,
			text TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_law_id ON articles(law_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_chapter ON articles(chapter_number)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			law_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, text, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, text) VALUES (new.rowid, new.title, new.text);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, text) VALUES('delete', old.rowid, old.title, old.text);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, text) VALUES('delete', old.rowid, old.title, old.text);
				INSERT INTO articles_fts(rowid, title, text) VALUES (new.rowid, new.title, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of documents processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads converted documents from documentsDir/json/ and populates
// the database. It detects new, changed, and unchanged files by modify
// time for incremental updates. On success it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	docsDir := filepath.Join(s.documentsDir, jsonDir)

	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading documents directory %s: %w", docsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		lawID := strings.TrimSuffix(entry.Name(), ".json")
		filePath := filepath.Join(docsDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", lawID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Unchanged files are skipped outright.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE law_id = ?`, lawID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", lawID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", lawID, err)
			summary.Failed++
			continue
		}

		var doc types.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", lawID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestLaw(ctx, lawID, &doc, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", lawID, err)
			summary.Failed++
			continue
		}

		count := articleCount(&doc)
		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d articles)\n", lawID, count)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d articles)\n", lawID, count)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestLaw(ctx context.Context, lawID string, doc *types.Document, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// A changed document is re-indexed from scratch.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE law_id = ?`, lawID); err != nil {
			return fmt.Errorf("deleting old articles: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO laws (id, type, issuer, title, source_url, promulgation_date, effective_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			type=excluded.type, issuer=excluded.issuer, title=excluded.title,
			source_url=excluded.source_url, promulgation_date=excluded.promulgation_date,
			effective_date=excluded.effective_date, status=excluded.status`,
		lawID, doc.Type, doc.Issuer, doc.Title,
		doc.SourceURL, doc.PromulgationDate, doc.EffectiveDate, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("upserting law: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO articles (id, law_id, chapter_number, chapter_title, number, title, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range doc.Structure {
		for _, art := range ch.Articles {
			articleID := fmt.Sprintf("%s-art-%d", lawID, art.Number)
			_, err := stmt.ExecContext(ctx,
				articleID, lawID, ch.Number.String(), ch.Title,
				art.Number, art.Title, articleText(art),
			)
			if err != nil {
				return fmt.Errorf("inserting article %s: %w", articleID, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (law_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(law_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		lawID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// articleText flattens an article body for indexing: the free text when
// the article has no clauses, otherwise one line per clause.
func articleText(art *types.Article) string {
	if len(art.Clauses) == 0 {
		return art.Text
	}
	var b strings.Builder
	for i, cl := range art.Clauses {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", cl.Number, cl.Text)
	}
	return b.String()
}

func articleCount(doc *types.Document) int {
	var n int
	for _, ch := range doc.Structure {
		n += len(ch.Articles)
	}
	return n
}
