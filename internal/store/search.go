// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for article queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over titles and bodies.
	Query string

	// LawID filters by document.
	LawID string

	// Chapter filters by chapter number as rendered in the heading,
	// e.g. "3" for a decoded roman numeral or the raw token otherwise.
	Chapter string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.LawID == "" && q.Chapter == ""
}

// SearchResult is an indexed article joined with its law's metadata.
type SearchResult struct {
	ID            string `json:"id" yaml:"id"`
	LawID         string `json:"law_id" yaml:"law_id"`
	LawTitle      string `json:"law_title" yaml:"law_title"`
	LawIssuer     string `json:"law_issuer" yaml:"law_issuer"`
	ChapterNumber string `json:"chapter_number" yaml:"chapter_number"`
	ChapterTitle  string `json:"chapter_title" yaml:"chapter_title"`
	Number        int    `json:"number" yaml:"number"`
	Title         string `json:"title" yaml:"title"`
	Text          string `json:"text" yaml:"text"`
}

// Search queries the article index with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by law_id, article number otherwise.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT a.id, a.law_id, a.chapter_number, a.chapter_title,
				a.number, a.title, a.text,
				l.title, l.issuer, articles_fts.rank
			FROM articles_fts
			JOIN articles a ON a.rowid = articles_fts.rowid
			LEFT JOIN laws l ON a.law_id = l.id
			WHERE articles_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT a.id, a.law_id, a.chapter_number, a.chapter_title,
				a.number, a.title, a.text,
				l.title, l.issuer, 0 AS rank
			FROM articles a
			LEFT JOIN laws l ON a.law_id = l.id
			WHERE 1=1`)
	}

	if opts.LawID != "" {
		qb.WriteString(` AND a.law_id = ?`)
		args = append(args, opts.LawID)
	}

	if opts.Chapter != "" {
		qb.WriteString(` AND a.chapter_number = ?`)
		args = append(args, opts.Chapter)
	}

	if useFTS {
		qb.WriteString(` ORDER BY articles_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY a.law_id, a.number`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying article index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			sr        SearchResult
			lawTitle  sql.NullString
			lawIssuer sql.NullString
			rank      float64
		)

		if err := rows.Scan(
			&sr.ID, &sr.LawID, &sr.ChapterNumber, &sr.ChapterTitle,
			&sr.Number, &sr.Title, &sr.Text,
			&lawTitle, &lawIssuer, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if lawTitle.Valid {
			sr.LawTitle = lawTitle.String
		}
		if lawIssuer.Valid {
			sr.LawIssuer = lawIssuer.String
		}

		results = append(results, sr)
	}

	return results, rows.Err()
}
