// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest records the pages written by a build in a SQLite file.
// The manifest describes the most recent build only: Open clears it, and no
// build reads it to skip work.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Page is one written document page.
type Page struct {
	Code       string    `json:"code"`
	Folder     string    `json:"folder"`
	SourceURL  string    `json:"source_url"`
	Title      string    `json:"title"`
	Path       string    `json:"path"`
	ContentLen int       `json:"content_len"`
	Charts     int       `json:"charts"`
	BuiltAt    time.Time `json:"built_at"`
}

// Store is an open manifest database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the manifest at path and clears previous records.
func Open(ctx context.Context, path string) (*Store, error) {
	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages`); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("clearing manifest: %w", err)
	}
	return s, nil
}

// OpenReadOnly opens an existing manifest without clearing it.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL,
		folder TEXT NOT NULL,
		source_url TEXT,
		title TEXT,
		path TEXT,
		content_len INTEGER,
		charts INTEGER,
		built_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_pages_folder ON pages(folder)`)
	return err
}

// Record stores p and returns the codes of pages recorded earlier in this
// build under the same folder. A non-empty result means p overwrote them.
func (s *Store) Record(ctx context.Context, p Page) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT code FROM pages WHERE folder = ? ORDER BY seq`, p.Folder)
	if err != nil {
		return nil, fmt.Errorf("checking folder %s: %w", p.Folder, err)
	}
	var previous []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		previous = append(previous, code)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	builtAt := p.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pages (code, folder, source_url, title, path, content_len, charts, built_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Code, p.Folder, p.SourceURL, p.Title, p.Path, p.ContentLen, p.Charts,
		builtAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting page %s: %w", p.Code, err)
	}

	return previous, tx.Commit()
}

// Pages returns the recorded pages in build order.
func (s *Store) Pages(ctx context.Context) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, folder, source_url, title, path, content_len, charts, built_at
		 FROM pages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		var builtAt string
		if err := rows.Scan(&p.Code, &p.Folder, &p.SourceURL, &p.Title, &p.Path, &p.ContentLen, &p.Charts, &builtAt); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, builtAt); err == nil {
			p.BuiltAt = t
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
