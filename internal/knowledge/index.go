// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// WriteIndex writes the corpus and its term sets to a fresh SQLite database
// at path so reviewers can inspect term coverage with plain SQL. An existing
// file at path is replaced. The server never reads this file.
func (b *Base) WriteIndex(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old index: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := createIndexSchema(ctx, db); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO corpus_meta (key, value) VALUES ('version', ?)`, b.version,
	); err != nil {
		return fmt.Errorf("writing corpus version: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (id, position, category, title, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer docStmt.Close()

	termStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_terms (document_id, term) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing term insert: %w", err)
	}
	defer termStmt.Close()

	for i := range b.docs {
		d := &b.docs[i]
		if _, err := docStmt.ExecContext(ctx, d.ID, i, string(d.Category), d.Title, d.Body); err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
		for _, t := range d.Terms() {
			if _, err := termStmt.ExecContext(ctx, d.ID, t); err != nil {
				return fmt.Errorf("inserting term %q for %s: %w", t, d.ID, err)
			}
		}
	}

	return tx.Commit()
}

func createIndexSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE corpus_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE TABLE documents (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE TABLE document_terms (
			document_id TEXT NOT NULL REFERENCES documents(id),
			term TEXT NOT NULL,
			PRIMARY KEY (document_id, term)
		)`,
		`CREATE INDEX idx_document_terms_term ON document_terms(term)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
