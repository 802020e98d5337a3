// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists extracted property records in SQLite and
// answers structured queries over them.
package knowledge

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
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/property-engine/pkg/types"
)

const (
	extractedDir  = "extracted"
	indexDir      = "index"
	dbFile        = "properties.db"
	recordsSuffix = "-records.yaml"
)

// Store manages the record store SQLite database.
type Store struct {
	db           *sql.DB
	knowledgeDir string
	documentsDir string
	maxResults   int
}

// NewStore opens or creates the database at knowledgeDir/index/properties.db
// and creates the schema if it does not exist.
func NewStore(cfg types.KnowledgeBaseConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.KnowledgeDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
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
		knowledgeDir: cfg.KnowledgeDir,
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
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			source_file TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			property TEXT NOT NULL,
			names TEXT,
			labels TEXT,
			value TEXT,
			units TEXT,
			specifier TEXT,
			source TEXT NOT NULL,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			section TEXT,
			paragraph INTEGER,
			table_index INTEGER,
			column_index INTEGER,
			row_index INTEGER,
			start_pos INTEGER,
			end_pos INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_property ON records(property)`,
		`CREATE INDEX IF NOT EXISTS idx_records_document_id ON records(document_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source_file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
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

// Total returns the number of extraction files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction results from knowledgeDir/extracted/ and loads
// them into the database. A file whose modification time matches the last
// indexing run is skipped; a changed file replaces the records of its
// document. When anything changed, export.yaml is rewritten.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.knowledgeDir, extractedDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordsSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		stem := strings.TrimSuffix(entry.Name(), recordsSuffix)
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE source_file = ?`, stem,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", stem)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", stem, err)
			summary.Failed++
			continue
		}
		if result.DocumentID == "" {
			result.DocumentID = stem
		}

		if err := s.ingestDocument(ctx, stem, &result, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d records)\n", stem, len(result.Records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d records)\n", stem, len(result.Records))
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

func (s *Store) ingestDocument(ctx context.Context, stem string, result *types.ExtractionResult, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// The file may have been indexed before under a different document ID.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE document_id = ? OR document_id IN (SELECT id FROM documents WHERE source_file = ?)`,
		result.DocumentID, stem,
	); err != nil {
		return fmt.Errorf("deleting old records: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE source_file = ? AND id != ?`, stem, result.DocumentID,
	); err != nil {
		return fmt.Errorf("deleting old document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_file) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, source_file=excluded.source_file`,
		result.DocumentID, result.Title, stem,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (id, property, names, labels, value, units, specifier, source,
			document_id, section, paragraph, table_index, column_index, row_index, start_pos, end_pos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range result.Records {
		if rec.ID == "" {
			return fmt.Errorf("record without id in %s", stem)
		}
		namesJSON, _ := json.Marshal(rec.Names)
		labelsJSON, _ := json.Marshal(rec.Labels)
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.Property, string(namesJSON), string(labelsJSON),
			rec.Value, rec.Units, rec.Specifier, string(rec.Source),
			result.DocumentID, rec.Section, rec.Paragraph,
			rec.Table, rec.Column, rec.Row, rec.Start, rec.End,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (source_file, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		stem, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
