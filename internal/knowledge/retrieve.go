// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/property-engine/internal/extract"
	"github.com/pdiddy/property-engine/pkg/types"
)

// ErrRecordNotFound reports a Trace for an unknown record ID.
var ErrRecordNotFound = errors.New("record not found")

// QueryOptions holds the structured filters for Retrieve. Empty fields do
// not filter.
type QueryOptions struct {
	// Property filters by registry key ("band_gap").
	Property string

	// Entity matches a substring of any entity name or label,
	// case-insensitively for ASCII.
	Entity string

	// DocumentID filters by document.
	DocumentID string

	// Source filters by the grammar kind that produced the record.
	Source types.RecordSource

	// Units filters by exact unit text.
	Units string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Property == "" && q.Entity == "" && q.DocumentID == "" && q.Source == "" && q.Units == ""
}

// QueryResult is a stored record with its document title.
type QueryResult struct {
	types.PropertyRecord `yaml:",inline"`
	DocumentTitle        string `json:"document_title,omitempty" yaml:"document_title,omitempty"`
}

// Retrieve returns the records matching opts in document order, then in
// the order they were extracted.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT r.id, r.property, r.names, r.labels, r.value, r.units, r.specifier, r.source,
			r.document_id, r.section, r.paragraph, r.table_index, r.column_index, r.row_index,
			r.start_pos, r.end_pos, d.title
		FROM records r
		LEFT JOIN documents d ON r.document_id = d.id
		WHERE 1=1`)

	if opts.Property != "" {
		qb.WriteString(` AND r.property = ?`)
		args = append(args, opts.Property)
	}

	if opts.Entity != "" {
		qb.WriteString(` AND (r.names LIKE ? ESCAPE '\' OR r.labels LIKE ? ESCAPE '\')`)
		pattern := likePattern(opts.Entity)
		args = append(args, pattern, pattern)
	}

	if opts.DocumentID != "" {
		qb.WriteString(` AND r.document_id = ?`)
		args = append(args, opts.DocumentID)
	}

	if opts.Source != "" {
		qb.WriteString(` AND r.source = ?`)
		args = append(args, string(opts.Source))
	}

	if opts.Units != "" {
		qb.WriteString(` AND r.units = ?`)
		args = append(args, opts.Units)
	}

	qb.WriteString(` ORDER BY r.document_id, r.rowid LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr         QueryResult
			source     string
			namesJSON  sql.NullString
			labelsJSON sql.NullString
			docTitle   sql.NullString
		)

		if err := rows.Scan(
			&qr.ID, &qr.Property, &namesJSON, &labelsJSON, &qr.Value, &qr.Units, &qr.Specifier, &source,
			&qr.DocumentID, &qr.Section, &qr.Paragraph, &qr.Table, &qr.Column, &qr.Row,
			&qr.Start, &qr.End, &docTitle,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Source = types.RecordSource(source)
		if namesJSON.Valid {
			json.Unmarshal([]byte(namesJSON.String), &qr.Names)
		}
		if labelsJSON.Valid {
			json.Unmarshal([]byte(labelsJSON.String), &qr.Labels)
		}
		if docTitle.Valid {
			qr.DocumentTitle = docTitle.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// likePattern wraps s for a substring LIKE, escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// TraceResult is the source context of one record.
type TraceResult struct {
	RecordID   string `json:"record_id" yaml:"record_id"`
	DocumentID string `json:"document_id" yaml:"document_id"`
	Section    string `json:"section,omitempty" yaml:"section,omitempty"`

	// Context is the paragraph text for prose records and the column
	// heading for table records.
	Context string `json:"context" yaml:"context"`

	// Match is the matched tokens: the measurement in a paragraph, the
	// heading, or the data cell.
	Match string `json:"match" yaml:"match"`
}

// Trace locates a record in its source document under documentsDir.
func (s *Store) Trace(ctx context.Context, recordID string) (*TraceResult, error) {
	var (
		docID, source, section string
		sourceFile             sql.NullString
		para, tbl, col, row    int
		start, end             int
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT r.document_id, r.source, r.section, r.paragraph, r.table_index, r.column_index,
			r.row_index, r.start_pos, r.end_pos, d.source_file
		FROM records r LEFT JOIN documents d ON r.document_id = d.id
		WHERE r.id = ?`, recordID,
	).Scan(&docID, &source, &section, &para, &tbl, &col, &row, &start, &end, &sourceFile)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("looking up record: %w", err)
	}

	stem := docID
	if sourceFile.Valid && sourceFile.String != "" {
		stem = sourceFile.String
	}
	doc, err := s.loadDocument(stem)
	if err != nil {
		return nil, err
	}

	tr := &TraceResult{RecordID: recordID, DocumentID: docID, Section: section}
	switch types.RecordSource(source) {
	case types.SourceText:
		if para < 0 || para >= len(doc.Paragraphs) {
			return nil, fmt.Errorf("paragraph %d out of range in %s", para, docID)
		}
		toks := doc.Paragraphs[para].Tokens
		tr.Context = types.JoinTokens(toks)
		tr.Match = types.JoinTokens(span(toks, start, end))
	default:
		if tbl < 0 || tbl >= len(doc.Tables) {
			return nil, fmt.Errorf("table %d out of range in %s", tbl, docID)
		}
		t := doc.Tables[tbl]
		if col < 0 || col >= len(t.Headings) {
			return nil, fmt.Errorf("column %d out of range in %s", col, docID)
		}
		tr.Context = types.JoinTokens(t.Headings[col])
		tr.Match = tr.Context
		if row >= 0 {
			if row >= len(t.Rows) || col >= len(t.Rows[row]) {
				return nil, fmt.Errorf("cell %d,%d out of range in %s", row, col, docID)
			}
			tr.Match = types.JoinTokens(t.Rows[row][col])
		}
	}
	return tr, nil
}

// loadDocument finds the document file for stem in any supported format.
func (s *Store) loadDocument(stem string) (*types.Document, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(s.documentsDir, stem+ext)
		if _, err := os.Stat(path); err == nil {
			return extract.LoadDocument(path)
		}
	}
	return nil, fmt.Errorf("no document file for %s in %s", stem, s.documentsDir)
}

func span(toks []types.Token, start, end int) []types.Token {
	start = max(0, min(start, len(toks)))
	end = max(start, min(end, len(toks)))
	return toks[start:end]
}
