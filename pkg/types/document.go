// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the property-engine pipeline:
// pre-tokenized input documents, interpreted property records, extraction
// results, and stage configuration.
package types

// Paragraph is one pre-segmented region of prose. Tokens are in reading
// order as produced by the upstream tokenizer.
type Paragraph struct {
	// Section is the heading under which the paragraph appears.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Tokens is the tokenized paragraph text.
	Tokens []Token `json:"tokens" yaml:"tokens"`
}

// Table is a pre-segmented data table. Headings and rows are aligned by
// column index; the structure is detected upstream.
type Table struct {
	// Caption is the tokenized table caption, if any.
	Caption []Token `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Headings holds one tokenized heading cell per column.
	Headings [][]Token `json:"headings" yaml:"headings"`

	// Rows holds the data cells, one tokenized cell per column.
	Rows [][][]Token `json:"rows" yaml:"rows"`
}

// Document is a tokenized source document.
type Document struct {
	// ID is a slug identifying the document (e.g. "10.1021-jacs.5b01234").
	ID string `json:"id" yaml:"id"`

	// Title is the document title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Paragraphs holds the prose regions in reading order.
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`

	// Tables holds the document's data tables.
	Tables []Table `json:"tables,omitempty" yaml:"tables,omitempty"`
}
