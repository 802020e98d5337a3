// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RecordSource identifies which grammar produced a PropertyRecord.
type RecordSource string

const (
	SourceText    RecordSource = "text"
	SourceHeading RecordSource = "heading"
	SourceCell    RecordSource = "cell"
)

// PropertyRecord is one interpreted property mention. Value keeps the
// original notation (ranges, uncertainty digits, comparators); it is never
// parsed into a float.
type PropertyRecord struct {
	// ID is stable across re-extractions of unchanged input.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Property is the registry key of the property (e.g. "band_gap").
	Property string `json:"property" yaml:"property"`

	// Names lists the chemical entity names the value is attached to.
	Names []string `json:"names,omitempty" yaml:"names,omitempty"`

	// Labels lists the chemical entity labels (e.g. "3a", "P1").
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Value is the magnitude in original notation. Empty only for heading records.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Units is the unit text. Empty when absent or the property is unitless.
	Units string `json:"units,omitempty" yaml:"units,omitempty"`

	// Specifier is the property name or symbol as written, when captured.
	Specifier string `json:"specifier,omitempty" yaml:"specifier,omitempty"`

	// Source is the grammar kind that produced the record.
	Source RecordSource `json:"source" yaml:"source"`

	// DocumentID identifies the source document.
	DocumentID string `json:"document_id,omitempty" yaml:"document_id,omitempty"`

	// Section is the heading of the paragraph the record came from.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Paragraph is the zero-based paragraph index for text records.
	Paragraph int `json:"paragraph,omitempty" yaml:"paragraph,omitempty"`

	// Table, Column and Row locate table records (zero-based). Row is -1
	// for heading records.
	Table  int `json:"table,omitempty" yaml:"table,omitempty"`
	Column int `json:"column,omitempty" yaml:"column,omitempty"`
	Row    int `json:"row,omitempty" yaml:"row,omitempty"`

	// Start and End are the matched token span within the region.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// HasEntity reports whether the record is attached to a chemical entity.
func (r PropertyRecord) HasEntity() bool {
	return len(r.Names) > 0 || len(r.Labels) > 0
}

// ExtractionResult holds the records extracted from a single document.
type ExtractionResult struct {
	// DocumentID identifies the source document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Title is copied from the source document.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Records holds the interpreted records in scan order.
	Records []PropertyRecord `json:"records" yaml:"records"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
