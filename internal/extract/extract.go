// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs the property grammars over tokenized documents and
// interprets the matches into property records. Prose paragraphs are
// scanned with every selected phrase grammar; table columns are matched
// against heading grammars and their cells parsed with the corresponding
// cell grammar.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/property-engine/internal/grammar"
	"github.com/pdiddy/property-engine/internal/logging"
	"github.com/pdiddy/property-engine/internal/metrics"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/pkg/types"
)

const (
	extractedDir  = "extracted"
	recordsSuffix = "-records.yaml"
)

// recordNamespace seeds the name-based record IDs.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pdiddy/property-engine/records"))

// BatchSummary reports the outcome of a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.log = logging.OrNop(l) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Extractor) { e.metrics = m }
}

// Extractor applies a fixed set of property grammars to documents. It is
// read-only after construction and safe for concurrent use.
type Extractor struct {
	grammars        []*property.Grammar
	compoundHeading grammar.Element
	compoundCell    grammar.Element
	skipTables      bool

	interp  *Interpreter
	log     *zap.Logger
	metrics *metrics.Recorder
}

// New builds an Extractor for the properties named in cfg, or all of the
// registry's properties when none are named.
func New(reg *property.Registry, cfg types.ExtractionConfig, opts ...Option) (*Extractor, error) {
	grammars, err := reg.Select(cfg.Properties)
	if err != nil {
		return nil, err
	}
	e := &Extractor{
		grammars:        grammars,
		compoundHeading: property.CompoundHeading(),
		compoundCell:    property.CompoundCell(reg.Recognizer()),
		skipTables:      cfg.SkipTables,
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.interp = NewInterpreter(e.log)
	return e, nil
}

// Grammars returns the grammars the extractor applies, in catalog order.
func (e *Extractor) Grammars() []*property.Grammar {
	return e.grammars
}

// ExtractDocument extracts every record from doc. Paragraph records come
// first, in paragraph order and then token order; table records follow in
// column order.
func (e *Extractor) ExtractDocument(doc *types.Document) *types.ExtractionResult {
	result := &types.ExtractionResult{DocumentID: doc.ID, Title: doc.Title}

	for i, para := range doc.Paragraphs {
		recs := e.ExtractTokens(para.Tokens)
		for j := range recs {
			recs[j].Section = para.Section
			recs[j].Paragraph = i
		}
		result.Records = append(result.Records, recs...)
	}

	if !e.skipTables {
		for i, tbl := range doc.Tables {
			result.Records = append(result.Records, e.extractTable(i, tbl)...)
		}
	}

	for i := range result.Records {
		result.Records[i].DocumentID = doc.ID
		result.Records[i].ID = recordID(result.Records[i])
	}
	e.metrics.ObserveRecords(result.Records)
	return result
}

// ExtractTokens scans one prose region with every phrase grammar and
// returns the records ordered by position. Records at the same position
// keep catalog order.
func (e *Extractor) ExtractTokens(tokens []types.Token) []types.PropertyRecord {
	var out []types.PropertyRecord
	for _, gr := range e.grammars {
		for _, m := range grammar.Scan(gr.Phrase, tokens) {
			out = append(out, e.interp.Interpret(types.SourceText, gr.Def.Key, m.Nodes)...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Interpret runs one grammar of one property against tokens anchored at
// the first token, returning the interpreted records. Text sources are
// scanned instead so that a sentence may hold several phrases.
func (e *Extractor) Interpret(gr *property.Grammar, source types.RecordSource, tokens []types.Token) []types.PropertyRecord {
	if source == types.SourceText {
		var out []types.PropertyRecord
		for _, m := range grammar.Scan(gr.Phrase, tokens) {
			out = append(out, e.interp.Interpret(source, gr.Def.Key, m.Nodes)...)
		}
		return out
	}
	m, ok := grammar.Parse(gr.Root(source), tokens)
	if !ok {
		return nil
	}
	recs := e.interp.Interpret(source, gr.Def.Key, m.Nodes)
	if source == types.SourceHeading {
		for i := range recs {
			recs[i].Start, recs[i].End = m.Start, m.End
		}
	}
	return recs
}

// recordID derives a stable UUID from the record's provenance and value.
func recordID(r types.PropertyRecord) string {
	key := fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d|%d|%d|%s|%s",
		r.DocumentID, r.Property, r.Source,
		r.Paragraph, r.Table, r.Column, r.Row,
		r.Start, r.End, r.Value, r.Units)
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}

// ExtractAll processes every document in cfg.DocumentsDir, writing
// extracted/<id>-records.yaml under cfg.KnowledgeDir. Documents whose
// output is newer than the input are skipped unless cfg.Force is set.
// Per-document failures are counted and reported on w; the batch keeps
// going. The returned error covers only setup failures and cancellation.
func ExtractAll(ctx context.Context, ex *Extractor, cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	outDir := filepath.Join(cfg.KnowledgeDir, extractedDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(cfg.DocumentsDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading documents directory %s: %w", cfg.DocumentsDir, err)
	}

	var summary BatchSummary

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if entry.IsDir() || !IsDocumentFile(entry.Name()) {
			continue
		}

		docID := DocumentID(entry.Name())
		inPath := filepath.Join(cfg.DocumentsDir, entry.Name())
		outPath := filepath.Join(outDir, docID+recordsSuffix)

		changed, err := hasChanged(inPath, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			ex.metrics.ObserveDocument(metrics.StatusFailed, 0)
			summary.Failed++
			continue
		}
		if !changed && !cfg.Force {
			fmt.Fprintf(w, "skipped %s\n", docID)
			ex.metrics.ObserveDocument(metrics.StatusSkipped, 0)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "extracting %s\n", docID)
		start := time.Now()

		result, err := ex.ExtractFile(docID, inPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			ex.metrics.ObserveDocument(metrics.StatusFailed, time.Since(start))
			summary.Failed++
			continue
		}

		if err := writeResult(outPath, result); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", docID, err)
			ex.metrics.ObserveDocument(metrics.StatusFailed, time.Since(start))
			summary.Failed++
			continue
		}

		ex.metrics.ObserveDocument(metrics.StatusExtracted, time.Since(start))
		ex.log.Debug("document extracted",
			zap.String("document", docID),
			zap.Int("records", len(result.Records)),
			zap.Duration("elapsed", time.Since(start)),
		)
		fmt.Fprintf(w, "extracted %s (%d records)\n", docID, len(result.Records))
		summary.Extracted++
	}

	return summary, nil
}

// ExtractFile loads one document file and extracts it. An empty document
// ID in the file is replaced by docID.
func (e *Extractor) ExtractFile(docID, path string) (*types.ExtractionResult, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = docID
	}
	return e.ExtractDocument(doc), nil
}

// IsDocumentFile reports whether name has a document extension.
func IsDocumentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// DocumentID derives a document ID from its file name.
func DocumentID(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

// LoadDocument reads a tokenized document from a YAML or JSON file.
func LoadDocument(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	var doc types.Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", filepath.Base(path), err)
	}
	return &doc, nil
}

// hasChanged returns true if the document is newer than the output or the
// output does not exist.
func hasChanged(inPath, outPath string) (bool, error) {
	inInfo, err := os.Stat(inPath)
	if err != nil {
		return false, fmt.Errorf("stat document %s: %w", inPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

// writeResult marshals an ExtractionResult to YAML and writes it to path.
func writeResult(path string, result *types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
