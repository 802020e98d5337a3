// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/property-engine/internal/grammar"
	"github.com/pdiddy/property-engine/internal/metrics"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/pkg/types"
)

func tokens(s ...string) []types.Token {
	out := make([]types.Token, len(s))
	for i, x := range s {
		out[i] = types.ParseToken(x)
	}
	return out
}

func newExtractor(t *testing.T, cfg types.ExtractionConfig, opts ...Option) *Extractor {
	t.Helper()
	reg, err := property.Default()
	require.NoError(t, err)
	ex, err := New(reg, cfg, opts...)
	require.NoError(t, err)
	return ex
}

func grammarFor(t *testing.T, ex *Extractor, key string) *property.Grammar {
	t.Helper()
	for _, gr := range ex.Grammars() {
		if gr.Def.Key == key {
			return gr
		}
	}
	t.Fatalf("no grammar %q", key)
	return nil
}

// --- Interpreter ---

func TestInterpretMolecularWeight(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	recs := ex.Interpret(grammarFor(t, ex, "mn"), types.SourceText, tokens("Mn", "=", "12.3", "kDa"))

	require.Len(t, recs, 1)
	assert.Equal(t, "mn", recs[0].Property)
	assert.Equal(t, "12.3", recs[0].Value)
	assert.Equal(t, "kDa", recs[0].Units)
	assert.Equal(t, "Mn", recs[0].Specifier)
	assert.Equal(t, types.SourceText, recs[0].Source)
	assert.False(t, recs[0].HasEntity())
}

func TestInterpretBandGapRange(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	recs := ex.Interpret(grammarFor(t, ex, "band_gap"), types.SourceText,
		tokens("band", "gap", "of", "1.5", "-", "1.8", "eV"))

	require.Len(t, recs, 1)
	assert.Equal(t, "1.5-1.8", recs[0].Value)
	assert.Equal(t, "eV", recs[0].Units)
	assert.Equal(t, "band gap", recs[0].Specifier)
}

func TestInterpretTableHeadingAndCell(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	pce := grammarFor(t, ex, "pce")

	heading := ex.Interpret(pce, types.SourceHeading, tokens("PCE", "(", "%", ")"))
	require.Len(t, heading, 1)
	assert.Equal(t, "%", heading[0].Units)
	assert.Empty(t, heading[0].Value)
	assert.Equal(t, types.SourceHeading, heading[0].Source)
	assert.Equal(t, 4, heading[0].End)

	cells := ex.Interpret(pce, types.SourceCell, tokens("5.2", ",", "6.1"))
	require.Len(t, cells, 2)
	assert.Equal(t, "5.2", cells[0].Value)
	assert.Equal(t, "6.1", cells[1].Value)
	assert.Empty(t, cells[0].Units)
	assert.Empty(t, cells[1].Units)
}

func TestInterpretEntity(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	recs := ex.Interpret(grammarFor(t, ex, "pce"), types.SourceText,
		tokens("the", "PCE", "of", "P3HT/B-CM", "is", "3.5", "%"))

	require.Len(t, recs, 1)
	assert.Equal(t, []string{"P3HT"}, recs[0].Names)
	assert.Empty(t, recs[0].Labels)
	assert.Equal(t, "PCE", recs[0].Specifier)
}

func TestInterpretHeadingWithoutUnits(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})

	recs := ex.Interpret(grammarFor(t, ex, "fill_factor"), types.SourceHeading, tokens("FF"))
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Units)
	assert.Empty(t, recs[0].Value)

	assert.Empty(t, ex.Interpret(grammarFor(t, ex, "fill_factor"), types.SourceHeading, tokens("PCE")))
}

func TestInterpretSkipsMeasurementWithoutValue(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	in := NewInterpreter(zap.New(core))

	nodes := []*grammar.Node{{
		Label: property.LabelPhrase,
		Children: []*grammar.Node{{
			Label:    property.LabelMeasurement,
			Children: []*grammar.Node{{Label: property.LabelUnits, Text: "eV"}},
		}},
	}}
	assert.Empty(t, in.Interpret(types.SourceText, "band_gap", nodes))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "measurement without value", logs.All()[0].Message)
}

func TestInterpretNoMatchNoRecords(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	pce := grammarFor(t, ex, "pce")
	assert.Empty(t, ex.Interpret(pce, types.SourceText, tokens("no", "numbers", "here")))
	assert.Empty(t, ex.Interpret(pce, types.SourceCell, tokens("n.d.")))
}

// --- ExtractDocument ---

func testDocument() *types.Document {
	return &types.Document{
		ID:    "doc1",
		Title: "Polymer solar cells",
		Paragraphs: []types.Paragraph{
			{
				Section: "Results",
				Tokens: tokens(
					"P3HT/B-CM", "has", "a", "band", "gap", "of", "1.9", "eV", ".",
					"The", "PCE", "of", "P3HT/B-CM", "is", "3.5", "%",
				),
			},
			{Section: "Methods", Tokens: tokens("Films", "were", "spin", "coated", ".")},
		},
		Tables: []types.Table{{
			Headings: [][]types.Token{
				tokens("Polymer"),
				tokens("PCE", "(", "%", ")"),
				tokens("Voc", "/", "V"),
				tokens("FF"),
			},
			Rows: [][][]types.Token{
				{tokens("P3HT/B-CM"), tokens("3.5"), tokens("0.61"), tokens("0.65")},
				{tokens("PTB7-Th"), tokens("7.2", ",", "7.4"), tokens("0.74"), tokens("0.70")},
			},
		}},
	}
}

func TestExtractDocument(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	result := ex.ExtractDocument(testDocument())

	assert.Equal(t, "doc1", result.DocumentID)
	assert.Equal(t, "Polymer solar cells", result.Title)
	require.Len(t, result.Records, 12)

	type row struct {
		property, value, units string
		source                 types.RecordSource
		names                  []string
	}
	want := []row{
		{"band_gap", "1.9", "eV", types.SourceText, []string{"P3HT"}},
		{"pce", "3.5", "%", types.SourceText, []string{"P3HT"}},
		{"pce", "", "%", types.SourceHeading, nil},
		{"pce", "3.5", "%", types.SourceCell, []string{"P3HT"}},
		{"pce", "7.2", "%", types.SourceCell, []string{"PTB7-Th"}},
		{"pce", "7.4", "%", types.SourceCell, []string{"PTB7-Th"}},
		{"voc", "", "V", types.SourceHeading, nil},
		{"voc", "0.61", "V", types.SourceCell, []string{"P3HT"}},
		{"voc", "0.74", "V", types.SourceCell, []string{"PTB7-Th"}},
		{"fill_factor", "", "", types.SourceHeading, nil},
		{"fill_factor", "0.65", "", types.SourceCell, []string{"P3HT"}},
		{"fill_factor", "0.70", "", types.SourceCell, []string{"PTB7-Th"}},
	}
	for i, w := range want {
		got := result.Records[i]
		assert.Equal(t, w.property, got.Property, "record %d", i)
		assert.Equal(t, w.value, got.Value, "record %d", i)
		assert.Equal(t, w.units, got.Units, "record %d", i)
		assert.Equal(t, w.source, got.Source, "record %d", i)
		assert.Equal(t, w.names, got.Names, "record %d", i)
		assert.Equal(t, "doc1", got.DocumentID, "record %d", i)
	}

	assert.Equal(t, "Results", result.Records[0].Section)
	assert.Equal(t, 0, result.Records[0].Paragraph)

	h := result.Records[2]
	assert.Equal(t, "PCE", h.Specifier)
	assert.Equal(t, 1, h.Column)
	assert.Equal(t, -1, h.Row)
	assert.Equal(t, "PCE", result.Records[3].Specifier)
	assert.Equal(t, 1, result.Records[4].Row)
	assert.Equal(t, "Voc", result.Records[6].Specifier)
	assert.Equal(t, 2, result.Records[7].Column)
}

func TestExtractDocumentStableIDs(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	a := ex.ExtractDocument(testDocument())
	b := ex.ExtractDocument(testDocument())

	seen := make(map[string]bool)
	for i := range a.Records {
		require.NotEmpty(t, a.Records[i].ID)
		assert.Equal(t, a.Records[i].ID, b.Records[i].ID)
		assert.False(t, seen[a.Records[i].ID], "duplicate id %s", a.Records[i].ID)
		seen[a.Records[i].ID] = true
	}
}

func TestExtractDocumentOptions(t *testing.T) {
	skip := newExtractor(t, types.ExtractionConfig{SkipTables: true})
	assert.Len(t, skip.ExtractDocument(testDocument()).Records, 2)

	only := newExtractor(t, types.ExtractionConfig{Properties: []string{"pce"}})
	recs := only.ExtractDocument(testDocument()).Records
	require.Len(t, recs, 5)
	for _, r := range recs {
		assert.Equal(t, "pce", r.Property)
	}

	reg, err := property.Default()
	require.NoError(t, err)
	_, err = New(reg, types.ExtractionConfig{Properties: []string{"density"}})
	assert.ErrorIs(t, err, property.ErrUnknownProperty)
}

func TestExtractDocumentRecordsMetrics(t *testing.T) {
	m := metrics.New()
	ex := newExtractor(t, types.ExtractionConfig{}, WithMetrics(m))
	ex.ExtractDocument(testDocument())

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != "property_engine_records_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 12.0, total)
}

func TestTableWithoutCompoundColumn(t *testing.T) {
	ex := newExtractor(t, types.ExtractionConfig{})
	doc := &types.Document{
		ID: "doc2",
		Tables: []types.Table{{
			Headings: [][]types.Token{tokens("Mn", "(", "kDa", ")"), tokens("Notes")},
			Rows: [][][]types.Token{
				{tokens("12.3"), tokens("GPC")},
				{tokens("n.d."), tokens("insoluble")},
				{tokens("15.1", "(", "kg/mol", ")")},
			},
		}},
	}
	recs := ex.ExtractDocument(doc).Records
	require.Len(t, recs, 3)
	assert.Equal(t, types.SourceHeading, recs[0].Source)
	assert.Equal(t, "kDa", recs[0].Units)
	assert.Equal(t, "12.3", recs[1].Value)
	assert.Equal(t, "kDa", recs[1].Units)
	assert.False(t, recs[1].HasEntity())
	assert.Equal(t, "15.1", recs[2].Value)
	assert.Equal(t, "kg/mol", recs[2].Units, "cell units override the heading")
	assert.Equal(t, 2, recs[2].Row)
}

// --- Batch ---

const yamlDocument = `id: ""
title: Test
paragraphs:
  - section: Results
    tokens: ["Mn", "=", "12.3", "kDa"]
`

const jsonDocument = `{"id": "custom-id", "paragraphs": [{"tokens": ["the", "PCE", "of", "P3HT/B-CM", "is", "3.5", "%"]}]}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readResult(t *testing.T, path string) types.ExtractionResult {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var result types.ExtractionResult
	require.NoError(t, yaml.Unmarshal(data, &result))
	return result
}

func batchConfig(tmpDir string) types.ExtractionConfig {
	return types.ExtractionConfig{
		DocumentsDir: filepath.Join(tmpDir, "documents"),
		KnowledgeDir: filepath.Join(tmpDir, "knowledge"),
	}
}

func TestExtractAll(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := batchConfig(tmpDir)
	writeFile(t, filepath.Join(cfg.DocumentsDir, "paper1.yaml"), yamlDocument)
	writeFile(t, filepath.Join(cfg.DocumentsDir, "paper2.json"), jsonDocument)
	writeFile(t, filepath.Join(cfg.DocumentsDir, "README.md"), "not a document")

	ex := newExtractor(t, cfg)
	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), ex, cfg, &buf)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Extracted: 2}, summary)
	assert.Contains(t, buf.String(), "extracted paper1 (1 records)")

	outDir := filepath.Join(cfg.KnowledgeDir, extractedDir)
	r1 := readResult(t, filepath.Join(outDir, "paper1-records.yaml"))
	assert.Equal(t, "paper1", r1.DocumentID)
	require.Len(t, r1.Records, 1)
	assert.Equal(t, "12.3", r1.Records[0].Value)
	assert.Equal(t, "Results", r1.Records[0].Section)

	r2 := readResult(t, filepath.Join(outDir, "paper2-records.yaml"))
	assert.Equal(t, "custom-id", r2.DocumentID)
	require.Len(t, r2.Records, 1)
	assert.Equal(t, []string{"P3HT"}, r2.Records[0].Names)
}

func TestExtractAllSkipsUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := batchConfig(tmpDir)
	writeFile(t, filepath.Join(cfg.DocumentsDir, "paper1.yaml"), yamlDocument)

	outPath := filepath.Join(cfg.KnowledgeDir, extractedDir, "paper1-records.yaml")
	writeFile(t, outPath, "document_id: paper1\nrecords: []\n")
	// Output newer than the document.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(outPath, future, future))

	ex := newExtractor(t, cfg)
	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), ex, cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Skipped: 1}, summary)
	assert.Contains(t, buf.String(), "skipped paper1")
	assert.Empty(t, readResult(t, outPath).Records)

	cfg.Force = true
	summary, err = ExtractAll(context.Background(), ex, cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Extracted: 1}, summary)
	assert.Len(t, readResult(t, outPath).Records, 1)
}

func TestExtractAllReextractsChanged(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := batchConfig(tmpDir)
	docPath := filepath.Join(cfg.DocumentsDir, "paper1.yaml")
	writeFile(t, docPath, yamlDocument)

	outPath := filepath.Join(cfg.KnowledgeDir, extractedDir, "paper1-records.yaml")
	writeFile(t, outPath, "document_id: paper1\nrecords: []\n")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(outPath, past, past))

	ex := newExtractor(t, cfg)
	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), ex, cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Extracted)
	assert.Len(t, readResult(t, outPath).Records, 1)
}

func TestExtractAllCountsFailures(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := batchConfig(tmpDir)
	writeFile(t, filepath.Join(cfg.DocumentsDir, "bad.yaml"), "paragraphs: [unterminated\n")
	writeFile(t, filepath.Join(cfg.DocumentsDir, "good.yaml"), yamlDocument)

	m := metrics.New()
	ex := newExtractor(t, cfg, WithMetrics(m))
	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), ex, cfg, &buf)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Extracted: 1, Failed: 1}, summary)
	assert.True(t, summary.HasFailures())
	assert.Contains(t, buf.String(), "failed  bad:")
}

func TestExtractAllMissingDirectory(t *testing.T) {
	cfg := batchConfig(t.TempDir())
	ex := newExtractor(t, cfg)
	_, err := ExtractAll(context.Background(), ex, cfg, &strings.Builder{})
	assert.Error(t, err)
}

func TestExtractAllCancelled(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := batchConfig(tmpDir)
	writeFile(t, filepath.Join(cfg.DocumentsDir, "paper1.yaml"), yamlDocument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := newExtractor(t, cfg)
	summary, err := ExtractAll(ctx, ex, cfg, &strings.Builder{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Total())
}

func TestBatchSummary(t *testing.T) {
	s := BatchSummary{Extracted: 3, Skipped: 2, Failed: 1}
	assert.Equal(t, 6, s.Total())
	assert.True(t, s.HasFailures())
	assert.False(t, BatchSummary{Extracted: 1}.HasFailures())
}

func TestDocumentFileNames(t *testing.T) {
	assert.True(t, IsDocumentFile("a.yaml"))
	assert.True(t, IsDocumentFile("a.YML"))
	assert.True(t, IsDocumentFile("a.json"))
	assert.False(t, IsDocumentFile("a.md"))
	assert.Equal(t, "10.1021-jacs.5b01234", DocumentID("/x/10.1021-jacs.5b01234.yaml"))
}
