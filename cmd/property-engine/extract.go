package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/property-engine/internal/extract"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [documents...]",
	Short: "Extract property records from tokenized documents",
	Long: `Extract scans every paragraph of each document with the property phrase
grammars and matches table columns against the heading and cell grammars.

Without arguments, every *.yaml, *.yml and *.json file in the documents
directory is processed and the records are written to
knowledge/extracted/<id>-records.yaml. Documents whose records file is newer
are skipped unless --force is given.

With arguments, the named files are extracted and the results printed to
stdout as YAML.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ex, err := newExtractor(cfg.Extraction)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return extractFiles(ex, args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := extract.ExtractAll(ctx, ex, cfg.Extraction, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}

func extractFiles(ex *extract.Extractor, paths []string) error {
	var results []*types.ExtractionResult
	for _, path := range paths {
		result, err := ex.ExtractFile(extract.DocumentID(path), path)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	}
	return nil
}

func newExtractor(cfg types.ExtractionConfig) (*extract.Extractor, error) {
	reg, err := property.Default()
	if err != nil {
		return nil, err
	}
	return extract.New(reg, cfg, extract.WithLogger(logger))
}

func init() {
	extractCmd.Flags().String("documents-dir", "documents", "directory of tokenized documents (*.yaml, *.json)")
	extractCmd.Flags().String("knowledge-dir", "knowledge", "base directory for extraction output (contains extracted/)")
	extractCmd.Flags().StringSlice("properties", nil, "restrict extraction to these property keys (default all)")
	extractCmd.Flags().Bool("skip-tables", false, "do not extract from document tables")
	extractCmd.Flags().Bool("force", false, "re-extract documents even when unchanged")

	bindFlag("extraction.documents_dir", extractCmd.Flags().Lookup("documents-dir"))
	bindFlag("extraction.knowledge_dir", extractCmd.Flags().Lookup("knowledge-dir"))
	bindFlag("extraction.properties", extractCmd.Flags().Lookup("properties"))
	bindFlag("extraction.skip_tables", extractCmd.Flags().Lookup("skip-tables"))
	bindFlag("extraction.force", extractCmd.Flags().Lookup("force"))

	rootCmd.AddCommand(extractCmd)
}
