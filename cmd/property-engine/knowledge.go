// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/property-engine/internal/knowledge"
	"github.com/pdiddy/property-engine/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the record store (store, retrieve, export)",
	Long: `Knowledge manages a local SQLite store built from extracted property
records. Use subcommands to index records, query them, or export.`,
}

// --- store subcommand ---

var knowledgeStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest extracted records into the record store",
	Long: `Store reads records files from knowledge/extracted/, ingests them into a
SQLite database, and writes an export file. Unchanged files are skipped on
subsequent runs.`,
	RunE: runKnowledgeStore,
}

func runKnowledgeStore(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var knowledgeRetrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Query the record store with structured filters",
	Long: `Retrieve lists records filtered by property, entity name or label,
document, source grammar, or units. Results include provenance back to the
source document.

Use --trace with a record ID to view the source paragraph or table cell.`,
	RunE: runKnowledgeRetrieve,
}

func runKnowledgeRetrieve(cmd *cobra.Command, args []string) error {
	traceID, _ := cmd.Flags().GetString("trace")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Trace mode: show source context for a specific record.
	if traceID != "" {
		tr, err := store.Trace(context.Background(), traceID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(tr)
		}
		if tr.Section != "" {
			fmt.Printf("[%s] %s\n", tr.DocumentID, tr.Section)
		} else {
			fmt.Printf("[%s]\n", tr.DocumentID)
		}
		fmt.Println(tr.Context)
		if tr.Match != tr.Context {
			fmt.Printf("  match: %s\n", tr.Match)
		}
		return nil
	}

	opts := queryOptsFromFlags(cmd)
	if opts.IsEmpty() {
		return fmt.Errorf("filter required: provide --property, --entity, --document, --source, or --units")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(results)
	}
	return formatRetrieveOutput(results)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRetrieveOutput(results []knowledge.QueryResult) error {
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-24s  %-14s  %-10s  %-20s  %s\n",
		"#", "Property", "Entity", "Value", "Units", "Document", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		entity := strings.Join(append(append([]string{}, r.Names...), r.Labels...), ", ")
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-24s  %-14s  %-10s  %-20s  %s\n",
			i+1, truncate(r.Property, 20), truncate(entity, 24), truncate(r.Value, 14),
			truncate(r.Units, 10), truncate(r.DocumentID, 20), r.Source)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the record store to YAML or JSON",
	Long: `Export writes the full record store (or a filtered subset) to
knowledge/index/export.yaml or export.json, grouped by document. Supports the
same filter flags as retrieve for partial exports.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to knowledge/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to knowledge/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore() (*knowledge.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return knowledge.NewStore(cfg.KnowledgeBase)
}

func queryOptsFromFlags(cmd *cobra.Command) knowledge.QueryOptions {
	prop, _ := cmd.Flags().GetString("property")
	entity, _ := cmd.Flags().GetString("entity")
	docID, _ := cmd.Flags().GetString("document")
	source, _ := cmd.Flags().GetString("source")
	units, _ := cmd.Flags().GetString("units")
	limit, _ := cmd.Flags().GetInt("limit")

	return knowledge.QueryOptions{
		Property:   prop,
		Entity:     entity,
		DocumentID: docID,
		Source:     types.RecordSource(source),
		Units:      units,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command, limitHelp string) {
	cmd.Flags().String("property", "", "filter by property key")
	cmd.Flags().String("entity", "", "filter by entity name or label (substring)")
	cmd.Flags().String("document", "", "filter by document ID")
	cmd.Flags().String("source", "", "filter by source: text, heading, cell")
	cmd.Flags().String("units", "", "filter by units")
	cmd.Flags().Int("limit", 0, limitHelp)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	knowledgeCmd.PersistentFlags().String("knowledge-dir", "knowledge", "base directory for knowledge (contains extracted/, index/)")
	knowledgeCmd.PersistentFlags().String("documents-dir", "documents", "directory of tokenized documents, used by --trace")
	knowledgeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")
	bindFlag("knowledge_base.knowledge_dir", knowledgeCmd.PersistentFlags().Lookup("knowledge-dir"))
	bindFlag("knowledge_base.documents_dir", knowledgeCmd.PersistentFlags().Lookup("documents-dir"))
	bindFlag("knowledge_base.max_results", knowledgeCmd.PersistentFlags().Lookup("max-results"))

	// Retrieve flags.
	addFilterFlags(knowledgeRetrieveCmd, "maximum results (0 = use default)")
	knowledgeRetrieveCmd.Flags().String("trace", "", "show source context for a record ID")
	knowledgeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	addFilterFlags(knowledgeExportCmd, "maximum records to export (0 = all)")
	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	// Wire subcommands.
	knowledgeCmd.AddCommand(knowledgeStoreCmd)
	knowledgeCmd.AddCommand(knowledgeRetrieveCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
