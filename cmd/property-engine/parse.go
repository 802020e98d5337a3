// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/property-engine/internal/extract"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse TOKEN...",
	Short: "Run one property grammar over tokens given on the command line",
	Long: `Parse runs a single property grammar over the given tokens and prints the
interpreted records. Tokens use the compact form, with an optional entity or
part-of-speech tag after a slash:

  property-engine parse --property mn Mn = 12.3 kDa
  property-engine parse --property pce the PCE of P3HT/B-CM is 3.5 %
  property-engine parse --property pce --source heading PCE "(" % ")"

The text source scans for every phrase; heading and cell sources must match
from the first token.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	key, _ := cmd.Flags().GetString("property")
	source, _ := cmd.Flags().GetString("source")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	switch types.RecordSource(source) {
	case types.SourceText, types.SourceHeading, types.SourceCell:
	default:
		return fmt.Errorf("unsupported source %q: use text, heading or cell", source)
	}

	reg, err := property.Default()
	if err != nil {
		return err
	}
	gr, ok := reg.Get(key)
	if !ok {
		return fmt.Errorf("%w: %q (see 'property-engine properties')", property.ErrUnknownProperty, key)
	}
	ex, err := extract.New(reg, types.ExtractionConfig{Properties: []string{key}}, extract.WithLogger(logger))
	if err != nil {
		return err
	}

	tokens := make([]types.Token, len(args))
	for i, a := range args {
		tokens[i] = types.ParseToken(a)
	}

	recs := ex.Interpret(gr, types.RecordSource(source), tokens)
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no match")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	data, err := yaml.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func init() {
	parseCmd.Flags().String("property", "", "property key (required)")
	parseCmd.Flags().String("source", string(types.SourceText), "grammar to run: text, heading or cell")
	parseCmd.Flags().Bool("json", false, "output records as JSON")
	_ = parseCmd.MarkFlagRequired("property")

	rootCmd.AddCommand(parseCmd)
}
