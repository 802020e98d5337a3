package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/property-engine/internal/property"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List the properties the grammars recognize",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := property.Default()
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%-26s  %-34s  %s\n", "Key", "Name", "Symbols")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
		for _, gr := range reg.Grammars() {
			name := gr.Def.Name
			if gr.Def.Unitless() {
				name += " (unitless)"
			}
			fmt.Fprintf(os.Stdout, "%-26s  %-34s  %s\n", gr.Def.Key, name, strings.Join(gr.Def.Symbols, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
}
