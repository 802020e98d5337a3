// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the property-engine CLI: batch
// extraction of chemical property records from tokenized documents, a
// SQLite record store, and an HTTP extraction service.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/property-engine/internal/logging"
	"github.com/pdiddy/property-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the loaded configuration before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the property-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "property-engine",
	Short: "Extract chemical property records from tokenized documents",
	Long: `property-engine matches property grammars (band gap, PCE, molecular
weight, enthalpies and more) against pre-tokenized scientific documents and
turns every match into a structured record: property, entity, value and units.

Documents are YAML or JSON files of tokenized paragraphs and tables. The
extract command writes one records file per document; knowledge indexes
those files into SQLite for querying; serve exposes the same extraction over
HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./property-engine.yaml or ~/.config/property-engine/property-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	bindFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every configuration key so that environment
// variables are picked up by Unmarshal even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("extraction.documents_dir", "documents")
	v.SetDefault("extraction.knowledge_dir", "knowledge")
	v.SetDefault("extraction.properties", []string{})
	v.SetDefault("extraction.skip_tables", false)
	v.SetDefault("extraction.force", false)
	v.SetDefault("knowledge_base.knowledge_dir", "knowledge")
	v.SetDefault("knowledge_base.documents_dir", "documents")
	v.SetDefault("knowledge_base.max_results", 20)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_tokens", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("property-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "property-engine"))
		}
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureEnv maps keys like extraction.documents_dir to
// PROPERTY_ENGINE_EXTRACTION_DOCUMENTS_DIR.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("PROPERTY_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// loadConfig decodes the merged flags, environment and config file.
func loadConfig() (types.PipelineConfig, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
