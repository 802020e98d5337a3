// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/property-engine/internal/extract"
	"github.com/pdiddy/property-engine/internal/metrics"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve property extraction over HTTP",
	Long: `Serve starts the HTTP extraction service:

  GET  /healthz         liveness
  GET  /v1/properties   registered properties
  POST /v1/extract      extract a tokenized document (JSON body)
  POST /v1/parse        run one property grammar over tokens
  GET  /metrics         Prometheus metrics

The grammar registry is built once at startup and shared by all requests.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, err := property.Default()
	if err != nil {
		return err
	}
	m := metrics.New()
	ex, err := extract.New(reg, cfg.Extraction, extract.WithLogger(logger), extract.WithMetrics(m))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(reg, ex, cfg.Server, logger, m).ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("read-timeout", 30*time.Second, "request read timeout")
	serveCmd.Flags().Duration("write-timeout", 30*time.Second, "response write timeout")
	serveCmd.Flags().Int("max-tokens", 0, "reject documents with more tokens (0 = unlimited)")

	bindFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	bindFlag("server.max_tokens", serveCmd.Flags().Lookup("max-tokens"))
	bindFlag("server.read_timeout", serveCmd.Flags().Lookup("read-timeout"))
	bindFlag("server.write_timeout", serveCmd.Flags().Lookup("write-timeout"))

	rootCmd.AddCommand(serveCmd)
}
