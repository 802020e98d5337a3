// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes extraction over HTTP. Handlers share one
// read-only registry and extractor, so requests are served concurrently
// without locking.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/property-engine/internal/extract"
	"github.com/pdiddy/property-engine/internal/logging"
	"github.com/pdiddy/property-engine/internal/metrics"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// PropertyInfo describes one registered property.
type PropertyInfo struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Symbols  []string `json:"symbols,omitempty"`
	Phrases  []string `json:"phrases,omitempty"`
	Unitless bool     `json:"unitless"`
}

// ParseRequest runs one property grammar over a token sequence.
type ParseRequest struct {
	Property string             `json:"property" binding:"required"`
	Source   types.RecordSource `json:"source"`
	Tokens   []types.Token      `json:"tokens" binding:"required"`
}

// RecordsResponse carries interpreted records.
type RecordsResponse struct {
	Records []types.PropertyRecord `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP extraction service.
type Server struct {
	reg     *property.Registry
	ex      *extract.Extractor
	cfg     types.ServerConfig
	log     *zap.Logger
	metrics *metrics.Recorder
	engine  *gin.Engine
}

// New builds the service and its routes. m may be nil, in which case
// /metrics is not served.
func New(reg *property.Registry, ex *extract.Extractor, cfg types.ServerConfig, log *zap.Logger, m *metrics.Recorder) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		reg:     reg,
		ex:      ex,
		cfg:     cfg,
		log:     logging.OrNop(log),
		metrics: m,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.accessLog())

	s.engine.GET("/healthz", s.healthz)
	v1 := s.engine.Group("/v1")
	v1.GET("/properties", s.properties)
	v1.POST("/extract", s.extractDocument)
	v1.POST("/parse", s.parse)
	if m != nil {
		s.engine.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) properties(c *gin.Context) {
	grammars := s.reg.Grammars()
	out := make([]PropertyInfo, len(grammars))
	for i, gr := range grammars {
		out[i] = PropertyInfo{
			Key:      gr.Def.Key,
			Name:     gr.Def.Name,
			Symbols:  gr.Def.Symbols,
			Phrases:  gr.Def.Phrases,
			Unitless: gr.Def.Unitless(),
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) extractDocument(c *gin.Context) {
	var doc types.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if n := documentTokens(&doc); s.cfg.MaxTokens > 0 && n > s.cfg.MaxTokens {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
			Error: fmt.Sprintf("document has %d tokens, limit is %d", n, s.cfg.MaxTokens),
		})
		return
	}

	start := time.Now()
	result := s.ex.ExtractDocument(&doc)
	s.metrics.ObserveDocument(metrics.StatusExtracted, time.Since(start))
	c.JSON(http.StatusOK, result)
}

func (s *Server) parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = types.SourceText
	}
	switch req.Source {
	case types.SourceText, types.SourceHeading, types.SourceCell:
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown source %q", req.Source)})
		return
	}
	if s.cfg.MaxTokens > 0 && len(req.Tokens) > s.cfg.MaxTokens {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
			Error: fmt.Sprintf("request has %d tokens, limit is %d", len(req.Tokens), s.cfg.MaxTokens),
		})
		return
	}

	gr, ok := s.reg.Get(req.Property)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("%v: %q", property.ErrUnknownProperty, req.Property)})
		return
	}

	recs := s.ex.Interpret(gr, req.Source, req.Tokens)
	s.metrics.ObserveRecords(recs)
	if recs == nil {
		recs = []types.PropertyRecord{}
	}
	c.JSON(http.StatusOK, RecordsResponse{Records: recs})
}

func documentTokens(doc *types.Document) int {
	n := 0
	for _, p := range doc.Paragraphs {
		n += len(p.Tokens)
	}
	for _, t := range doc.Tables {
		n += len(t.Caption)
		for _, h := range t.Headings {
			n += len(h)
		}
		for _, row := range t.Rows {
			for _, cell := range row {
				n += len(cell)
			}
		}
	}
	return n
}
