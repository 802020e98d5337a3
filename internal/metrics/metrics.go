// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes extraction counters on a private Prometheus
// registry. A nil *Recorder is valid and records nothing, so library
// callers that do not serve metrics can pass nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/property-engine/pkg/types"
)

const namespace = "property_engine"

// Document outcomes for the documents_total counter.
const (
	StatusExtracted = "extracted"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Recorder holds the extraction collectors.
type Recorder struct {
	registry  *prometheus.Registry
	records   *prometheus.CounterVec
	documents *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New creates a Recorder with its own registry, including the Go runtime
// and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Property records extracted, by property and source grammar.",
		}, []string{"property", "source"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Time spent extracting one document.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
	r.registry.MustRegister(
		r.records,
		r.documents,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveRecords counts records by property and source.
func (r *Recorder) ObserveRecords(records []types.PropertyRecord) {
	if r == nil {
		return
	}
	for _, rec := range records {
		r.records.WithLabelValues(rec.Property, string(rec.Source)).Inc()
	}
}

// ObserveDocument counts one document outcome. The duration is recorded
// only for documents that were actually extracted.
func (r *Recorder) ObserveDocument(status string, d time.Duration) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(status).Inc()
	if status == StatusExtracted {
		r.duration.Observe(d.Seconds())
	}
}
