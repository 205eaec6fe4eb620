// Package metrics exposes the extraction service's Prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	// Extractions counts documents by platform and outcome (succeeded, degraded, failed).
	Extractions      *prometheus.CounterVec
	ExtractSec       prometheus.Histogram
	FieldDefaults    *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	RecordsPersisted prometheus.Counter
	QueueDepth       prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	HTTPLatencySec   *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	extractions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "awb_extractions_total",
		Help: "Label documents processed, by platform and outcome.",
	}, []string{"platform", "outcome"})
	extractSec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "awb_extract_duration_seconds",
		Help:    "Time spent assembling one record.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})
	fieldDefaults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "awb_field_defaults_total",
		Help: "Fields that fell back to their default, by platform and field.",
	}, []string{"platform", "field"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "awb_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "awb_cache_misses_total"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "awb_records_persisted_total"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{Name: "awb_queue_depth"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "awb_http_requests_total",
	}, []string{"route", "code"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "awb_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		extractions, extractSec, fieldDefaults, cacheHits, cacheMisses, persisted, queueDepth, httpRequests, httpLatency,
	)
	return &Registry{
		reg:              r,
		Extractions:      extractions,
		ExtractSec:       extractSec,
		FieldDefaults:    fieldDefaults,
		CacheHits:        cacheHits,
		CacheMisses:      cacheMisses,
		RecordsPersisted: persisted,
		QueueDepth:       queueDepth,
		HTTPRequests:     httpRequests,
		HTTPLatencySec:   httpLatency,
	}
}

// ObserveHTTP records one served request.
func (r *Registry) ObserveHTTP(route string, code int, seconds float64) {
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.HTTPLatencySec.WithLabelValues(route).Observe(seconds)
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
