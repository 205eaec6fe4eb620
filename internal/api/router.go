// Package api is the HTTP surface of the extraction service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/awb-extractor/internal/export"
	"github.com/joseph-ayodele/awb-extractor/internal/metrics"
	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
)

// Deps are the collaborators the handlers need. Repo and Export may be nil
// when no store is configured; the record endpoints then answer 503.
type Deps struct {
	Processor    *pipeline.Processor
	Repo         repository.RecordRepository
	Export       *export.Service
	Metrics      *metrics.Registry
	Logger       *slog.Logger
	MaxBodyBytes int64
	BatchWorkers int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 4 << 20
	}
	if d.BatchWorkers <= 0 {
		d.BatchWorkers = 4
	}
	h := &handler{deps: d}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /v1/extract", h.extract)
	mux.HandleFunc("POST /v1/extract/batch", h.extractBatch)
	mux.HandleFunc("GET /v1/records", h.listRecords)
	mux.HandleFunc("GET /v1/records/{id}", h.getRecord)
	mux.HandleFunc("GET /v1/export.xlsx", h.exportXLSX)
	mux.HandleFunc("GET /v1/export.csv", h.exportCSV)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return requestIDMiddleware(loggingMiddleware(d.Logger, d.Metrics, mux))
}
