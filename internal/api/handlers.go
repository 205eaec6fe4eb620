package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/async"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
)

const healthTimeout = 2 * time.Second

type handler struct {
	deps Deps
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.deps.Repo != nil {
		logger := common.LoggerFromContext(r.Context(), h.deps.Logger)
		if err := repository.HealthCheck(r.Context(), h.deps.Repo, healthTimeout, logger); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(w, r, h.deps.MaxBodyBytes, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	doc := pipeline.Document{
		Source: common.RequestIDFromContext(r.Context()),
		Text:   req.Text,
	}
	out, err := h.deps.Processor.Process(r.Context(), doc, wantPersist(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	defaulted := out.Result.DefaultedFields()
	if defaulted == nil {
		defaulted = []constants.Field{}
	}
	writeJSON(w, r, http.StatusOK, envelope{
		Data: out.Result.Record,
		Meta: extractMeta{
			Status:    out.Status,
			Defaulted: defaulted,
			Cached:    out.Cached,
			Persisted: out.Persisted,
		},
	})
}

func (h *handler) extractBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, h.deps.MaxBodyBytes, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, r, http.StatusBadRequest, "documents must not be empty")
		return
	}
	if len(req.Documents) > maxBatchDocuments {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d documents per batch", maxBatchDocuments))
		return
	}

	docs := make([]pipeline.Document, len(req.Documents))
	for i, d := range req.Documents {
		id := d.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		docs[i] = pipeline.Document{Source: id, Text: d.Text}
	}

	logger := common.LoggerFromContext(r.Context(), h.deps.Logger)
	outcomes, _ := async.RunBatch(r.Context(), h.deps.Processor, docs, async.BatchOptions{
		Workers: h.deps.BatchWorkers,
		Persist: wantPersist(r),
	}, logger)

	items := make([]batchItem, len(outcomes))
	for i, o := range outcomes {
		items[i] = batchItem{ID: docs[i].Source}
		if o.Err != nil {
			items[i].Error = common.PublicMessage(o.Err)
			continue
		}
		rec := o.Result.Record
		items[i].Data = &rec
	}
	writeData(w, r, items)
}

func (h *handler) listRecords(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	recs, err := h.deps.Repo.List(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*entity.StoredRecord{}
	}
	writeData(w, r, recs)
}

func (h *handler) getRecord(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid record id")
		return
	}
	rec, err := h.deps.Repo.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, rec)
}

func (h *handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	body, err := h.deps.Export.ExportXLSX(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="awb-records.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.deps.Export.ExportCSV(r.Context(), &buf, filter); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="awb-records.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Repo == nil || h.deps.Export == nil {
		writeError(w, r, http.StatusServiceUnavailable, "record storage is not configured")
		return false
	}
	return true
}

func wantPersist(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("persist"))
	return err == nil && v
}

// parseFilter reads platform, from, to, limit and offset query parameters.
func parseFilter(r *http.Request) (repository.Filter, error) {
	q := r.URL.Query()
	var f repository.Filter
	v := common.NewValidator()

	if s := strings.TrimSpace(q.Get("platform")); s != "" {
		p, ok := constants.CanonicalizePlatform(s)
		if !ok {
			return f, common.NewAppError("INVALID_FILTER", "unknown platform "+strconv.Quote(s), common.ErrInvalidInput)
		}
		f.Platform = p
	}
	for _, bound := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		s := q.Get(bound.key)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			v.Field(bound.key, s, func(field string, value interface{}) *common.ValidationError {
				return &common.ValidationError{Field: field, Value: value, Message: "must be a YYYY-MM-DD date"}
			})
			continue
		}
		*bound.dst = &t
	}
	for _, n := range []struct {
		key string
		dst *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		s := q.Get(n.key)
		if s == "" {
			continue
		}
		i, err := strconv.Atoi(s)
		if err != nil || i < 0 {
			return f, common.NewAppError("INVALID_FILTER", n.key+" must be a non-negative integer", common.ErrInvalidInput)
		}
		*n.dst = i
	}
	if v.HasErrors() {
		return f, common.NewAppError("INVALID_FILTER", v.ErrorMessage(), common.ErrInvalidInput)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, common.NewAppError("INVALID_FILTER", "to must not be before from", common.ErrInvalidInput)
	}
	return f, nil
}
