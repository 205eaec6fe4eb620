package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
	"github.com/joseph-ayodele/awb-extractor/internal/export"
	"github.com/joseph-ayodele/awb-extractor/internal/extract"
	"github.com/joseph-ayodele/awb-extractor/internal/metrics"
	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
)

const shopeeText = `Shopee
SPXMY05826637837B
Order ID: 250915J40YG6B1
Ship By Date: 20/09/2025
Name: Siti Aminah
Address: No. 12, Jalan Mawar 3, Taman Sri Muda, 40400 Shah Alam
Cashless`

const tiktokText = "TikTok Shop\nMYPM123456789\nReceiver: Ali Bin Abu\nCOD: 25.50"

func newTestServer(t *testing.T, withStore bool) (http.Handler, repository.RecordRepository) {
	t.Helper()
	asm := extract.NewAssembler(extract.WithClock(func() time.Time {
		return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	}))
	deps := Deps{Metrics: metrics.NewRegistry()}

	var repo repository.RecordRepository
	var opts []pipeline.Option
	if withStore {
		sqlRepo, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlRepo.Close() })
		repo = sqlRepo
		opts = append(opts, pipeline.WithRepository(repo))
		deps.Repo = repo
		deps.Export = export.NewService(repo, "AWB Records", nil)
	}
	deps.Processor = pipeline.NewProcessor(nil, asm, opts...)
	return NewRouter(deps), repo
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func extractBody(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)
	return string(b)
}

type dataResponse[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
	Meta  struct {
		Status    string   `json:"status"`
		Defaulted []string `json:"defaulted"`
		Persisted bool     `json:"persisted"`
	} `json:"meta"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) dataResponse[T] {
	t.Helper()
	var out dataResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestExtract_OK(t *testing.T) {
	h, _ := newTestServer(t, false)

	rec := do(t, h, http.MethodPost, "/v1/extract", extractBody(t, shopeeText))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	out := decode[entity.AWBRecord](t, rec)
	assert.Equal(t, constants.PlatformShopee, out.Data.Platform)
	assert.Equal(t, "250915J40YG6B1", out.Data.OrderID)
	assert.Equal(t, "2025-09-20", out.Data.ShipDate)
	assert.Equal(t, constants.PaymentCashless, out.Data.PaymentStatus)
	assert.Equal(t, string(constants.DocumentDegraded), out.Meta.Status)
	assert.Contains(t, out.Meta.Defaulted, string(constants.FieldShipTime))
	assert.False(t, out.Meta.Persisted)
}

func TestExtract_RequestIDEchoed(t *testing.T) {
	h, _ := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(extractBody(t, tiktokText)))
	req.Header.Set(headerRequestID, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))
}

func TestExtract_Errors(t *testing.T) {
	h, _ := newTestServer(t, false)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"text":`, http.StatusBadRequest},
		{"unknown field", `{"text":"x","extra":1}`, http.StatusBadRequest},
		{"trailing data", `{"text":"x"}{"text":"y"}`, http.StatusBadRequest},
		{"empty text", `{"text":"   "}`, http.StatusBadRequest},
		{"unknown platform", extractBody(t, "Lazada parcel\nName: Someone"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/extract", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			out := decode[any](t, rec)
			assert.NotEmpty(t, out.Error)
			assert.Nil(t, out.Data)
		})
	}
}

func TestExtract_MethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(t, h, http.MethodGet, "/v1/extract", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExtract_PersistThenFetch(t *testing.T) {
	h, repo := newTestServer(t, true)

	rec := do(t, h, http.MethodPost, "/v1/extract?persist=true", extractBody(t, shopeeText))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[entity.AWBRecord](t, rec)
	assert.True(t, out.Meta.Persisted)

	stored, err := repo.Get(context.Background(), out.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Data, stored.AWBRecord)

	rec = do(t, h, http.MethodGet, "/v1/records/"+out.Data.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[entity.StoredRecord](t, rec)
	assert.Equal(t, out.Data.OrderID, got.Data.OrderID)
	assert.NotEmpty(t, got.Data.Fingerprint)
}

func TestRecords_GetErrors(t *testing.T) {
	h, _ := newTestServer(t, true)

	rec := do(t, h, http.MethodGet, "/v1/records/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/records/6f1c2b8e-4a5d-5e3f-9b7a-2c1d0e9f8a76", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecords_ListFilters(t *testing.T) {
	h, _ := newTestServer(t, true)
	for _, text := range []string{shopeeText, tiktokText} {
		rec := do(t, h, http.MethodPost, "/v1/extract?persist=1", extractBody(t, text))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/v1/records", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entity.StoredRecord](t, rec).Data, 2)

	rec = do(t, h, http.MethodGet, "/v1/records?platform=shopee", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]entity.StoredRecord](t, rec).Data
	require.Len(t, list, 1)
	assert.Equal(t, constants.PlatformShopee, list[0].Platform)

	rec = do(t, h, http.MethodGet, "/v1/records?from=2025-09-01&to=2025-09-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entity.StoredRecord](t, rec).Data, 1)

	rec = do(t, h, http.MethodGet, "/v1/records?from=2030-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(string(decodeRaw(t, rec))))

	for _, bad := range []string{"platform=lazada", "from=20-09-2025", "limit=-1", "from=2025-09-30&to=2025-09-01"} {
		rec = do(t, h, http.MethodGet, "/v1/records?"+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func decodeRaw(t *testing.T, rec *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var out struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Data
}

func TestRecords_WithoutStore(t *testing.T) {
	h, _ := newTestServer(t, false)
	for _, target := range []string{"/v1/records", "/v1/export.csv", "/v1/export.xlsx"} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestExtractBatch(t *testing.T) {
	h, _ := newTestServer(t, true)
	body := `{"documents":[
		{"id":"a","text":` + quote(shopeeText) + `},
		{"id":"b","text":"nothing recognisable here"},
		{"text":` + quote(tiktokText) + `}
	]}`

	rec := do(t, h, http.MethodPost, "/v1/extract/batch?persist=true", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	items := decode[[]batchItem](t, rec).Data
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	require.NotNil(t, items[0].Data)
	assert.Equal(t, constants.PlatformShopee, items[0].Data.Platform)

	assert.Equal(t, "b", items[1].ID)
	assert.Nil(t, items[1].Data)
	assert.NotEmpty(t, items[1].Error)

	assert.Equal(t, "2", items[2].ID)
	require.NotNil(t, items[2].Data)
	assert.Equal(t, constants.PlatformTikTok, items[2].Data.Platform)

	rec = do(t, h, http.MethodGet, "/v1/records", "")
	assert.Len(t, decode[[]entity.StoredRecord](t, rec).Data, 2)
}

func TestExtractBatch_Validation(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(t, h, http.MethodPost, "/v1/extract/batch", `{"documents":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var sb strings.Builder
	sb.WriteString(`{"documents":[`)
	for i := 0; i <= maxBatchDocuments; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"text":"x"}`)
	}
	sb.WriteString(`]}`)
	rec = do(t, h, http.MethodPost, "/v1/extract/batch", sb.String())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestExports(t *testing.T) {
	h, _ := newTestServer(t, true)
	rec := do(t, h, http.MethodPost, "/v1/extract?persist=true", extractBody(t, shopeeText))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "250915J40YG6B1")

	rec = do(t, h, http.MethodGet, "/v1/export.xlsx?platform=shopee", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "awb-records.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("AWB Records")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "250915J40YG6B1")
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestServer(t, true)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())

	do(t, h, http.MethodPost, "/v1/extract", extractBody(t, tiktokText))

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `route="POST /v1/extract"`)
	assert.Contains(t, body, `route="GET /health"`)
}

func TestHealth_NoStore(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
