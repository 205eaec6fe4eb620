package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersAndHandler(t *testing.T) {
	r := NewRegistry()
	r.Extractions.WithLabelValues("SHOPEE", "succeeded").Inc()
	r.Extractions.WithLabelValues("SHOPEE", "succeeded").Inc()
	r.ObserveHTTP("/v1/extract", 200, 0.01)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `awb_extractions_total{outcome="succeeded",platform="SHOPEE"} 2`)
	assert.Contains(t, string(body), `awb_http_requests_total{code="200",route="/v1/extract"} 1`)
	assert.Contains(t, string(body), "awb_http_request_duration_seconds")
}
