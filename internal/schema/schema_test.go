package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

func validRecord() entity.AWBRecord {
	rec := entity.NewAWBRecord(constants.PlatformShopee)
	rec.ID = entity.RecordID("abc")
	rec.ShipDate = "2025-09-20"
	return rec
}

func TestRecordValidator_AcceptsDefaultRecord(t *testing.T) {
	v, err := NewRecordValidator()
	require.NoError(t, err)
	assert.NoError(t, v.ValidateValue(validRecord()))
}

func TestRecordValidator_Rejects(t *testing.T) {
	v, err := NewRecordValidator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{name: "bad platform", mutate: func(m map[string]any) { m["platform"] = "LAZADA" }},
		{name: "bad date", mutate: func(m map[string]any) { m["ship_date"] = "20/09/2025" }},
		{name: "bad amount", mutate: func(m map[string]any) { m["cod_amount"] = "RM 10" }},
		{name: "zero quantity", mutate: func(m map[string]any) { m["quantity"] = 0 }},
		{name: "missing seller", mutate: func(m map[string]any) { delete(m, "seller") }},
		{name: "extra field", mutate: func(m map[string]any) { m["weight"] = "1kg" }},
		{name: "short address", mutate: func(m map[string]any) { m["customer_address"] = "Ipoh" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(validRecord())
			require.NoError(t, err)
			var m map[string]any
			require.NoError(t, json.Unmarshal(b, &m))
			tt.mutate(m)
			b, err = json.Marshal(m)
			require.NoError(t, err)
			assert.Error(t, v.Validate(b))
		})
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	s := map[string]any{
		"type":       "object",
		"properties": map[string]any{"n": map[string]any{"type": "integer"}},
		"required":   []string{"n"},
	}
	assert.NoError(t, ValidateJSONAgainstSchema(s, []byte(`{"n": 3}`)))
	assert.Error(t, ValidateJSONAgainstSchema(s, []byte(`{"n": "x"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(s, []byte(`not json`)))
}
