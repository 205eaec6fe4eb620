package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	in := "TikTok Shop\r\n\r\n\r\n\r\nReceiver:\tAli   Bin Abu   \r\n-----\nCOD: 25.50  "
	assert.Equal(t, "TikTok Shop\n\nReceiver: Ali Bin Abu\n\nCOD: 25.50", Text(in))
	assert.Equal(t, "", Text(""))
}

func TestText_Idempotent(t *testing.T) {
	in := "  Shopee \t Order ID:  250915J40YG6B1 \r\n\n\n\n Address: No. 1, Jalan Satu  "
	once := Text(in)
	assert.Equal(t, once, Text(once))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "No. 12 Jalan Mawar Taman Sri", CollapseWhitespace(" No. 12\nJalan  Mawar\t Taman Sri \n"))
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "Ali", StripQuotes(`"Ali"`))
	assert.Equal(t, `"Ali`, StripQuotes(`"Ali`))
	assert.Equal(t, "Ali Bin Abu", Value(`  "Ali  Bin Abu" , `))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "25.50", want: "25.5", wantOK: true},
		{in: "RM 1,234.50", want: "1234.5", wantOK: true},
		{in: "RM25", want: "25", wantOK: true},
		{in: "MYR 0.00", want: "0", wantOK: true},
		{in: "none", want: "0", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			require.Equal(t, tt.wantOK, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "25.50 MYR", FormatAmount(decimal.RequireFromString("25.5")))
	assert.Equal(t, "1234.00 MYR", FormatAmount(decimal.NewFromInt(1234)))
	assert.Equal(t, "0 MYR", FormatAmount(decimal.Zero))
	assert.Equal(t, "0 MYR", FormatAmount(decimal.NewFromInt(-3)))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{in: " 3 ", want: 3, wantOK: true},
		{in: "0", want: 1},
		{in: "-2", want: 1},
		{in: "two", want: 1},
	}
	for _, tt := range tests {
		n, ok := ParseQuantity(tt.in)
		assert.Equal(t, tt.want, n, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestStripSeparators(t *testing.T) {
	assert.Equal(t, "+60123456789", StripSeparators("+60 12-345 6789"))
	assert.Equal(t, "+6012*****89", StripSeparators("(+60)12*****89"))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Shopee")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("Shopee"))
	assert.NotEqual(t, a, Fingerprint("TikTok"))
}
