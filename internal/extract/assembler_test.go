package extract

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

func fixedClock() time.Time {
	return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
}

func newTestAssembler(opts ...Option) *Assembler {
	return NewAssembler(append([]Option{WithClock(fixedClock)}, opts...)...)
}

func TestAssemble_TikTokTrackingNameAndCOD(t *testing.T) {
	a := newTestAssembler()
	rec, err := a.Assemble("TikTok Shop\nMYPM123456789\nReceiver: Ali Bin Abu\nCOD: 25.50")
	require.NoError(t, err)

	assert.Equal(t, constants.PlatformTikTok, rec.Platform)
	assert.Equal(t, "MYPM123456789", rec.TrackingNumber)
	assert.Equal(t, "Ali Bin Abu", rec.CustomerName)
	assert.Equal(t, constants.PaymentCOD, rec.PaymentStatus)
	assert.Equal(t, "25.50 MYR", rec.CODAmount)
	assert.Equal(t, "Pos Laju", rec.Courier)
}

func TestAssemble_ShopeeOrderIDNotTrackingSuffix(t *testing.T) {
	a := newTestAssembler()
	rec, err := a.Assemble("Shopee\nOrder ID: 250915J40YG6B1\nSPXMY05826637837B")
	require.NoError(t, err)

	assert.Equal(t, constants.PlatformShopee, rec.Platform)
	assert.Equal(t, "250915J40YG6B1", rec.OrderID)
	assert.Equal(t, "SPXMY05826637837B", rec.TrackingNumber)
}

func TestAssemble_LabelledOrderIDKeepsCase(t *testing.T) {
	a := newTestAssembler()
	res, err := a.AssembleDetailed("Shopee\nOrder ID: 250915j40yg6b1")
	require.NoError(t, err)
	assert.Equal(t, "250915j40yg6b1", res.Record.OrderID)
	assert.Equal(t, "labelled", res.Rules[constants.FieldOrderID])

	res, err = a.AssembleDetailed("Shopee\nOrder No: 012345678b")
	require.NoError(t, err)
	assert.Equal(t, constants.NotAvailable, res.Record.OrderID)
	assert.True(t, res.Defaulted[constants.FieldOrderID])
}

func TestAssemble_ZeroQuantityIsDefaulted(t *testing.T) {
	a := newTestAssembler()
	res, err := a.AssembleDetailed("Shopee\nQty: 0")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.Quantity)
	assert.True(t, res.Defaulted[constants.FieldQuantity])

	var found bool
	for _, w := range res.Warnings {
		var appErr *common.AppError
		if errors.As(w, &appErr) && appErr.Code == common.CodeFieldExtractionFailure && strings.Contains(appErr.Message, string(constants.FieldQuantity)) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAssemble_TrackingSuffixShapedOrderID(t *testing.T) {
	a := newTestAssembler()

	res, err := a.AssembleDetailed("Shopee\nOrder No: 012345678B")
	require.NoError(t, err)
	assert.Equal(t, constants.NotAvailable, res.Record.OrderID)
	assert.True(t, res.Defaulted[constants.FieldOrderID])

	var found bool
	for _, w := range res.Warnings {
		var appErr *common.AppError
		if errors.As(w, &appErr) && strings.Contains(appErr.Message, "rejected") {
			found = true
		}
	}
	assert.True(t, found, "expected a rejection warning")

	rec, err := a.Assemble("TikTok Shop\n012345678B")
	require.NoError(t, err)
	assert.Equal(t, constants.NotAvailable, rec.OrderID)
}

func TestAssemble_OverlongAddressRejected(t *testing.T) {
	a := newTestAssembler()
	res, err := a.AssembleDetailed("TikTok Shop\nAddress: " + strings.Repeat("A", 400))
	require.NoError(t, err)

	assert.Equal(t, constants.AddressInvalid, res.Record.CustomerAddress)
	assert.True(t, res.Defaulted[constants.FieldCustomerAddress])

	var rejected bool
	for _, w := range res.Warnings {
		if errors.Is(w, common.ErrAddressRejected) {
			rejected = true
		}
	}
	assert.True(t, rejected)
}

func TestAssemble_UnknownPlatform(t *testing.T) {
	a := newTestAssembler()
	rec, err := a.Assemble("Lazada parcel\nOrder ID: 1234567890")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPlatformUnrecognized)
	assert.Equal(t, entity.AWBRecord{}, rec)
	assert.True(t, common.IsFatal(err))
}

func TestAssemble_DottedDate(t *testing.T) {
	a := newTestAssembler()
	rec, err := a.Assemble("Shopee\nShip date 26.10.2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-26", rec.ShipDate)
	assert.Equal(t, constants.DefaultShipTime, rec.ShipTime)
}

func TestAssemble_EmptyInput(t *testing.T) {
	a := newTestAssembler()
	for _, in := range []string{"", "   ", "\n\t\n"} {
		_, err := a.Assemble(in)
		assert.ErrorIs(t, err, common.ErrEmptyInput)
	}
}

func TestAssemble_ShopeeLabel(t *testing.T) {
	a := newTestAssembler()
	res, err := a.AssembleDetailed(shopeeLabel)
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, constants.PlatformShopee, rec.Platform)
	assert.Equal(t, "250915J40YG6B1", rec.OrderID)
	assert.Equal(t, "SPXMY05826637837B", rec.TrackingNumber)
	assert.Equal(t, "2025-09-20", rec.ShipDate)
	assert.Equal(t, "00:00", rec.ShipTime)
	assert.Equal(t, "Siti Aminah", rec.CustomerName)
	assert.Equal(t, "+60123456789", rec.CustomerPhone)
	assert.Equal(t, "No. 12, Jalan Mawar 3, Taman Sri Muda, Shah Alam, Selangor, 40400", rec.CustomerAddress)
	assert.Equal(t, "SPX Express", rec.Courier)
	assert.Equal(t, constants.PaymentCashless, rec.PaymentStatus)
	assert.Equal(t, constants.DefaultCODAmount, rec.CODAmount)
	assert.Equal(t, "Cotton Baju Kurung Blue", rec.ProductName)
	assert.Equal(t, "BK-BLU-M", rec.SKU)
	assert.Equal(t, 2, rec.Quantity)
	assert.Equal(t, "Kedai Fesyen Ain", rec.Seller)

	assert.Equal(t, []constants.Field{constants.FieldShipTime}, res.DefaultedFields())
	assert.Equal(t, "labelled", res.Rules[constants.FieldOrderID])
	assert.Equal(t, "recipient_block", res.Rules[constants.FieldCustomerAddress])
	assert.Equal(t, constants.DocumentDegraded, res.Status())
	assert.Equal(t, entity.RecordID(res.Fingerprint), rec.ID)
}

func TestAssemble_TikTokLabel(t *testing.T) {
	a := newTestAssembler()
	res, err := a.AssembleDetailed(tiktokLabel)
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, constants.PlatformTikTok, rec.Platform)
	assert.Equal(t, "576461413038785752", rec.OrderID)
	assert.Equal(t, "630012345678", rec.TrackingNumber)
	assert.Equal(t, "2025-10-24", rec.ShipDate)
	assert.Equal(t, "14:30", rec.ShipTime)
	assert.Equal(t, "Ali Bin Abu", rec.CustomerName)
	assert.Equal(t, "+6012*****89", rec.CustomerPhone)
	assert.Equal(t, "No 8, Lorong Kenari 2, Taman Bukit Indah, 81200 Johor Bahru, Johor", rec.CustomerAddress)
	assert.Equal(t, "J&T Express", rec.Courier)
	assert.Equal(t, constants.PaymentCOD, rec.PaymentStatus)
	assert.Equal(t, "49.90 MYR", rec.CODAmount)
	assert.Equal(t, "Wireless Earbuds Pro", rec.ProductName)
	assert.Equal(t, "WEP-001", rec.SKU)
	assert.Equal(t, 1, rec.Quantity)
	assert.Equal(t, "TikTok Shop Seller", rec.Seller)

	assert.Equal(t, []constants.Field{constants.FieldSeller}, res.DefaultedFields())
}

func TestAssemble_AllDefaults(t *testing.T) {
	a := newTestAssembler()
	res, err := a.AssembleDetailed("Shopee")
	require.NoError(t, err)

	want := entity.NewAWBRecord(constants.PlatformShopee)
	want.ID = res.Record.ID
	want.ShipDate = "2026-10-18"
	want.Courier = "Shopee Xpress"
	want.Seller = "Shopee Seller"
	assert.Equal(t, want, res.Record)

	for _, f := range constants.AllFields {
		assert.True(t, res.Defaulted[f], "field %s should be defaulted", f)
	}
	assert.NoError(t, res.Record.Validate())
}

func TestAssemble_TodayUsesLocation(t *testing.T) {
	late := func() time.Time { return time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC) }
	myt := time.FixedZone("MYT", 8*60*60)

	rec, err := NewAssembler(WithClock(late), WithLocation(myt)).Assemble("Shopee")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", rec.ShipDate)

	rec, err = NewAssembler(WithClock(late)).Assemble("Shopee")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", rec.ShipDate)
}

func TestAssemble_Payment(t *testing.T) {
	a := newTestAssembler()
	tests := []struct {
		name       string
		text       string
		wantStatus constants.PaymentStatus
		wantAmount string
	}{
		{name: "cashless wins over amount", text: "Shopee\nCashless\nCOD: RM 10.00", wantStatus: constants.PaymentCashless, wantAmount: "0 MYR"},
		{name: "zero amount is cashless", text: "TikTok Shop\nCOD: 0.00", wantStatus: constants.PaymentCashless, wantAmount: "0 MYR"},
		{name: "thousands separator", text: "TikTok Shop\nCOD Amount: RM1,234.5", wantStatus: constants.PaymentCOD, wantAmount: "1234.50 MYR"},
		{name: "amount before marker", text: "Shopee\nRM 15.00 (COD)", wantStatus: constants.PaymentCOD, wantAmount: "15.00 MYR"},
		{name: "no amount", text: "Shopee", wantStatus: constants.PaymentCashless, wantAmount: "0 MYR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := a.Assemble(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.PaymentStatus)
			assert.Equal(t, tt.wantAmount, rec.CODAmount)
		})
	}
}

func TestAssemble_OrderYearPrefixes(t *testing.T) {
	text := "Shopee\n260101ABCDEF12"

	rec, err := newTestAssembler().Assemble(text)
	require.NoError(t, err)
	assert.Equal(t, constants.NotAvailable, rec.OrderID)

	rec, err = newTestAssembler(WithOrderYearPrefixes([]string{"26"})).Assemble(text)
	require.NoError(t, err)
	assert.Equal(t, "260101ABCDEF12", rec.OrderID)
}

func TestAssemble_Idempotent(t *testing.T) {
	a := newTestAssembler()
	first, err := a.Assemble(tiktokLabel)
	require.NoError(t, err)
	second, err := a.Assemble(tiktokLabel)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// whitespace noise does not change the result
	third, err := a.Assemble(strings.ReplaceAll(tiktokLabel, "\n", "\r\n  "))
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestAssemble_Concurrent(t *testing.T) {
	a := newTestAssembler()
	want, err := a.Assemble(shopeeLabel)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]entity.AWBRecord, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := shopeeLabel
			if i%2 == 1 {
				text = tiktokLabel
			}
			results[i], _ = a.Assemble(text)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if i%2 == 0 {
			assert.Equal(t, want, got)
		} else {
			assert.Equal(t, constants.PlatformTikTok, got.Platform)
		}
	}
}

func TestAssemble_Classify(t *testing.T) {
	a := newTestAssembler()
	assert.Equal(t, constants.PlatformShopee, a.Classify(shopeeLabel))
	assert.Equal(t, constants.PlatformTikTok, a.Classify(tiktokLabel))
	assert.Equal(t, constants.PlatformUnknown, a.Classify("plain text"))
}
