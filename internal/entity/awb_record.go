package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
)

// recordNamespace scopes the deterministic record IDs derived from text fingerprints.
var recordNamespace = uuid.MustParse("6f1c2b8e-4a5d-5e3f-9b7a-2c1d0e9f8a76")

// AWBRecord is one structured shipment record extracted from a label.
type AWBRecord struct {
	ID              uuid.UUID               `json:"id"`
	OrderID         string                  `json:"order_id"`
	Platform        constants.Platform      `json:"platform"`
	ShipDate        string                  `json:"ship_date"`
	ShipTime        string                  `json:"ship_time"`
	TrackingNumber  string                  `json:"tracking_number"`
	Courier         string                  `json:"courier"`
	PaymentStatus   constants.PaymentStatus `json:"payment_status"`
	CODAmount       string                  `json:"cod_amount"`
	CustomerName    string                  `json:"customer_name"`
	CustomerPhone   string                  `json:"customer_phone"`
	CustomerAddress string                  `json:"customer_address"`
	ProductName     string                  `json:"product_name"`
	SKU             string                  `json:"sku"`
	Quantity        int                     `json:"quantity"`
	Seller          string                  `json:"seller"`
}

// StoredRecord is an AWBRecord as read back from a repository.
type StoredRecord struct {
	AWBRecord
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAWBRecord returns a record with every field at its documented default.
func NewAWBRecord(platform constants.Platform) AWBRecord {
	return AWBRecord{
		OrderID:         constants.NotAvailable,
		Platform:        platform,
		ShipTime:        constants.DefaultShipTime,
		TrackingNumber:  constants.NotAvailable,
		Courier:         constants.UnknownCourier,
		PaymentStatus:   constants.PaymentCashless,
		CODAmount:       constants.DefaultCODAmount,
		CustomerName:    constants.NotAvailable,
		CustomerPhone:   constants.NotAvailable,
		CustomerAddress: constants.AddressNotFound,
		ProductName:     constants.NotAvailable,
		SKU:             constants.NotAvailable,
		Quantity:        constants.DefaultQuantity,
		Seller:          constants.NotAvailable,
	}
}

// RecordID derives a stable record ID from a text fingerprint, so the same label
// always maps to the same row.
func RecordID(fingerprint string) uuid.UUID {
	return uuid.NewSHA1(recordNamespace, []byte(fingerprint))
}

// IsAddressSentinel reports whether s is one of the address diagnostic sentinels.
func IsAddressSentinel(s string) bool {
	return s == constants.AddressNotFound || s == constants.AddressInvalid
}

// Validate checks the record invariants.
func (r AWBRecord) Validate() error {
	v := common.NewValidator().
		Field("platform", string(r.Platform), common.OneOf(constants.PlatformsAsStringSlice()...)).
		Field("order_id", r.OrderID, common.Required).
		Field("ship_date", r.ShipDate, common.Pattern(`^\d{4}-\d{2}-\d{2}$`, "must be YYYY-MM-DD")).
		Field("ship_time", r.ShipTime, common.Pattern(`^\d{2}:\d{2}$`, "must be HH:MM")).
		Field("payment_status", string(r.PaymentStatus), common.OneOf(string(constants.PaymentCOD), string(constants.PaymentCashless))).
		Field("cod_amount", r.CODAmount, common.Pattern(`^(0|\d+\.\d{2}) MYR$`, "must be an amount in MYR")).
		Field("courier", r.Courier, common.Required).
		Field("customer_name", r.CustomerName, common.Required).
		Field("customer_phone", r.CustomerPhone, common.Required).
		Field("sku", r.SKU, common.Required).
		Field("quantity", r.Quantity, common.Positive).
		Field("seller", r.Seller, common.Required)
	if !IsAddressSentinel(r.CustomerAddress) {
		v.Field("customer_address", r.CustomerAddress,
			common.MinLength(constants.MinAddressLength),
			common.MaxLength(constants.MaxAddressLength))
	}
	return v.Error()
}
