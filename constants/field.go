package constants

// Field names a single AWB record field. Values match the record's json tags.
type Field string

const (
	FieldOrderID         Field = "order_id"
	FieldShipDate        Field = "ship_date"
	FieldShipTime        Field = "ship_time"
	FieldTrackingNumber  Field = "tracking_number"
	FieldCourier         Field = "courier"
	FieldPaymentStatus   Field = "payment_status"
	FieldCODAmount       Field = "cod_amount"
	FieldCustomerName    Field = "customer_name"
	FieldCustomerPhone   Field = "customer_phone"
	FieldCustomerAddress Field = "customer_address"
	FieldProductName     Field = "product_name"
	FieldSKU             Field = "sku"
	FieldQuantity        Field = "quantity"
	FieldSeller          Field = "seller"
)

// AllFields lists extracted fields in record order.
var AllFields = []Field{
	FieldOrderID,
	FieldShipDate,
	FieldShipTime,
	FieldTrackingNumber,
	FieldCourier,
	FieldPaymentStatus,
	FieldCODAmount,
	FieldCustomerName,
	FieldCustomerPhone,
	FieldCustomerAddress,
	FieldProductName,
	FieldSKU,
	FieldQuantity,
	FieldSeller,
}

// Sentinels for unresolved fields.
const (
	NotAvailable     = "N/A"
	UnknownCourier   = "Unknown"
	DefaultShipTime  = "00:00"
	DefaultCODAmount = "0 MYR"
	AddressNotFound  = "Address not found"
	AddressInvalid   = "Address too short or invalid"
	MinAddressLength = 10
	MaxAddressLength = 300
	DefaultQuantity  = 1
)
